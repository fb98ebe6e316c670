package pipeline

import (
	"math"
	"strings"

	"github.com/decisio-ai/decisio/internal/triage"
)

// Confidence factor weights. All factors are independent and purely
// additive, then clamped, so any single factor's contribution stays
// auditable from the inputs alone.
const (
	baseConfidence = 0.5

	longMessageBonus    = 0.1
	shortMessagePenalty = 0.1
	questionBonus       = 0.05
	advisoryFailPenalty = 0.2
	historyPerMessage   = 0.03
	historyCap          = 0.15
	enterpriseBonus     = 0.1
	alignmentBonus      = 0.1
	calmAlignmentBonus  = 0.05

	longMessageLen  = 100
	shortMessageLen = 30
)

// Score computes the confidence estimate for a non-terminal evaluation.
// Deterministic in (request, rule outcomes, advisory outcome, advisory-failed
// flag); clamped to [0,1] and rounded to two decimals. advisory is the
// capability's (or fallback's) own assessment, before any rule floor is
// applied: alignment is measured against what the capability said, not
// against the merged result.
func Score(req *triage.Request, outcomes []triage.RuleOutcome, advisory *triage.AdvisoryOutcome, advisoryFailed bool) float64 {
	confidence := baseConfidence

	for _, out := range outcomes {
		confidence += out.ConfidenceBoost
	}

	msgLen := len(req.TrimmedMessage())
	if msgLen > longMessageLen {
		confidence += longMessageBonus
	} else if msgLen < shortMessageLen {
		confidence -= shortMessagePenalty
	}

	if strings.Contains(req.Message, "?") {
		confidence += questionBonus
	}

	if advisoryFailed {
		confidence -= advisoryFailPenalty
	}

	if len(req.History) > 0 {
		confidence += math.Min(historyCap, float64(len(req.History))*historyPerMessage)
	}

	if req.Tier == triage.TierEnterprise {
		confidence += enterpriseBonus
	}

	// Alignment between churn risk and decision severity is a weak
	// corroborating signal in both directions.
	escalating := advisory.Decision == triage.DecisionPriorityResponse ||
		advisory.Decision == triage.DecisionImmediateEscalation
	if advisory.ChurnRisk > 0.7 && escalating {
		confidence += alignmentBonus
	} else if advisory.ChurnRisk < 0.3 && !escalating {
		confidence += calmAlignmentBonus
	}

	return round2(clamp01(confidence))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
