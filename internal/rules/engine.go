// Package rules evaluates the non-negotiable business rules that run before
// the advisory capability. Terminal matches (legal threats, noise) fully
// determine the response and skip the advisory call; non-terminal matches
// set decision/priority floors the merge step may only raise to.
package rules

import (
	"fmt"
	"strings"

	"github.com/decisio-ai/decisio/internal/triage"
)

// minMessageLen is the trimmed length below which a message is treated as
// noise rather than a real support request.
const minMessageLen = 10

// Engine evaluates rules in fixed priority order. It holds only read-only
// keyword configuration and is safe for arbitrarily many concurrent
// evaluations.
type Engine struct {
	keywords KeywordSets
}

// NewEngine builds an engine over the given keyword sets.
func NewEngine(keywords KeywordSets) *Engine {
	return &Engine{keywords: keywords}
}

// Evaluate runs every rule against the request. If a terminal rule fires it
// is returned as terminal and is the only retained outcome; otherwise
// terminal is nil and outcomes holds every non-terminal match, in evaluation
// order, for the merge and confidence stages.
func (e *Engine) Evaluate(req *triage.Request) (outcomes []triage.RuleOutcome, terminal *triage.RuleOutcome) {
	if out := e.checkLegal(req); out != nil {
		return []triage.RuleOutcome{*out}, out
	}
	if out := e.checkNoise(req); out != nil {
		return []triage.RuleOutcome{*out}, out
	}
	if out := e.checkEnterpriseSentiment(req); out != nil {
		outcomes = append(outcomes, *out)
	}
	if out := e.checkHistoryVolume(req); out != nil {
		outcomes = append(outcomes, *out)
	}
	return outcomes, nil
}

// checkLegal escalates immediately on legal keywords. Runs first; protects
// the company regardless of what the advisory layer would say.
func (e *Engine) checkLegal(req *triage.Request) *triage.RuleOutcome {
	lower := strings.ToLower(req.Message)
	for _, kw := range e.keywords.Legal {
		if strings.Contains(lower, kw) {
			return &triage.RuleOutcome{
				Decision:        triage.DecisionImmediateEscalation,
				Priority:        triage.PriorityCritical,
				ConfidenceBoost: 0.3,
				Reason:          fmt.Sprintf("Legal keyword detected: %q", kw),
				Terminal:        true,
			}
		}
	}
	return nil
}

// checkNoise filters messages too short to be meaningful and spam.
func (e *Engine) checkNoise(req *triage.Request) *triage.RuleOutcome {
	trimmed := req.TrimmedMessage()
	if len(trimmed) < minMessageLen {
		return &triage.RuleOutcome{
			Decision:        triage.DecisionIgnore,
			Priority:        triage.PriorityLow,
			ConfidenceBoost: 0.2,
			Reason:          "Message too short (likely noise)",
			Terminal:        true,
		}
	}

	lower := strings.ToLower(trimmed)
	for _, kw := range e.keywords.Spam {
		if strings.Contains(lower, kw) {
			return &triage.RuleOutcome{
				Decision:        triage.DecisionIgnore,
				Priority:        triage.PriorityLow,
				ConfidenceBoost: 0.15,
				Reason:          fmt.Sprintf("Spam indicator detected: %q", kw),
				Terminal:        true,
			}
		}
	}
	return nil
}

// checkEnterpriseSentiment sets a floor of priority_response/high when an
// enterprise customer shows churn or threat signals. Non-terminal: the
// advisory layer may still raise it further, never lower it.
func (e *Engine) checkEnterpriseSentiment(req *triage.Request) *triage.RuleOutcome {
	if req.Tier != triage.TierEnterprise {
		return nil
	}

	lower := strings.ToLower(req.Message)
	signals := 0
	for _, kw := range e.keywords.Threat {
		if strings.Contains(lower, kw) {
			signals++
		}
	}
	if signals == 0 {
		return nil
	}

	return &triage.RuleOutcome{
		Decision:        triage.DecisionPriorityResponse,
		Priority:        triage.PriorityHigh,
		ConfidenceBoost: 0.2,
		Reason:          fmt.Sprintf("Enterprise customer with %d negative signal(s)", signals),
	}
}

// checkHistoryVolume boosts confidence for customers with interaction
// history. No decision or priority floor.
func (e *Engine) checkHistoryVolume(req *triage.Request) *triage.RuleOutcome {
	count := len(req.History)
	if count == 0 {
		return nil
	}

	var boost float64
	switch {
	case count >= 5:
		boost = 0.15
	case count >= 3:
		boost = 0.1
	default:
		return nil
	}

	return &triage.RuleOutcome{
		ConfidenceBoost: boost,
		Reason:          fmt.Sprintf("Customer has %d previous interactions", count),
	}
}
