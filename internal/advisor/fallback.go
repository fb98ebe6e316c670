package advisor

import "github.com/decisio-ai/decisio/internal/triage"

// Fallback is the deterministic substitute used when the advisory capability
// is unavailable. Pure function of tier: enterprise accounts get priority
// handling, everyone else the standard workflow. It guarantees an
// AdvisoryOutcome always exists downstream.
func Fallback(tier triage.Tier) *triage.AdvisoryOutcome {
	if tier == triage.TierEnterprise {
		return &triage.AdvisoryOutcome{
			Decision:          triage.DecisionPriorityResponse,
			Priority:          triage.PriorityHigh,
			ChurnRisk:         0.5,
			RecommendedAction: "AI unavailable. Review manually and respond within 2 hours (enterprise SLA).",
		}
	}
	return &triage.AdvisoryOutcome{
		Decision:          triage.DecisionStandardResponse,
		Priority:          triage.PriorityMedium,
		ChurnRisk:         0.3,
		RecommendedAction: "AI unavailable. Review and respond using standard workflow.",
	}
}
