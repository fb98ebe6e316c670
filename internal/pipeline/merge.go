package pipeline

import "github.com/decisio-ai/decisio/internal/triage"

// Merge combines the advisory (or fallback) baseline with every non-terminal
// rule floor. Decision and priority are upgraded independently along their
// total orders: a rule floor replaces the running value only when it ranks
// strictly higher, so the result is the supremum of the baseline and all
// floors and a rule can never downgrade the advisory outcome.
//
// The returned reason names the rule that set the final decision. Because
// upgrades require a strictly higher rank, the first-evaluated rule wins a
// tie between equal-ranked floors; that convention is fixed here.
func Merge(base *triage.AdvisoryOutcome, outcomes []triage.RuleOutcome) (triage.Decision, triage.Priority, string) {
	decision := base.Decision
	priority := base.Priority
	reason := ""

	for _, out := range outcomes {
		if out.Decision != "" && out.Decision.Rank() > decision.Rank() {
			decision = out.Decision
			reason = out.Reason
		}
		if out.Priority != "" && out.Priority.Rank() > priority.Rank() {
			priority = out.Priority
		}
	}

	return decision, priority, reason
}
