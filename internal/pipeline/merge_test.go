package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/decisio-ai/decisio/internal/triage"
)

func TestMergeUpgradesOnly(t *testing.T) {
	base := &triage.AdvisoryOutcome{
		Decision: triage.DecisionStandardResponse,
		Priority: triage.PriorityMedium,
	}

	tests := []struct {
		name         string
		outcomes     []triage.RuleOutcome
		wantDecision triage.Decision
		wantPriority triage.Priority
		wantReason   string
	}{
		{
			"no floors",
			nil,
			triage.DecisionStandardResponse, triage.PriorityMedium, "",
		},
		{
			"floor above baseline",
			[]triage.RuleOutcome{{
				Decision: triage.DecisionPriorityResponse,
				Priority: triage.PriorityHigh,
				Reason:   "enterprise floor",
			}},
			triage.DecisionPriorityResponse, triage.PriorityHigh, "enterprise floor",
		},
		{
			"floor below baseline is ignored",
			[]triage.RuleOutcome{{
				Decision: triage.DecisionIgnore,
				Priority: triage.PriorityLow,
				Reason:   "never wins",
			}},
			triage.DecisionStandardResponse, triage.PriorityMedium, "",
		},
		{
			"floor equal to baseline is ignored",
			[]triage.RuleOutcome{{
				Decision: triage.DecisionStandardResponse,
				Priority: triage.PriorityMedium,
				Reason:   "same rank",
			}},
			triage.DecisionStandardResponse, triage.PriorityMedium, "",
		},
		{
			"outcome without floor leaves baseline alone",
			[]triage.RuleOutcome{{ConfidenceBoost: 0.1, Reason: "history"}},
			triage.DecisionStandardResponse, triage.PriorityMedium, "",
		},
		{
			"highest of several floors wins",
			[]triage.RuleOutcome{
				{Decision: triage.DecisionPriorityResponse, Priority: triage.PriorityHigh, Reason: "first"},
				{Decision: triage.DecisionImmediateEscalation, Priority: triage.PriorityCritical, Reason: "second"},
			},
			triage.DecisionImmediateEscalation, triage.PriorityCritical, "second",
		},
		{
			"first of equal floors keeps the reason",
			[]triage.RuleOutcome{
				{Decision: triage.DecisionPriorityResponse, Priority: triage.PriorityHigh, Reason: "first"},
				{Decision: triage.DecisionPriorityResponse, Priority: triage.PriorityHigh, Reason: "second"},
			},
			triage.DecisionPriorityResponse, triage.PriorityHigh, "first",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision, priority, reason := Merge(base, tc.outcomes)
			assert.Equal(t, tc.wantDecision, decision)
			assert.Equal(t, tc.wantPriority, priority)
			assert.Equal(t, tc.wantReason, reason)
		})
	}
}

func TestMergeUpgradesDecisionAndPriorityIndependently(t *testing.T) {
	base := &triage.AdvisoryOutcome{
		Decision: triage.DecisionImmediateEscalation,
		Priority: triage.PriorityLow,
	}
	// Decision already at the top; only priority can move.
	decision, priority, reason := Merge(base, []triage.RuleOutcome{{
		Decision: triage.DecisionPriorityResponse,
		Priority: triage.PriorityHigh,
		Reason:   "floor",
	}})

	assert.Equal(t, triage.DecisionImmediateEscalation, decision)
	assert.Equal(t, triage.PriorityHigh, priority)
	assert.Empty(t, reason, "reason reflects the decision only")
}
