package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/decisio-ai/decisio/internal/triage"
)

// neutralRequest scores exactly the base confidence: mid-length message, no
// question mark, no history, non-enterprise tier.
func neutralRequest() *triage.Request {
	return &triage.Request{
		Message: "The export job finished but the file seems empty today.",
		Tier:    triage.TierPro,
		Channel: triage.ChannelEmail,
	}
}

// neutralOutcome triggers neither alignment bonus.
func neutralOutcome() *triage.AdvisoryOutcome {
	return &triage.AdvisoryOutcome{
		Decision:  triage.DecisionStandardResponse,
		Priority:  triage.PriorityMedium,
		ChurnRisk: 0.5,
	}
}

func TestScoreBase(t *testing.T) {
	got := Score(neutralRequest(), nil, neutralOutcome(), false)
	assert.Equal(t, 0.5, got)
}

func TestScoreSingleFactors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(req *triage.Request, out *triage.AdvisoryOutcome) []triage.RuleOutcome
		want   float64
	}{
		{
			"long message",
			func(req *triage.Request, _ *triage.AdvisoryOutcome) []triage.RuleOutcome {
				req.Message = strings.Repeat("All the details are included below. ", 4)
				return nil
			},
			0.6,
		},
		{
			"short message",
			func(req *triage.Request, _ *triage.AdvisoryOutcome) []triage.RuleOutcome {
				req.Message = "This looks broken today"
				return nil
			},
			0.4,
		},
		{
			"question mark",
			func(req *triage.Request, _ *triage.AdvisoryOutcome) []triage.RuleOutcome {
				req.Message = "Could you check why the export job produced an empty file?"
				return nil
			},
			0.55,
		},
		{
			"history below boost threshold still counts per message",
			func(req *triage.Request, _ *triage.AdvisoryOutcome) []triage.RuleOutcome {
				req.History = make([]string, 2)
				return nil
			},
			0.56,
		},
		{
			"history capped",
			func(req *triage.Request, _ *triage.AdvisoryOutcome) []triage.RuleOutcome {
				req.History = make([]string, 10)
				return nil
			},
			0.65,
		},
		{
			"enterprise tier",
			func(req *triage.Request, _ *triage.AdvisoryOutcome) []triage.RuleOutcome {
				req.Tier = triage.TierEnterprise
				return nil
			},
			0.6,
		},
		{
			"high churn aligned with escalation",
			func(_ *triage.Request, out *triage.AdvisoryOutcome) []triage.RuleOutcome {
				out.Decision = triage.DecisionImmediateEscalation
				out.ChurnRisk = 0.8
				return nil
			},
			0.6,
		},
		{
			"low churn aligned with calm decision",
			func(_ *triage.Request, out *triage.AdvisoryOutcome) []triage.RuleOutcome {
				out.ChurnRisk = 0.1
				return nil
			},
			0.55,
		},
		{
			"high churn without escalation earns nothing",
			func(_ *triage.Request, out *triage.AdvisoryOutcome) []triage.RuleOutcome {
				out.ChurnRisk = 0.9
				return nil
			},
			0.5,
		},
		{
			"rule boost",
			func(_ *triage.Request, _ *triage.AdvisoryOutcome) []triage.RuleOutcome {
				return []triage.RuleOutcome{{ConfidenceBoost: 0.2}}
			},
			0.7,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := neutralRequest()
			out := neutralOutcome()
			outcomes := tc.mutate(req, out)
			assert.Equal(t, tc.want, Score(req, outcomes, out, false))
		})
	}
}

// The advisory failure penalty is exactly 0.2 against an otherwise identical
// successful run.
func TestScoreAdvisoryFailurePenalty(t *testing.T) {
	req := neutralRequest()
	out := neutralOutcome()

	ok := Score(req, nil, out, false)
	failed := Score(req, nil, out, true)
	assert.InDelta(t, 0.2, ok-failed, 1e-9)
}

func TestScoreStacksAllFactors(t *testing.T) {
	req := &triage.Request{
		Message: strings.Repeat("We are evaluating whether to renew, can you help? ", 3),
		Tier:    triage.TierEnterprise,
		History: make([]string, 6),
	}
	out := &triage.AdvisoryOutcome{
		Decision:  triage.DecisionPriorityResponse,
		Priority:  triage.PriorityHigh,
		ChurnRisk: 0.8,
	}
	outcomes := []triage.RuleOutcome{{ConfidenceBoost: 0.2}}

	// 0.5 + 0.2 + 0.1 + 0.05 + 0.15 + 0.1 + 0.1 = 1.2, clamped to 1.
	assert.Equal(t, 1.0, Score(req, outcomes, out, false))
}

func TestScoreClampsAtZero(t *testing.T) {
	req := &triage.Request{
		Message: "Broken again today",
		Tier:    triage.TierFree,
	}
	out := neutralOutcome()
	outcomes := []triage.RuleOutcome{{ConfidenceBoost: -0.5}}

	// 0.5 - 0.5 - 0.1 - 0.2 = -0.3, clamped to 0.
	assert.Equal(t, 0.0, Score(req, outcomes, out, true))
}

func TestScoreRoundsToTwoDecimals(t *testing.T) {
	req := neutralRequest()
	req.History = make([]string, 1) // 0.03
	got := Score(req, nil, neutralOutcome(), false)
	assert.Equal(t, 0.53, got)
}
