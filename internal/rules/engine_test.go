package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decisio-ai/decisio/internal/triage"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultKeywords())
}

func TestLegalKeywordIsTerminal(t *testing.T) {
	engine := newTestEngine()

	outcomes, terminal := engine.Evaluate(&triage.Request{
		Message: "If this is not fixed I will take legal action against you.",
		Tier:    triage.TierPro,
		Channel: triage.ChannelEmail,
	})

	require.NotNil(t, terminal)
	assert.Len(t, outcomes, 1, "a terminal match is the only retained outcome")
	assert.Equal(t, triage.DecisionImmediateEscalation, terminal.Decision)
	assert.Equal(t, triage.PriorityCritical, terminal.Priority)
	assert.Equal(t, 0.3, terminal.ConfidenceBoost)
	assert.True(t, terminal.Terminal)
	assert.Contains(t, terminal.Reason, "legal action")
}

func TestLegalMatchIsCaseInsensitive(t *testing.T) {
	engine := newTestEngine()

	_, terminal := engine.Evaluate(&triage.Request{
		Message: "My LAWYER will be in touch shortly.",
		Tier:    triage.TierFree,
		Channel: triage.ChannelEmail,
	})

	require.NotNil(t, terminal)
	assert.Equal(t, triage.DecisionImmediateEscalation, terminal.Decision)
}

func TestShortMessageIsNoise(t *testing.T) {
	engine := newTestEngine()

	// Trimmed length is what counts, so padding whitespace does not help.
	_, terminal := engine.Evaluate(&triage.Request{
		Message: "   ok   ",
		Tier:    triage.TierFree,
		Channel: triage.ChannelChat,
	})

	require.NotNil(t, terminal)
	assert.Equal(t, triage.DecisionIgnore, terminal.Decision)
	assert.Equal(t, triage.PriorityLow, terminal.Priority)
	assert.Equal(t, 0.2, terminal.ConfidenceBoost)
}

func TestSpamIsTerminal(t *testing.T) {
	engine := newTestEngine()

	_, terminal := engine.Evaluate(&triage.Request{
		Message: "Congratulations! Click here to claim your limited offer now!",
		Tier:    triage.TierFree,
		Channel: triage.ChannelEmail,
	})

	require.NotNil(t, terminal)
	assert.Equal(t, triage.DecisionIgnore, terminal.Decision)
	assert.Equal(t, 0.15, terminal.ConfidenceBoost)
}

func TestLegalOutranksSpam(t *testing.T) {
	engine := newTestEngine()

	// Contains both a spam indicator and a legal keyword; legal runs first.
	_, terminal := engine.Evaluate(&triage.Request{
		Message: "Click here or I will sue you in court.",
		Tier:    triage.TierFree,
		Channel: triage.ChannelEmail,
	})

	require.NotNil(t, terminal)
	assert.Equal(t, triage.DecisionImmediateEscalation, terminal.Decision)
}

func TestEnterpriseSentimentFloor(t *testing.T) {
	engine := newTestEngine()

	outcomes, terminal := engine.Evaluate(&triage.Request{
		Message: "I am disappointed with the service and thinking of leaving.",
		Tier:    triage.TierEnterprise,
		Channel: triage.ChannelEmail,
	})

	assert.Nil(t, terminal)
	require.Len(t, outcomes, 1)
	out := outcomes[0]
	assert.Equal(t, triage.DecisionPriorityResponse, out.Decision)
	assert.Equal(t, triage.PriorityHigh, out.Priority)
	assert.Equal(t, 0.2, out.ConfidenceBoost)
	assert.False(t, out.Terminal)
	assert.Equal(t, "Enterprise customer with 2 negative signal(s)", out.Reason)
}

func TestSentimentFloorRequiresEnterprise(t *testing.T) {
	engine := newTestEngine()

	outcomes, terminal := engine.Evaluate(&triage.Request{
		Message: "I am disappointed with the service and thinking of leaving.",
		Tier:    triage.TierPro,
		Channel: triage.ChannelEmail,
	})

	assert.Nil(t, terminal)
	assert.Empty(t, outcomes)
}

func TestHistoryVolumeBoost(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name      string
		history   int
		wantBoost float64
		wantMatch bool
	}{
		{"no history", 0, 0, false},
		{"below threshold", 2, 0, false},
		{"three interactions", 3, 0.1, true},
		{"five interactions", 5, 0.15, true},
		{"many interactions", 20, 0.15, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			outcomes, terminal := engine.Evaluate(&triage.Request{
				Message: "Could someone look at my billing question today please?",
				Tier:    triage.TierFree,
				Channel: triage.ChannelEmail,
				History: make([]string, tc.history),
			})

			assert.Nil(t, terminal)
			if !tc.wantMatch {
				assert.Empty(t, outcomes)
				return
			}
			require.Len(t, outcomes, 1)
			assert.Equal(t, tc.wantBoost, outcomes[0].ConfidenceBoost)
			assert.Empty(t, outcomes[0].Decision, "history boost sets no decision floor")
		})
	}
}

func TestCleanMessageMatchesNothing(t *testing.T) {
	engine := newTestEngine()

	outcomes, terminal := engine.Evaluate(&triage.Request{
		Message: "Could you clarify how seats are counted on the annual plan?",
		Tier:    triage.TierPro,
		Channel: triage.ChannelEmail,
	})

	assert.Nil(t, terminal)
	assert.Empty(t, outcomes)
}

func TestKeywordMerge(t *testing.T) {
	kw := DefaultKeywords().Merge(KeywordSets{Legal: []string{"small claims"}})

	engine := NewEngine(kw)
	_, terminal := engine.Evaluate(&triage.Request{
		Message: "I will file in small claims next week.",
		Tier:    triage.TierFree,
		Channel: triage.ChannelEmail,
	})
	require.NotNil(t, terminal)
	assert.Equal(t, triage.DecisionImmediateEscalation, terminal.Decision)

	// Defaults still present after a merge.
	assert.Contains(t, kw.Legal, "lawsuit")
}
