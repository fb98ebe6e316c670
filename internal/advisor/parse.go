package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/decisio-ai/decisio/internal/triage"
)

// advisoryPayload is the wire schema the capability is prompted to return.
// Pointers distinguish missing keys from zero values.
type advisoryPayload struct {
	Decision          *string  `json:"decision"`
	Priority          *string  `json:"priority"`
	ChurnRisk         *float64 `json:"churn_risk"`
	RecommendedAction *string  `json:"recommended_action"`
}

// ParseAdvisory decodes the raw model output into a validated
// AdvisoryOutcome. It tolerates the wrappings models are known to add
// (markdown code fences, prose around the JSON object) but rejects anything
// that fails schema or enum validation. churn_risk is clamped to [0,1] and
// recommended_action truncated to the response limit.
func ParseAdvisory(raw string) (*triage.AdvisoryOutcome, error) {
	cleaned := stripWrapping(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty advisory payload")
	}

	var payload advisoryPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("decode advisory payload: %w", err)
	}
	if payload.Decision == nil || payload.Priority == nil ||
		payload.ChurnRisk == nil || payload.RecommendedAction == nil {
		return nil, fmt.Errorf("advisory payload missing required fields")
	}

	decision, err := triage.ParseDecision(*payload.Decision)
	if err != nil {
		return nil, fmt.Errorf("advisory payload: %w", err)
	}
	priority, err := triage.ParsePriority(*payload.Priority)
	if err != nil {
		return nil, fmt.Errorf("advisory payload: %w", err)
	}

	action := strings.TrimSpace(*payload.RecommendedAction)
	if action == "" {
		return nil, fmt.Errorf("advisory payload: empty recommended_action")
	}

	return &triage.AdvisoryOutcome{
		Decision:          decision,
		Priority:          priority,
		ChurnRisk:         clamp01(*payload.ChurnRisk),
		RecommendedAction: truncateAction(action),
	}, nil
}

// stripWrapping removes non-payload formatting around the JSON object:
// markdown code fences (with or without a language tag) and any prose
// before the first '{' or after the last '}'.
func stripWrapping(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		var kept []string
		for _, line := range strings.Split(s, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				continue
			}
			kept = append(kept, line)
		}
		s = strings.TrimSpace(strings.Join(kept, "\n"))
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// truncateAction caps the recommended action at the response limit, marking
// the cut with an ellipsis. Counted in runes so multi-byte text is not split.
func truncateAction(s string) string {
	runes := []rune(s)
	if len(runes) <= triage.MaxActionLen {
		return s
	}
	return string(runes[:triage.MaxActionLen-3]) + "..."
}
