package triage

import (
	"fmt"
	"strings"
)

// Limits enforced on incoming requests before the pipeline runs.
const (
	MaxMessageLen = 5000
	MaxHistoryLen = 50
	MaxActionLen  = 500
)

// Tier is the customer subscription level. It parameterizes the fallback
// policy, the confidence scorer and the rate limiter.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// ParseTier validates a tier string. Empty defaults to free.
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(s)) {
	case "":
		return TierFree, nil
	case TierFree:
		return TierFree, nil
	case TierPro:
		return TierPro, nil
	case TierEnterprise:
		return TierEnterprise, nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

// Channel is where the customer message arrived from.
type Channel string

const (
	ChannelEmail  Channel = "email"
	ChannelChat   Channel = "chat"
	ChannelReview Channel = "review"
	ChannelSocial Channel = "social"
)

// ParseChannel validates a channel string. Empty defaults to email.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(s)) {
	case "":
		return ChannelEmail, nil
	case ChannelEmail:
		return ChannelEmail, nil
	case ChannelChat:
		return ChannelChat, nil
	case ChannelReview:
		return ChannelReview, nil
	case ChannelSocial:
		return ChannelSocial, nil
	}
	return "", fmt.Errorf("unknown channel %q", s)
}

// Decision is the action support staff should take, totally ordered by
// severity. The order lives in Rank, not in declaration position, so
// reordering the constants cannot silently change merge behavior.
type Decision string

const (
	DecisionIgnore              Decision = "ignore"
	DecisionStandardResponse    Decision = "standard_response"
	DecisionPriorityResponse    Decision = "priority_response"
	DecisionImmediateEscalation Decision = "immediate_escalation"
)

// Rank returns the severity rank of the decision. Unknown decisions rank
// below every valid one so they can never win a merge.
func (d Decision) Rank() int {
	switch d {
	case DecisionIgnore:
		return 0
	case DecisionStandardResponse:
		return 1
	case DecisionPriorityResponse:
		return 2
	case DecisionImmediateEscalation:
		return 3
	}
	return -1
}

// Valid reports whether d is one of the four known decisions.
func (d Decision) Valid() bool { return d.Rank() >= 0 }

// ParseDecision validates a decision string.
func ParseDecision(s string) (Decision, error) {
	d := Decision(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown decision %q", s)
	}
	return d, nil
}

// MaxDecision returns the more severe of the two decisions.
func MaxDecision(a, b Decision) Decision {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Priority is the urgency of the response, totally ordered by Rank.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank returns the urgency rank of the priority.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	}
	return -1
}

// Valid reports whether p is one of the four known priorities.
func (p Priority) Valid() bool { return p.Rank() >= 0 }

// ParsePriority validates a priority string.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// MaxPriority returns the more urgent of the two priorities.
func MaxPriority(a, b Priority) Priority {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Request is one customer message with its context. It is immutable for the
// lifetime of a single evaluation; nothing in the pipeline mutates it.
type Request struct {
	Message string   `json:"message"`
	Tier    Tier     `json:"tier"`
	Channel Channel  `json:"channel"`
	History []string `json:"history,omitempty"`
}

// TrimmedMessage returns the message with surrounding whitespace removed.
func (r *Request) TrimmedMessage() string {
	return strings.TrimSpace(r.Message)
}

// RuleOutcome is the result of a single rule match. Decision and Priority,
// when set, are floors: the merge step may raise the final values to them
// but never lower anything. A terminal outcome bypasses the advisory step
// entirely and fully determines the response.
type RuleOutcome struct {
	Decision        Decision
	Priority        Priority
	ConfidenceBoost float64
	Reason          string
	Terminal        bool
}

// AdvisoryOutcome is the advisory capability's (or the fallback policy's)
// assessment of the message. Exactly one exists per non-terminal evaluation.
type AdvisoryOutcome struct {
	Decision          Decision `json:"decision"`
	Priority          Priority `json:"priority"`
	ChurnRisk         float64  `json:"churn_risk"`
	RecommendedAction string   `json:"recommended_action"`
}

// Response is the final triage decision. All five fields are present and
// within bounds on every exit path of the pipeline.
type Response struct {
	Decision          Decision `json:"decision"`
	Priority          Priority `json:"priority"`
	ChurnRisk         float64  `json:"churn_risk"`
	Confidence        float64  `json:"confidence"`
	RecommendedAction string   `json:"recommended_action"`
}
