// Package audit records every triage decision to configurable sinks (JSONL
// file, webhook). Delivery is asynchronous and best-effort: the decision
// path never blocks on the audit trail, and a full queue drops events rather
// than slowing requests down.
package audit

import (
	"context"
	"time"
)

// Event is one audited triage decision. Message content is deliberately not
// recorded; only its length, to keep customer text out of the trail.
type Event struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	AccountID  string    `json:"account_id"`
	Tier       string    `json:"tier"`
	Channel    string    `json:"channel"`
	MessageLen int       `json:"message_len"`
	Decision   string    `json:"decision"`
	Priority   string    `json:"priority"`
	ChurnRisk  float64   `json:"churn_risk"`
	Confidence float64   `json:"confidence"`
	DurationMS int64     `json:"duration_ms"`
}

// Sink consumes audit events (file, webhook, etc.).
type Sink interface {
	Name() string
	Deliver(context.Context, *Event) error
	Close(context.Context) error
}
