package triage

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest tags every validation failure so the transport layer can
// map them to a 422 without inspecting messages.
var ErrInvalidRequest = errors.New("invalid request")

// Validate checks the request against the input contract. It runs before the
// pipeline; once it passes, evaluation always produces a valid response.
func (r *Request) Validate() error {
	if len(r.Message) == 0 {
		return fmt.Errorf("%w: message is required", ErrInvalidRequest)
	}
	if len(r.Message) > MaxMessageLen {
		return fmt.Errorf("%w: message exceeds %d characters", ErrInvalidRequest, MaxMessageLen)
	}
	if r.TrimmedMessage() == "" {
		return fmt.Errorf("%w: message cannot be whitespace only", ErrInvalidRequest)
	}
	if !r.Tier.valid() {
		return fmt.Errorf("%w: unknown tier %q", ErrInvalidRequest, r.Tier)
	}
	if !r.Channel.valid() {
		return fmt.Errorf("%w: unknown channel %q", ErrInvalidRequest, r.Channel)
	}
	if len(r.History) > MaxHistoryLen {
		return fmt.Errorf("%w: history exceeds %d entries", ErrInvalidRequest, MaxHistoryLen)
	}
	return nil
}

func (t Tier) valid() bool {
	switch t {
	case TierFree, TierPro, TierEnterprise:
		return true
	}
	return false
}

func (c Channel) valid() bool {
	switch c {
	case ChannelEmail, ChannelChat, ChannelReview, ChannelSocial:
		return true
	}
	return false
}
