package advisor

import (
	"context"
	"sync/atomic"

	"github.com/decisio-ai/decisio/internal/triage"
)

// Fake is a deterministic advisor for tests. Exactly one of Raw, Outcome or
// Err drives each call: Err wins, then Raw is run through ParseAdvisory
// (exercising the same defensive path as the real client), then Outcome is
// returned as-is. A fake with none of them set reports ErrUnavailable.
type Fake struct {
	Outcome *triage.AdvisoryOutcome
	Raw     string
	Err     error

	calls atomic.Int64
}

// NewFake returns a fake advisor that always succeeds with the outcome.
func NewFake(outcome *triage.AdvisoryOutcome) *Fake {
	return &Fake{Outcome: outcome}
}

func (f *Fake) Advise(ctx context.Context, req *triage.Request) (*triage.AdvisoryOutcome, error) {
	f.calls.Add(1)

	if err := ctx.Err(); err != nil {
		return nil, ErrUnavailable
	}
	if f.Err != nil {
		return nil, ErrUnavailable
	}
	if f.Raw != "" {
		outcome, err := ParseAdvisory(f.Raw)
		if err != nil {
			return nil, ErrUnavailable
		}
		return outcome, nil
	}
	if f.Outcome == nil {
		return nil, ErrUnavailable
	}

	out := *f.Outcome
	return &out, nil
}

// Calls reports how many times Advise was invoked. Terminal rule tests use
// it to prove the advisory step was skipped.
func (f *Fake) Calls() int64 {
	return f.calls.Load()
}
