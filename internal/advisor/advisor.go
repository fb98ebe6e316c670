// Package advisor is the boundary to the external analysis capability. The
// capability is advisory only: rules can always override it, and every
// failure mode (timeout, transport error, malformed output, unknown enum
// values) collapses to the single ErrUnavailable so callers handle them
// identically.
package advisor

import (
	"context"
	"errors"

	"github.com/decisio-ai/decisio/internal/triage"
)

// ErrUnavailable is the only error an Advisor returns. Failure causes are
// logged at the boundary and deliberately not distinguishable by callers.
var ErrUnavailable = errors.New("advisory capability unavailable")

// Advisor produces an AdvisoryOutcome for a request within a bounded
// timeout, or reports ErrUnavailable. Implementations must never panic and
// must abandon in-flight work when ctx is cancelled.
type Advisor interface {
	Advise(ctx context.Context, req *triage.Request) (*triage.AdvisoryOutcome, error)
}
