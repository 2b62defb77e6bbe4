package orchestrator

import "sync/atomic"

// CancelToken is a cooperative cancellation flag observed between stages
// and at every poll tick (spec.md §5). Cancelling never interrupts an
// in-flight HTTP call; it only stops the next stage or poll tick from
// starting.
type CancelToken struct {
	cancelled atomic.Bool
}

// NewCancelToken returns a token in the not-cancelled state.
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Cancel flags the token. Safe to call more than once, from any goroutine.
func (t *CancelToken) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (t *CancelToken) Cancelled() bool {
	return t.cancelled.Load()
}
