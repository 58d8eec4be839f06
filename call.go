package wcall

import (
	"context"
)

// Result is the terminal outcome of a job.
type Result[T any] struct {
	Value T
	Err   error
}

type callState uint8

const (
	// stateWaiting: the result arrives on ch.
	stateWaiting callState = iota
	// stateImmediate: the result was known when the Call was created.
	stateImmediate
	// stateTaken: the result has been consumed. Terminal.
	stateTaken
)

// Call is a handle to the result of one job.
//
// A Call yields its result exactly once. Every access after that reports
// ErrResultTaken instead of blocking. Dropping a Call does not stop the job;
// its result is discarded.
//
// A Call must not be used by several goroutines at the same time.
type Call[T any] struct {
	state callState
	ch    <-chan Result[T]
	res   Result[T]
}

// NewCall creates a pending Call and the PanicGuard that completes it.
//
// The guard must be handed to the job, which defers guard.Release(). desc is
// an optional description attached to synthesized errors.
func NewCall[T any](desc string) (*PanicGuard[T], *Call[T]) {
	ch := make(chan Result[T], 1)
	return &PanicGuard[T]{ch: ch, desc: desc}, &Call[T]{state: stateWaiting, ch: ch}
}

// Immediate returns a Call already resolved with v and err. No job is involved.
func Immediate[T any](v T, err error) *Call[T] {
	return &Call[T]{state: stateImmediate, res: Result[T]{Value: v, Err: err}}
}

// Failed returns a Call already resolved with err.
func Failed[T any](err error) *Call[T] {
	var zero T
	return Immediate(zero, err)
}

// take moves the call to stateTaken and returns the state it left.
func (c *Call[T]) take() (callState, Result[T]) {
	prev, res := c.state, c.res
	c.state = stateTaken
	c.res = Result[T]{}
	return prev, res
}

// Poll returns the result if it is available.
//
// It returns ErrNotReady while the job is still running and ErrResultTaken
// once the result has been consumed. Any other error is the job's own.
func (c *Call[T]) Poll() (T, error) {
	var zero T
	switch c.state {
	case stateTaken:
		return zero, ErrResultTaken
	case stateImmediate:
		_, res := c.take()
		return res.Value, res.Err
	}
	select {
	case res := <-c.ch:
		c.take()
		return res.Value, res.Err
	default:
		return zero, ErrNotReady
	}
}

// Block waits for the result.
//
// Block always returns: a job that panics or exits without completing
// resolves its Call with a *PanicError.
func (c *Call[T]) Block() (T, error) {
	prev, res := c.take()
	switch prev {
	case stateTaken:
		var zero T
		return zero, ErrResultTaken
	case stateImmediate:
		return res.Value, res.Err
	}
	res = <-c.ch
	return res.Value, res.Err
}

// Await is Block bounded by ctx. If ctx ends first, ctx.Err() is returned and
// the Call stays pending.
func (c *Call[T]) Await(ctx context.Context) (T, error) {
	if c.state != stateWaiting {
		return c.Block()
	}
	select {
	case res := <-c.ch:
		c.take()
		return res.Value, res.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// IsReady reports whether Poll would return the result without blocking.
func (c *Call[T]) IsReady() bool {
	switch c.state {
	case stateImmediate:
		return true
	case stateWaiting:
		return len(c.ch) > 0
	default:
		return false
	}
}

// IsTaken reports whether the result has been consumed.
func (c *Call[T]) IsTaken() bool { return c.state == stateTaken }

// IsImmediate reports whether the Call was resolved without queuing a job.
func (c *Call[T]) IsImmediate() bool { return c.state == stateImmediate }

// Ignore discards the result. The job, if any, still runs.
func (c *Call[T]) Ignore() { c.take() }
