package wcall

import (
	"runtime/debug"
	"sync/atomic"
)

// PanicGuard owns the sending half of a Call.
//
// The job completes the Call with Complete. The job must also defer Release,
// which resolves the Call with a *PanicError if the job panics or returns
// without completing:
//
//	guard, call := wcall.NewCall[int]("sum")
//	job := func() {
//		defer guard.Release()
//		guard.Complete(sum(xs), nil)
//	}
//
// Release re-panics after completing the Call so the executor still sees
// the worker terminate.
type PanicGuard[T any] struct {
	ch   chan<- Result[T]
	desc string
	done atomic.Bool
}

// Complete delivers the result and disarms the guard. Only the first
// completion is delivered; Complete reports whether this one was.
func (g *PanicGuard[T]) Complete(v T, err error) bool {
	return g.deliver(Result[T]{Value: v, Err: err})
}

func (g *PanicGuard[T]) deliver(res Result[T]) bool {
	if g.done.Swap(true) {
		return false
	}
	// capacity 1 and a single delivery: never blocks
	g.ch <- res
	return true
}

// Release must be deferred by the job body.
func (g *PanicGuard[T]) Release() {
	r := recover()
	if !g.done.Load() {
		var zero T
		g.deliver(Result[T]{Value: zero, Err: &PanicError{
			Value:   r,
			Context: g.desc,
			Stack:   stackIf(r != nil),
		}})
	}
	if r != nil {
		panic(r)
	}
}

// Armed reports whether the Call is still waiting for this guard.
func (g *PanicGuard[T]) Armed() bool { return !g.done.Load() }

// Context returns the diagnostic description attached to synthesized errors.
func (g *PanicGuard[T]) Context() string { return g.desc }

func stackIf(ok bool) []byte {
	if !ok {
		return nil
	}
	return debug.Stack()
}
