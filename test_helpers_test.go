package wcall

import (
	"context"
	"runtime"
	"testing"
	"time"
)

const testTimeout = 5 * time.Second

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	t.Fatal("condition not satisfied before timeout")
}

// fastRestart keeps crash-loop pacing short in tests.
var fastRestart = RestartPolicy{Initial: time.Millisecond, Max: 5 * time.Millisecond}

func newTestPool(t *testing.T, workers int, m MetricsPolicy) *Pool {
	t.Helper()

	p := NewPool(Options{Workers: workers, Restart: fastRestart, Metrics: m})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		if err := p.Shutdown(ctx); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})
	return p
}

func newTestSingle(t *testing.T, m MetricsPolicy) *SingleWorker {
	t.Helper()

	w := NewSingleWorker(Options{Restart: fastRestart, Metrics: m})
	t.Cleanup(w.Stop)
	return w
}

// guarded wraps fn the way callers are expected to: the job completes its
// Call and defers the guard release.
func guarded[T any](desc string, fn func() (T, error)) (Job, *Call[T]) {
	guard, call := NewCall[T](desc)
	return func() {
		defer guard.Release()
		guard.Complete(fn())
	}, call
}

func blockWithin[T any](t *testing.T, c *Call[T]) (T, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	v, err := c.Await(ctx)
	if err == context.DeadlineExceeded {
		t.Fatal("call did not resolve in time")
	}
	return v, err
}
