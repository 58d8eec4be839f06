package wcall

import (
	"context"
	"runtime"
)

const (
	// DefaultPoolWorkers is used by NewPool when Options.Workers is not set.
	DefaultPoolWorkers = 4
)

// Options configure a SingleWorker or a Pool.
//
// All zero values are replaced with sensible defaults in FillDefaults.
type Options struct {
	// Workers is the number of worker slots. SingleWorker always uses one.
	Workers int

	// Restart paces a slot whose replacement crashes again before it
	// completes a job.
	Restart RestartPolicy

	// LockOSThread binds every worker goroutine to its own OS thread.
	LockOSThread bool

	// PinWorkers pins slot i to CPU i % NumCPU (Linux only). Implies LockOSThread.
	PinWorkers bool

	// Metrics receives queueing and execution counters. Nil means NoopMetrics.
	Metrics MetricsPolicy

	// OnJobError is called with a *PanicError whenever a job panics and its
	// worker is replaced.
	OnJobError func(error)

	// OnInternalError is called when the executor has to rebuild its queue.
	OnInternalError func(error)

	// Context carries the logger used for worker diagnostics.
	// Nil means context.Background().
	Context context.Context
}

func (o *Options) FillDefaults() {
	if o.Workers <= 0 {
		o.Workers = min(DefaultPoolWorkers, runtime.GOMAXPROCS(0))
	}
	o.Restart.fillDefaults()
	if o.PinWorkers {
		o.LockOSThread = true
	}
	if o.Metrics == nil {
		o.Metrics = &NoopMetrics{}
	}
}
