package wcall

// SingleWorker runs jobs one at a time, in submission order, on a single
// long-lived worker goroutine. A job that panics is reported and the worker
// is replaced; the jobs behind it still run.
type SingleWorker struct {
	*dispatcher
}

// NewSingleWorker starts a SingleWorker. opts.Workers is ignored.
func NewSingleWorker(opts Options) *SingleWorker {
	opts.Workers = 1
	return &SingleWorker{dispatcher: newDispatcher(opts)}
}

// Pool runs jobs on a fixed number of worker slots sharing one queue.
// Each slot is restarted independently when its job panics.
type Pool struct {
	*dispatcher
}

// NewPool starts a Pool with opts.Workers slots.
func NewPool(opts Options) *Pool {
	return &Pool{dispatcher: newDispatcher(opts)}
}

var (
	_ Executor = (*SingleWorker)(nil)
	_ Executor = (*Pool)(nil)
	_ Executor = SyncExecutor{}
)
