package wcall

// reportInternalError reports an executor-internal condition such as a
// queue rebuild. These conditions heal themselves and never reach callers.
// If no handler is registered, the error is silently ignored.
func (d *dispatcher) reportInternalError(e error) {
	if d.opts.OnInternalError != nil {
		d.opts.OnInternalError(e)
	}
}

// reportJobError reports a job panic.
//
// The panic has already been delivered to the job's Call when the job used a
// PanicGuard; this hook is for observation only.
func (d *dispatcher) reportJobError(err error) {
	if d.opts.OnJobError != nil {
		d.opts.OnJobError(err)
	}
}
