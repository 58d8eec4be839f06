package wcall

import (
	"errors"
	"fmt"
)

var (
	// ErrNilJob is returned when a nil Job is submitted.
	ErrNilJob = errors.New("wcall: job func is nil")

	// ErrQueueClosed is returned by Send once every sender handle is released.
	ErrQueueClosed = errors.New("wcall: queue closed")

	// ErrNoReceivers is returned by Send when no receiver handle is left to
	// consume the job. The job is not queued.
	ErrNoReceivers = errors.New("wcall: queue has no receivers")

	// ErrExecutorClosed is returned when submitting to an executor after Shutdown.
	ErrExecutorClosed = errors.New("wcall: executor closed")

	// ErrResultTaken is returned by Call accessors once the result has been consumed.
	ErrResultTaken = errors.New("wcall: result already taken from this call")

	// ErrNotReady is returned by Call.Poll while the result is still pending.
	ErrNotReady = errors.New("wcall: result not ready")

	// ErrAbnormalTermination is matched by every *PanicError.
	ErrAbnormalTermination = errors.New("wcall: job terminated abnormally")
)

// PanicError is the error a PanicGuard synthesizes when its job panics or
// returns without completing the paired Call.
type PanicError struct {
	// Value is the recovered panic value, nil if the job returned without
	// completing.
	Value any

	// Context is the diagnostic description given to the guard, if any.
	Context string

	// Stack is the goroutine stack captured at recovery.
	Stack []byte
}

func (e *PanicError) Error() string {
	var what string
	if e.Value == nil {
		what = "job exited without completing its call"
	} else {
		what = fmt.Sprintf("panic: %v", e.Value)
	}
	if e.Context == "" {
		return "wcall: " + what
	}
	return fmt.Sprintf("wcall: %s while executing %q", what, e.Context)
}

func (e *PanicError) Unwrap() error { return ErrAbnormalTermination }
