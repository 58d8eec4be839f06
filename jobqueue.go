package wcall

import (
	"iter"
	"sync"
	"sync/atomic"
)

// Job is a single-invocation, argument-less unit of deferred work.
type Job func()

// queueState is the state shared by every Sender and Receiver of one queue.
//
// All fields are guarded by mu. The queue closes when the last sender is
// released and never reopens.
type queueState struct {
	mu        sync.Mutex
	cond      *sync.Cond
	jobs      *fifoQueue
	closed    bool
	senders   int
	receivers int
}

// Sender is the producing handle of a JobQueue.
//
// Any number of goroutines may Send through the same handle. Clone hands out
// additional handles; the queue stays open until every handle is released.
type Sender struct {
	s        *queueState
	released atomic.Bool
}

// Receiver is the consuming handle of a JobQueue.
//
// Receivers may be shared by several workers; each job is handed to exactly
// one Recv call.
type Receiver struct {
	s        *queueState
	released atomic.Bool
}

// NewJobQueue creates an unbounded blocking multi-producer/multi-consumer
// FIFO and returns its first sender and receiver handles.
func NewJobQueue() (*Sender, *Receiver) {
	s := &queueState{
		jobs:      newFifoQueue(initialFifoCapacity),
		senders:   1,
		receivers: 1,
	}
	s.cond = sync.NewCond(&s.mu)
	return &Sender{s: s}, &Receiver{s: s}
}

// Send appends job to the queue and wakes one sleeping receiver.
//
// Send never blocks on capacity. A job that is rejected (ErrQueueClosed,
// ErrNoReceivers) was not queued and remains owned by the caller.
func (tx *Sender) Send(job Job) error {
	if job == nil {
		return ErrNilJob
	}
	if tx.released.Load() {
		return ErrQueueClosed
	}
	s := tx.s
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrQueueClosed
	case s.receivers == 0:
		s.mu.Unlock()
		return ErrNoReceivers
	}
	s.jobs.Push(job)
	s.mu.Unlock()
	s.cond.Signal()
	return nil
}

// Clone returns a new sender handle onto the same queue.
func (tx *Sender) Clone() *Sender {
	s := tx.s
	s.mu.Lock()
	s.senders++
	s.mu.Unlock()
	return &Sender{s: s}
}

// Release gives up this handle. Releasing the last sender closes the queue
// and wakes every sleeping receiver. Release is idempotent.
func (tx *Sender) Release() {
	if tx.released.Swap(true) {
		return
	}
	s := tx.s
	s.mu.Lock()
	s.senders--
	if s.senders == 0 {
		s.closed = true
	}
	closed := s.closed
	s.mu.Unlock()
	if closed {
		s.cond.Broadcast()
	}
}

// Len returns the number of jobs waiting in the queue.
func (tx *Sender) Len() int { return tx.s.len() }

// drain removes every pending job. The caller becomes responsible for them.
func (tx *Sender) drain() []Job {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs.PopAll()
}

// Recv blocks until a job is available or the queue is closed.
//
// Jobs queued before the close are still returned; ok is false only once the
// queue is closed and empty.
func (rx *Receiver) Recv() (job Job, ok bool) {
	s := rx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.jobs.Len() == 0 && !s.closed {
		s.cond.Wait()
	}
	return s.jobs.Pop()
}

// TryRecv returns a pending job without blocking.
func (rx *Receiver) TryRecv() (Job, bool) {
	s := rx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs.Pop()
}

// All returns a blocking iterator over received jobs. Iteration ends when the
// queue is closed and drained.
func (rx *Receiver) All() iter.Seq[Job] {
	return func(yield func(Job) bool) {
		for {
			job, ok := rx.Recv()
			if !ok || !yield(job) {
				return
			}
		}
	}
}

// Clone returns a new receiver handle onto the same queue.
func (rx *Receiver) Clone() *Receiver {
	s := rx.s
	s.mu.Lock()
	s.receivers++
	s.mu.Unlock()
	return &Receiver{s: s}
}

// Release gives up this handle. Once every receiver is released, Send
// rejects new jobs with ErrNoReceivers. Release is idempotent.
func (rx *Receiver) Release() {
	if rx.released.Swap(true) {
		return
	}
	s := rx.s
	s.mu.Lock()
	s.receivers--
	s.mu.Unlock()
}

// Closed reports whether every sender has been released.
func (rx *Receiver) Closed() bool {
	s := rx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Len returns the number of jobs waiting in the queue.
func (rx *Receiver) Len() int { return rx.s.len() }

func (s *queueState) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs.Len()
}
