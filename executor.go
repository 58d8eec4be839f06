package wcall

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	lg "github.com/Andrej220/go-utils/zlog"
)

// Executor runs submitted jobs.
//
// Submit never reports a worker failure. It only fails for a nil job or
// when the executor has been shut down.
type Executor interface {
	Submit(job Job) error
}

// SyncExecutor runs every job on the calling goroutine.
//
// A panic escaping the job is recovered and reported, so a job guarded by a
// PanicGuard resolves its Call instead of crashing the caller.
type SyncExecutor struct {
	// OnJobError receives a *PanicError for every recovered panic.
	OnJobError func(error)
}

func (e SyncExecutor) Submit(job Job) error {
	if job == nil {
		return ErrNilJob
	}
	defer func() {
		if r := recover(); r != nil {
			lg.FromContext(context.Background()).Error("job panicked", lg.Any("panic", r))
			if e.OnJobError != nil {
				e.OnJobError(&PanicError{Value: r, Stack: debug.Stack()})
			}
		}
	}()
	job()
	return nil
}

// generation is the versioned sender cell. A new generation replaces the
// queue and every worker when the previous queue became unusable.
type generation struct {
	tx  *Sender
	seq uint64
}

// dispatcher is the core shared by SingleWorker and Pool.
type dispatcher struct {
	opts  Options
	slots []*slot

	mu     sync.RWMutex
	cur    *generation
	closed bool

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func newDispatcher(opts Options) *dispatcher {
	opts.FillDefaults()
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	d := &dispatcher{
		opts:  opts,
		slots: make([]*slot, opts.Workers),
	}
	for i := range d.slots {
		d.slots[i] = &slot{id: i}
	}
	d.cur = d.startGeneration(1)
	return d
}

// startGeneration creates a queue and one worker per slot consuming it.
func (d *dispatcher) startGeneration(seq uint64) *generation {
	tx, rx := NewJobQueue()
	for i, s := range d.slots {
		r := rx
		if i > 0 {
			r = rx.Clone()
		}
		d.startWorker(s, r, 0)
	}
	return &generation{tx: tx, seq: seq}
}

// Submit queues job for a worker.
//
// If the current queue can no longer deliver, Submit rebuilds it and
// retries until the job is accepted by a live queue.
func (d *dispatcher) Submit(job Job) error {
	if job == nil {
		return ErrNilJob
	}
	for {
		d.mu.RLock()
		g, closed := d.cur, d.closed
		d.mu.RUnlock()
		if closed {
			return ErrExecutorClosed
		}

		err := g.tx.Send(job)
		if err == nil {
			d.opts.Metrics.IncSubmitted()
			return nil
		}
		d.rebuild(g.seq, err)
	}
}

// rebuild replaces generation seen with a fresh queue and worker set. Only
// the first caller observing a given generation rebuilds it; concurrent
// callers wait on the lock and then retry on the new sender.
//
// Logging and the OnInternalError hook run after the lock is released, so
// the hook may call back into the executor.
func (d *dispatcher) rebuild(seen uint64, cause error) {
	d.mu.Lock()
	if d.closed || d.cur.seq != seen {
		d.mu.Unlock()
		return
	}

	old := d.cur
	next := d.startGeneration(seen + 1)
	pending := old.tx.drain()
	for _, job := range pending {
		// the fresh queue has live receivers and an unreleased sender
		_ = next.tx.Send(job)
	}
	old.tx.Release()
	d.cur = next
	d.mu.Unlock()

	d.opts.Metrics.IncRebuilt()
	lg.FromContext(d.opts.Context).Warn("queue unusable; rebuilt",
		lg.Any("cause", cause),
		lg.Int("generation", int(next.seq)),
		lg.Int("moved_jobs", len(pending)),
	)
	d.reportInternalError(fmt.Errorf("wcall: queue generation %d rebuilt: %w", seen, cause))
}

// Shutdown stops accepting jobs, lets the workers drain what is queued and
// waits for them to exit or for ctx to end.
func (d *dispatcher) Shutdown(ctx context.Context) error {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.cur.tx.Release()
		d.mu.Unlock()
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.wg.Wait()
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop is a blocking Shutdown.
func (d *dispatcher) Stop() { _ = d.Shutdown(context.Background()) }

// Generation returns the sequence number of the current queue. It starts at
// 1 and grows by one per rebuild.
func (d *dispatcher) Generation() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cur.seq
}

// Pending returns the number of jobs waiting in the current queue.
func (d *dispatcher) Pending() int {
	d.mu.RLock()
	g := d.cur
	d.mu.RUnlock()
	return g.tx.Len()
}

// Workers returns the number of worker slots.
func (d *dispatcher) Workers() int { return len(d.slots) }
