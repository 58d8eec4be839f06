package wcall

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
)

// errWorkerExited stands in for the panic value when a job ends its
// goroutine with runtime.Goexit.
var errWorkerExited = errors.New("worker goroutine exited")

// slot is one worker position. A slot outlives the goroutines that fill it.
type slot struct {
	id int

	mu    sync.Mutex
	delay func() time.Duration
}

// nextDelay returns how long a replacement should wait before consuming.
// A worker that completed at least one job restarts immediately and resets
// the slot backoff; consecutive crashes without progress back off.
func (s *slot) nextDelay(ran int, rp RestartPolicy) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ran > 0 || s.delay == nil {
		s.delay = rp.newDelay()
		return 0
	}
	return s.delay()
}

func (d *dispatcher) startWorker(s *slot, rx *Receiver, delay time.Duration) {
	d.wg.Add(1)
	go d.work(s, rx, delay)
}

// work consumes rx until the queue is closed and drained.
//
// The deferred sentinel runs whenever the loop is left abnormally. It hands
// rx to a replacement goroutine, so a panicking job never loses the slot or
// the jobs queued behind it.
func (d *dispatcher) work(s *slot, rx *Receiver, delay time.Duration) {
	defer d.wg.Done()

	ran := 0
	finished := false
	defer func() {
		if finished {
			rx.Release()
			return
		}
		d.respawn(s, rx, ran, recover())
	}()

	if d.opts.LockOSThread {
		// never unlocked: the thread exits with the goroutine
		runtime.LockOSThread()
		if d.opts.PinWorkers {
			if err := pinSlot(s.id); err != nil {
				lg.FromContext(d.opts.Context).Warn("pin worker failed", lg.Int("slot", s.id), lg.Any("error", err))
			}
		}
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	for job := range rx.All() {
		job()
		ran++
		d.opts.Metrics.IncExecuted()
	}
	finished = true
}

func (d *dispatcher) respawn(s *slot, rx *Receiver, ran int, r any) {
	if r == nil {
		r = errWorkerExited
	}
	pe := &PanicError{
		Value:   r,
		Context: fmt.Sprintf("worker %d", s.id),
		Stack:   debug.Stack(),
	}
	d.opts.Metrics.IncPanicked()
	d.reportJobError(pe)

	delay := s.nextDelay(ran, d.opts.Restart)
	lg.FromContext(d.opts.Context).Error("job panicked; respawning worker",
		lg.Int("slot", s.id),
		lg.Int("completed", ran),
		lg.String("sleep", delay.String()),
		lg.Any("panic", r),
	)
	d.opts.Metrics.IncRespawned()
	d.startWorker(s, rx, delay)
}
