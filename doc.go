// Package wcall runs deferred work on background workers and hands the
// caller a handle that resolves to exactly one result, even when the job
// crashes its worker.
//
// Design goals
//
// The package is designed around the following principles:
//
//   - A submitted job is never silently lost
//   - A crashing job never takes the executor down with it
//   - Every Call resolves, with a value or with an error
//   - Submit stays cheap and never blocks on capacity
//
// Architecture overview
//
// The package is composed of three loosely coupled layers:
//
//  1. Queueing (JobQueue)
//     An unbounded blocking FIFO shared by any number of Sender and
//     Receiver handles. Releasing the last Sender closes the queue;
//     receivers still drain what was queued before the close.
//
//  2. Execution (SingleWorker / Pool / SyncExecutor)
//     Workers pull jobs from one queue. Every worker runs under a deferred
//     sentinel: when a job panics, the sentinel reports the crash and
//     starts a replacement goroutine on the same receiver. If the queue
//     itself becomes unusable, the next Submit builds a fresh queue and
//     worker set and moves the pending jobs over.
//
//  3. Result delivery (Call / PanicGuard)
//     NewCall returns a Call and the PanicGuard the job uses to complete
//     it. The job defers guard.Release(), which resolves the Call with a
//     *PanicError if the job panics or returns without completing.
//
// Restart pacing
//
// A slot whose replacement crashes again before finishing any job backs
// off with jittered exponential delays (RestartPolicy). A single completed
// job resets the slot.
//
// Metrics
//
// Executors report through MetricsPolicy. AtomicMetrics keeps padded
// in-process counters, PromMetrics exports them to Prometheus and
// NoopMetrics discards them.
//
// The rest subpackage builds an HTTP request pipeline on top of these
// primitives.
package wcall
