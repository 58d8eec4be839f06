package wcall

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// cachePad is used to prevent false sharing between hot fields.
type cachePad = cpu.CacheLinePad

// MetricsPolicy defines hooks used by executors to report queueing and
// execution activity.
//
// Implementations must be safe for concurrent use.
// All methods are expected to be lightweight and non-blocking.
type MetricsPolicy interface {
	// IncSubmitted counts a job accepted by a queue.
	IncSubmitted()

	// IncExecuted counts a job that returned normally.
	IncExecuted()

	// IncPanicked counts a job that panicked and took its worker down.
	IncPanicked()

	// IncRespawned counts a replacement worker started by a dying one.
	IncRespawned()

	// IncRebuilt counts a fresh queue built after the old one became unusable.
	IncRebuilt()
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	submitted atomic.Uint64
	_         cachePad
	executed  atomic.Uint64
	_         cachePad

	panicked  atomic.Uint64
	respawned atomic.Uint64
	rebuilt   atomic.Uint64
}

func (m *AtomicMetrics) IncSubmitted() { m.submitted.Add(1) }
func (m *AtomicMetrics) IncExecuted()  { m.executed.Add(1) }
func (m *AtomicMetrics) IncPanicked()  { m.panicked.Add(1) }
func (m *AtomicMetrics) IncRespawned() { m.respawned.Add(1) }
func (m *AtomicMetrics) IncRebuilt()   { m.rebuilt.Add(1) }

// Submitted returns the total number of accepted jobs.
func (m *AtomicMetrics) Submitted() uint64 { return m.submitted.Load() }

// Executed returns the total number of jobs that returned normally.
func (m *AtomicMetrics) Executed() uint64 { return m.executed.Load() }

// Panicked returns the total number of jobs that panicked.
func (m *AtomicMetrics) Panicked() uint64 { return m.panicked.Load() }

// Respawned returns the number of replacement workers started.
func (m *AtomicMetrics) Respawned() uint64 { return m.respawned.Load() }

// Rebuilt returns the number of queue rebuilds.
func (m *AtomicMetrics) Rebuilt() uint64 { return m.rebuilt.Load() }

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
type NoopMetrics struct{}

func (m *NoopMetrics) IncSubmitted() {}
func (m *NoopMetrics) IncExecuted()  {}
func (m *NoopMetrics) IncPanicked()  {}
func (m *NoopMetrics) IncRespawned() {}
func (m *NoopMetrics) IncRebuilt()   {}
