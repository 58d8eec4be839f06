// fifo_queue.go
package wcall

const (
	initialFifoCapacity = 64
)

// fifoQueue is a growable first-in–first-out ring buffer of jobs.
//
// It is not safe for concurrent use; the JobQueue guards it with its own
// mutex. Push never drops: when the buffer is full it doubles in size.
type fifoQueue struct {
	buf        []Job // circular buffer
	head, tail int   // read/write indices
	size       int   // number of jobs currently buffered
}

func newFifoQueue(capacity int) *fifoQueue {
	if capacity <= 0 {
		capacity = initialFifoCapacity
	}
	return &fifoQueue{buf: make([]Job, capacity)}
}

// Len returns the number of jobs currently waiting in the queue.
func (q *fifoQueue) Len() int { return q.size }

// Push inserts a job at the tail of the queue, growing the buffer if needed.
func (q *fifoQueue) Push(j Job) {
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[q.tail] = j
	q.tail++
	if q.tail == len(q.buf) {
		q.tail = 0
	}
	q.size++
}

// Pop removes and returns the oldest job.
//
// If the queue is empty, returns nil and false.
func (q *fifoQueue) Pop() (Job, bool) {
	if q.size == 0 {
		return nil, false
	}
	j := q.buf[q.head]
	q.buf[q.head] = nil // let the closure be collected
	q.head++
	if q.head == len(q.buf) {
		q.head = 0
	}
	q.size--
	return j, true
}

// PopAll removes every buffered job and returns them oldest first.
func (q *fifoQueue) PopAll() []Job {
	out := make([]Job, 0, q.size)
	for {
		j, ok := q.Pop()
		if !ok {
			return out
		}
		out = append(out, j)
	}
}

func (q *fifoQueue) grow() {
	next := make([]Job, len(q.buf)*2)
	n := copy(next, q.buf[q.head:])
	copy(next[n:], q.buf[:q.head])
	q.buf = next
	q.head = 0
	q.tail = q.size
}
