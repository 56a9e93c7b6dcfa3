package hal

// queue.go is the per-processor pending-interrupt queue (component C): a
// bounded, strictly priority-ordered stack of interrupts that arrived while
// the CPU was masked against them.

import "fmt"

// PendingInterrupt is one deferred hardware interrupt, captured at the
// moment it arrived masked.
type PendingInterrupt struct {
	Vector     Vector
	Controller Controller
	Candy      MagicCandy
}

func (p PendingInterrupt) String() string {
	return fmt.Sprintf("Pending{vec:%0#2x ctrl:%s}", uint8(p.Vector), p.Controller)
}

// maxPending bounds the queue. A correctly configured kernel declares at
// least as many run levels above Low as the deepest possible nesting of
// masked arrivals; exceeding this is a programming or configuration error,
// not a runtime condition the core recovers from.
const maxPending = NumRunLevel

// PendingInterruptQueue is a fixed-size, tail-highest-priority buffer of
// interrupts deferred while masked. Only the CPU owning the enclosing
// processor block may touch it, and only with hardware interrupts
// disabled; the type itself does no locking.
type PendingInterruptQueue struct {
	entries [maxPending]PendingInterrupt
	count   int
	table   *VectorTable
}

// Len returns the number of pending interrupts.
func (q *PendingInterruptQueue) Len() int {
	return q.count
}

// Enqueue pushes p onto the queue. The caller is required to have already
// checked that the current run level is ≥ the vector's run level — that
// guarantee is what keeps the queue's tail-highest invariant intact,
// because any interrupt already running (or already queued above) strictly
// dominates whatever is being pushed now. Enqueue panics if the queue is
// full: more outstanding priorities than the kernel declared run levels is
// a configuration bug, not a recoverable runtime condition.
func (q *PendingInterruptQueue) Enqueue(p PendingInterrupt) {
	if q.count >= maxPending {
		panic(fmt.Sprintf("hal: pending-interrupt queue overflow: vec=%0#2x depth=%d", uint8(p.Vector), q.count))
	}

	q.entries[q.count] = p
	q.count++
}

// PeekHighest returns the highest-priority pending interrupt — the one at
// the tail — without removing it, and false if the queue is empty.
func (q *PendingInterruptQueue) PeekHighest() (PendingInterrupt, bool) {
	if q.count == 0 {
		return PendingInterrupt{}, false
	}

	return q.entries[q.count-1], true
}

// Pop removes the highest-priority pending interrupt.
func (q *PendingInterruptQueue) Pop() {
	if q.count > 0 {
		q.count--
	}
}

// Above reports whether the queue's tail entry has a run level strictly
// greater than rl — the drain-loop's continuation condition in
// lowerRunLevelInternal.
func (q *PendingInterruptQueue) Above(rl RunLevel) bool {
	p, ok := q.PeekHighest()
	if !ok {
		return false
	}

	return q.table.RunLevel(p.Vector) > rl
}
