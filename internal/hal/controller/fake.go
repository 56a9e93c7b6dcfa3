package controller

// fake.go is a minimal, deterministic hal.Controller for tests that drive
// a hal.Dispatcher from outside package hal (hal's own tests cannot import
// this package, which imports hal), in the spirit of the teacher's
// testHarness pattern (internal/vm/test_test.go): a small hand-written
// fake rather than a generated or third-party mock, with its failure
// injection knobs exported as plain fields.

import (
	"fmt"
	"sync"

	"github.com/smoynes/runlevel/internal/hal"
)

// Fake is a controller a test can drive by hand: Queue appends a vector to
// acknowledge next, Acknowledge drains it FIFO, and ForceSpurious makes the
// next Acknowledge report Spurious regardless of the queue.
type Fake struct {
	mut sync.Mutex

	queued []hal.Vector

	// ForceSpurious, when true, makes the next Acknowledge call report
	// Spurious and consumes the flag.
	ForceSpurious bool

	// Priority, when nonzero, is returned by PriorityCount.
	Priority int

	// Acknowledged and EOIed record every candy this controller has
	// seen, in call order, for tests to assert ordering and that every
	// acknowledge is matched by exactly one EOI.
	Acknowledged []hal.MagicCandy
	EOIed        []hal.MagicCandy
}

// NewFake returns a Fake controller with no pending interrupts and no
// hardware priority masking.
func NewFake() *Fake {
	return &Fake{}
}

// Queue appends a vector for a future Acknowledge call to report, using
// the vector's own value as its MagicCandy.
func (f *Fake) Queue(v hal.Vector) {
	f.mut.Lock()
	defer f.mut.Unlock()

	f.queued = append(f.queued, v)
}

func (f *Fake) Acknowledge() (hal.Vector, hal.MagicCandy, hal.Cause) {
	f.mut.Lock()
	defer f.mut.Unlock()

	if f.ForceSpurious {
		f.ForceSpurious = false
		return 0, 0, hal.Spurious
	}

	if len(f.queued) == 0 {
		return 0, 0, hal.Spurious
	}

	v := f.queued[0]
	f.queued = f.queued[1:]

	candy := hal.MagicCandy(v)
	f.Acknowledged = append(f.Acknowledged, candy)

	return v, candy, hal.LineFired
}

func (f *Fake) EndOfInterrupt(candy hal.MagicCandy) {
	f.mut.Lock()
	defer f.mut.Unlock()

	f.EOIed = append(f.EOIed, candy)
}

func (f *Fake) PriorityCount() int {
	f.mut.Lock()
	defer f.mut.Unlock()

	return f.Priority
}

func (f *Fake) String() string {
	f.mut.Lock()
	defer f.mut.Unlock()

	return fmt.Sprintf("Fake(queued:%d acked:%d eoied:%d)", len(f.queued), len(f.Acknowledged), len(f.EOIed))
}
