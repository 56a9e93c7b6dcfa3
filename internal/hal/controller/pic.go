// Package controller provides concrete implementations of hal.Controller,
// the polymorphic interrupt-controller adapter, for the two broad shapes of
// real hardware this core has to mediate: one that cannot mask
// equal-or-lower priorities while an interrupt is in service (PIC), and one
// that can (GIC).
package controller

// pic.go is a single 8259A-style programmable interrupt controller,
// grounded on the in-service/request/mask register model in
// core_engine/devices/pic.go from the retrieval pack (BigBossBoolingB's
// VDATABPro). Unlike that reference, this adapter is not also an I/O-port
// device: it only implements the acknowledge/EOI capability hal.Controller
// needs, with the in-service-register bookkeeping kept just accurate
// enough to exercise the dispatcher's "no hardware priority masking"
// branch (PriorityCount() == 0).

import (
	"fmt"
	"sync"

	"github.com/smoynes/runlevel/internal/hal"
)

// PIC is an 8259A-style controller: it has no notion of interrupt
// priority beyond "lowest-numbered IRQ line wins," and cannot mask
// equal-or-lower-priority lines while one is in service — software must
// leave CPU interrupts disabled for the full duration of the walk.
type PIC struct {
	mut sync.Mutex

	// irr is the interrupt-request register: one bit per IRQ line,
	// set when a device asserts its line.
	irr uint8

	// isr is the in-service register: one bit per IRQ line currently
	// being serviced, cleared by EndOfInterrupt.
	isr uint8

	// base is the vector offset IRQ 0 maps to (the PIC's ICW2).
	base uint8
}

// NewPIC creates a PIC whose IRQ lines are vectored starting at base.
func NewPIC(base uint8) *PIC {
	return &PIC{base: base}
}

// Raise asserts irq's request line, as an external device would. It is not
// part of the hal.Controller interface; it exists so tests and the demo
// can simulate a device firing.
func (p *PIC) Raise(irq uint8) {
	p.mut.Lock()
	defer p.mut.Unlock()

	p.irr |= 1 << irq
}

// Acknowledge returns the highest-priority (lowest IRQ number) requested
// line not already in service, moving it from request to in-service.
func (p *PIC) Acknowledge() (hal.Vector, hal.MagicCandy, hal.Cause) {
	p.mut.Lock()
	defer p.mut.Unlock()

	for irq := uint8(0); irq < 8; irq++ {
		bit := uint8(1) << irq

		if p.irr&bit == 0 || p.isr&bit != 0 {
			continue
		}

		p.irr &^= bit
		p.isr |= bit

		return hal.Vector(p.base + irq), hal.MagicCandy(irq), hal.LineFired
	}

	return 0, 0, hal.Spurious
}

// EndOfInterrupt clears the in-service bit named by candy (the IRQ number
// Acknowledge returned).
func (p *PIC) EndOfInterrupt(candy hal.MagicCandy) {
	p.mut.Lock()
	defer p.mut.Unlock()

	p.isr &^= 1 << uint8(candy)
}

// PriorityCount is always zero: the 8259A cannot mask equal-or-lower
// priority lines while one is in service.
func (*PIC) PriorityCount() int {
	return 0
}

func (p *PIC) String() string {
	p.mut.Lock()
	defer p.mut.Unlock()

	return fmt.Sprintf("PIC(base:%0#2x irr:%08b isr:%08b)", p.base, p.irr, p.isr)
}
