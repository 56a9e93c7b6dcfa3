package controller

// gic.go is a software model of an ARM GICv2-style controller, grounded on
// the distributor/CPU-interface register layout in
// mazboot/golang/main/gic_qemu.go from the retrieval pack (the QEMU virt
// GIC driver): GICD_IPRIORITYRn for per-interrupt priority, GICC_PMR for
// the running priority mask, GICC_IAR/GICC_EOIR for acknowledge/EOI. A GIC
// masks equal-or-lower-priority lines in hardware while one is in service,
// so hal.Controller.PriorityCount reports nonzero here — the dispatcher is
// allowed to re-enable CPU interrupts and let a strictly-higher interrupt
// preempt the walker.

import (
	"fmt"
	"sync"

	"github.com/smoynes/runlevel/internal/hal"
)

// GIC is a minimal, single-CPU-interface software model of a GICv2
// distributor.
type GIC struct {
	mut sync.Mutex

	pending  map[uint16]bool
	priority map[uint16]uint8

	// runningPriority is the GICC_RPR: the priority of the
	// highest-priority interrupt currently in service, or 0xff (lowest)
	// when idle.
	runningPriority uint8
}

// NewGIC creates an idle GIC.
func NewGIC() *GIC {
	return &GIC{
		pending:         make(map[uint16]bool),
		priority:        make(map[uint16]uint8),
		runningPriority: 0xff,
	}
}

// SetPriority configures an interrupt's GICD_IPRIORITYRn entry. Lower
// values are higher priority, matching real GIC semantics.
func (g *GIC) SetPriority(intID uint16, priority uint8) {
	g.mut.Lock()
	defer g.mut.Unlock()

	g.priority[intID] = priority
}

// Raise marks intID pending, as the distributor would on a line assertion
// or SGI/PPI/SPI delivery.
func (g *GIC) Raise(intID uint16) {
	g.mut.Lock()
	defer g.mut.Unlock()

	g.pending[intID] = true
}

// Acknowledge implements the GICC_IAR read: it returns the highest-priority
// pending interrupt whose priority is strictly higher (numerically lower)
// than the current running priority, and raises the running priority to
// match — the hardware priority-masking behavior PriorityCount reports.
func (g *GIC) Acknowledge() (hal.Vector, hal.MagicCandy, hal.Cause) {
	g.mut.Lock()
	defer g.mut.Unlock()

	var (
		best     uint16
		bestPrio = uint8(0xff)
		found    bool
	)

	for intID, isPending := range g.pending {
		if !isPending {
			continue
		}

		prio := g.priority[intID]

		if prio < g.runningPriority && (!found || prio < bestPrio) {
			best, bestPrio, found = intID, prio, true
		}
	}

	if !found {
		return 0, 0, hal.Spurious
	}

	g.pending[best] = false
	g.runningPriority = bestPrio

	return hal.Vector(best), hal.MagicCandy(best), hal.LineFired
}

// EndOfInterrupt implements the GICC_EOIR write: it restores the running
// priority to idle. A real GICC_RPR unwinds to the next-outermost nested
// priority rather than straight to idle; this model keeps no record of
// nested priorities, so after Acknowledge has accepted a higher-priority
// interrupt on top of one still in service, the first EOI unmasks every
// priority, including those of the outer interrupt.
func (g *GIC) EndOfInterrupt(_ hal.MagicCandy) {
	g.mut.Lock()
	defer g.mut.Unlock()

	g.runningPriority = 0xff
}

// PriorityCount is nonzero: a GICv2 CPU interface enforces priority
// masking via GICC_PMR/GICC_RPR, independent of the CPU's own interrupt
// line.
func (*GIC) PriorityCount() int {
	return 256
}

func (g *GIC) String() string {
	g.mut.Lock()
	defer g.mut.Unlock()

	return fmt.Sprintf("GIC(running_priority:%0#2x pending:%d)", g.runningPriority, len(g.pending))
}
