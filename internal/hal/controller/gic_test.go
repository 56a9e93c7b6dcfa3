package controller

import (
	"testing"

	"github.com/smoynes/runlevel/internal/hal"
)

func TestGICAcknowledgeHighestPriorityFirst(tt *testing.T) {
	g := NewGIC()
	g.SetPriority(5, 0x80)
	g.SetPriority(6, 0x10) // numerically lower priority value wins

	g.Raise(5)
	g.Raise(6)

	vector, candy, cause := g.Acknowledge()

	if cause != hal.LineFired {
		tt.Fatalf("want LineFired, got %s", cause)
	}

	if vector != hal.Vector(6) || candy != hal.MagicCandy(6) {
		tt.Errorf("want intID 6 (higher priority) acknowledged first, got vector %d candy %d", vector, candy)
	}
}

func TestGICMasksEqualOrLowerPriorityWhileInService(tt *testing.T) {
	g := NewGIC()
	g.SetPriority(5, 0x10)
	g.SetPriority(6, 0x20) // lower priority than 5

	g.Raise(5)
	_, _, cause := g.Acknowledge()
	if cause != hal.LineFired {
		tt.Fatalf("want LineFired, got %s", cause)
	}

	g.Raise(6)

	_, _, cause = g.Acknowledge()
	if cause != hal.Spurious {
		tt.Errorf("a lower-priority interrupt must stay masked while a higher one is in service: want Spurious, got %s", cause)
	}
}

func TestGICUnmasksOnEndOfInterrupt(tt *testing.T) {
	g := NewGIC()
	g.SetPriority(5, 0x10)
	g.SetPriority(6, 0x20)

	g.Raise(5)
	_, candy, _ := g.Acknowledge()

	g.Raise(6)
	g.EndOfInterrupt(candy)

	vector, _, cause := g.Acknowledge()
	if cause != hal.LineFired || vector != hal.Vector(6) {
		tt.Errorf("want intID 6 acknowledgeable after EOI, got vector %d cause %s", vector, cause)
	}
}

func TestGICSpuriousWhenIdle(tt *testing.T) {
	g := NewGIC()

	_, _, cause := g.Acknowledge()
	if cause != hal.Spurious {
		tt.Errorf("want Spurious on an idle GIC, got %s", cause)
	}
}

func TestGICReportsHardwarePriorityMasking(tt *testing.T) {
	g := NewGIC()

	if g.PriorityCount() == 0 {
		tt.Errorf("a GIC enforces priority masking in hardware: want nonzero PriorityCount")
	}
}
