package hal

import "testing"

// fakeController is a deterministic Controller for these tests. It lives
// here rather than in internal/hal/controller because that package imports
// hal, and a hal test importing it would be an import cycle. Acknowledge
// reports queued vectors FIFO, using each vector as its candy, and records
// every acknowledged and EOIed candy.
type fakeController struct {
	queued       []Vector
	Acknowledged []MagicCandy
	EOIed        []MagicCandy
}

func newFakeController() *fakeController { return &fakeController{} }

func (f *fakeController) Queue(v Vector) { f.queued = append(f.queued, v) }

func (f *fakeController) Acknowledge() (Vector, MagicCandy, Cause) {
	if len(f.queued) == 0 {
		return 0, 0, Spurious
	}

	v := f.queued[0]
	f.queued = f.queued[1:]
	f.Acknowledged = append(f.Acknowledged, MagicCandy(v))

	return v, MagicCandy(v), LineFired
}

func (f *fakeController) EndOfInterrupt(candy MagicCandy) { f.EOIed = append(f.EOIed, candy) }

func (*fakeController) PriorityCount() int { return 0 }

func (*fakeController) String() string { return "fakeController" }

func newTestDispatcher(n int, table *VectorTable, opts ...OptionFn) (*Dispatcher, *Platform) {
	platform := NewPlatform(n, table)
	return NewDispatcher(platform, table, opts...), platform
}

func TestDispatchInterruptRunsHandlerAndEOIs(tt *testing.T) {
	table := DefaultVectorTable()
	d, p := newTestDispatcher(1, table)

	pb := p.Block(0)
	pb.disableInterrupts()

	var ran bool
	pb.Register(&Handler{Vector: 0x20, RunLevel: Device, Service: func(any) Claim { ran = true; return Claimed }})

	c := newFakeController()
	c.Queue(0x20)

	d.DispatchInterrupt(0, c, nil)

	if !ran {
		tt.Errorf("expected the registered handler to run")
	}

	if pb.RunLevel() != Low {
		tt.Errorf("want run level restored to Low after dispatch, got %s", pb.RunLevel())
	}

	if len(c.EOIed) != 1 || c.EOIed[0] != c.Acknowledged[0] {
		tt.Errorf("want exactly one EOI matching the acknowledged candy, got %v / %v", c.EOIed, c.Acknowledged)
	}
}

func TestDispatchInterruptSpuriousIsNoop(tt *testing.T) {
	table := DefaultVectorTable()
	d, p := newTestDispatcher(1, table)

	pb := p.Block(0)
	pb.disableInterrupts()

	c := newFakeController() // nothing queued: Acknowledge reports Spurious

	d.DispatchInterrupt(0, c, nil)

	if pb.RunLevel() != Low {
		tt.Errorf("spurious dispatch must not change run level, got %s", pb.RunLevel())
	}

	if len(c.EOIed) != 0 {
		tt.Errorf("spurious dispatch must never EOI, got %d", len(c.EOIed))
	}
}

func TestDispatchInterruptMaskedArrivalEnqueues(tt *testing.T) {
	table := DefaultVectorTable()
	d, p := newTestDispatcher(1, table)

	pb := p.Block(0)
	pb.disableInterrupts()
	pb.runLevel = Device // already at Device; a Device-level arrival must be deferred

	var ran bool
	pb.Register(&Handler{Vector: 0x20, RunLevel: Device, Service: func(any) Claim { ran = true; return Claimed }})

	c := newFakeController()
	c.Queue(0x20)

	d.DispatchInterrupt(0, c, nil)

	if ran {
		tt.Errorf("masked arrival must not run the handler immediately")
	}

	if pb.pending.Len() != 1 {
		tt.Errorf("want one pending entry after a masked arrival, got %d", pb.pending.Len())
	}

	if len(c.EOIed) != 0 {
		tt.Errorf("masked arrival must not EOI until replay, got %d", len(c.EOIed))
	}
}

func TestLowerRunLevelDrainsPendingInPriorityOrder(tt *testing.T) {
	table := DefaultVectorTable()
	table.Set(0x10, Device)
	table.Set(0x20, Clock)

	d, p := newTestDispatcher(1, table)
	pb := p.Block(0)
	pb.disableInterrupts()
	pb.runLevel = High

	var order []Vector

	pb.Register(&Handler{Vector: 0x10, RunLevel: Device, Service: func(any) Claim { order = append(order, 0x10); return Claimed }})
	pb.Register(&Handler{Vector: 0x20, RunLevel: Clock, Service: func(any) Claim { order = append(order, 0x20); return Claimed }})

	c := newFakeController()

	pb.pending.Enqueue(PendingInterrupt{Vector: 0x10, Controller: c, Candy: 0x10})
	pb.pending.Enqueue(PendingInterrupt{Vector: 0x20, Controller: c, Candy: 0x20})

	d.LowerRunLevel(0, Low)

	if len(order) != 2 || order[0] != 0x20 || order[1] != 0x10 {
		tt.Errorf("want replay in tail-highest priority order [0x20 0x10], got %v", order)
	}

	if pb.RunLevel() != Low {
		tt.Errorf("want final run level Low, got %s", pb.RunLevel())
	}

	if len(c.EOIed) != 2 {
		tt.Errorf("want both replayed interrupts EOIed, got %d", len(c.EOIed))
	}
}

func TestRaiseRunLevelReturnsPrevious(tt *testing.T) {
	table := DefaultVectorTable()
	d, p := newTestDispatcher(1, table)
	pb := p.Block(0)

	prev := d.RaiseRunLevel(0, Device)

	if prev != Low {
		tt.Errorf("want previous run level Low, got %s", prev)
	}

	if pb.RunLevel() != Device {
		tt.Errorf("want run level raised to Device, got %s", pb.RunLevel())
	}
}

func TestDispatchSoftwareInterruptFlush(tt *testing.T) {
	table := DefaultVectorTable()

	var flushed int

	d, p := newTestDispatcher(1, table, WithSoftwareDispatcher(func(cpu CPUID, _ any) (CPUID, bool) {
		flushed++
		return 0, false
	}))

	pb := p.Block(0)
	pb.disableInterrupts()
	pb.runLevel = High
	pb.RequestDispatch()

	d.LowerRunLevel(0, Low)

	if flushed != 1 {
		tt.Errorf("want the software dispatcher invoked once, got %d", flushed)
	}

	if pb.RunLevel() != Low {
		tt.Errorf("want final run level Low after flush, got %s", pb.RunLevel())
	}
}

func TestDispatchSoftwareInterruptMigration(tt *testing.T) {
	table := DefaultVectorTable()

	d, p := newTestDispatcher(2, table, WithSoftwareDispatcher(func(cpu CPUID, _ any) (CPUID, bool) {
		return 1, true
	}))

	pb0 := p.Block(0)
	pb0.disableInterrupts()
	pb0.runLevel = High
	pb0.RequestDispatch()

	d.LowerRunLevel(0, Low)

	if p.Block(1).RunLevel() != Low {
		tt.Errorf("want the migrated-to CPU's block left at Low, got %s", p.Block(1).RunLevel())
	}
}

func TestGetRunLevel(tt *testing.T) {
	table := DefaultVectorTable()
	d, p := newTestDispatcher(1, table)

	p.Block(0).runLevel = Clock

	if d.GetRunLevel(0) != Clock {
		tt.Errorf("want GetRunLevel to reflect the processor block's run level, got %s", d.GetRunLevel(0))
	}
}
