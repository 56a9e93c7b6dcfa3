package hal

// dispatch.go is the run-level manager / dispatcher (component D): the
// state machine that owns every transition of a processor's run level.
// This is the hardest part of the package — the one place hardware
// asynchrony, software priority, reentrancy, handler chains, and deferred
// software work all have to reconcile — and everything else here exists to
// serve it.

// SoftwareDispatcher is the scheduler's software-dispatch-level entry
// point. It is called with interrupts
// enabled, at Dispatch run level, once per pending-dispatch flag set. If
// servicing the flag migrated the calling thread to a different CPU, it
// returns the new CPUID and true; the run-level manager reloads its
// processor block pointer and continues there.
type SoftwareDispatcher func(cpu CPUID, trapFrame any) (migratedTo CPUID, migrated bool)

// SignalDispatcher is the user-mode signal delivery entry point. It is
// the sole integration point between this
// core and user-mode signal handling.
type SignalDispatcher func(thread ThreadContext, trapFrame any)

// UserModeFrame is implemented by trap frames that can say whether the
// trapped context was running in user mode. Dispatcher.DispatchInterrupt
// uses it to decide whether to invoke the SignalDispatcher on the way out.
type UserModeFrame interface {
	UserMode() bool
}

// Dispatcher is the run-level manager for a platform. One Dispatcher
// serves every CPU in the platform; the state it mutates per call always
// lives on the named CPU's ProcessorBlock, never in the Dispatcher itself.
type Dispatcher struct {
	platform *Platform
	table    *VectorTable
	clock    TimeCounter
	diag     Diagnostic
	softIRQ  SoftwareDispatcher
	signal   SignalDispatcher
}

// NewDispatcher creates a dispatcher over platform, configured by opts.
func NewDispatcher(platform *Platform, table *VectorTable, opts ...OptionFn) *Dispatcher {
	d := &Dispatcher{
		platform: platform,
		table:    table,
		clock:    systemClock{},
		diag:     defaultDiagnostic(discardLogger()),
		softIRQ:  func(CPUID, any) (CPUID, bool) { return 0, false },
		signal:   func(ThreadContext, any) {},
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// GetRunLevel returns cpu's current run level: a lock-free per-CPU read.
func (d *Dispatcher) GetRunLevel(cpu CPUID) RunLevel {
	return d.platform.Block(cpu).RunLevel()
}

// SimulateTrapEntry disables cpu's interrupts, standing in for the
// hardware's automatic interrupt-disable on trap entry. Real trap glue
// never calls back into software for this — it is a hardware side effect
// of the trap itself — but a driver modeling an interrupt source in
// software (see internal/console) has no bare-metal trap path to hook,
// so it calls this immediately before DispatchInterrupt.
func (d *Dispatcher) SimulateTrapEntry(cpu CPUID) {
	d.platform.Block(cpu).disableInterrupts()
}

// DispatchInterrupt is the hardware interrupt entry point. It must
// be called with hardware interrupts already disabled on cpu — exactly as
// the CPU trap vector glue would, immediately after trapping.
func (d *Dispatcher) DispatchInterrupt(cpu CPUID, controller Controller, trapFrame any) {
	pb := d.platform.Block(cpu)

	assert(!pb.interruptsAreEnabled(), "dispatch_interrupt: entered with interrupts enabled on cpu %d", cpu)

	vector, candy, cause := controller.Acknowledge()
	if cause != LineFired {
		return
	}

	var (
		interruptRunLevel = d.table.RunLevel(vector)
		oldRunLevel       = pb.runLevel
	)

	if pb.runLevel >= interruptRunLevel {
		// Masked-arrival path: the interrupt stays the controller's
		// responsibility, un-EOIed, until replay.
		pb.pending.Enqueue(PendingInterrupt{Vector: vector, Controller: controller, Candy: candy})
		return
	}

	// Dispatched path.
	pb.runLevel = interruptRunLevel

	if controller.PriorityCount() != 0 {
		// Hardware enforces the priority floor; let strictly-higher
		// interrupts preempt while the walker runs.
		pb.enableInterrupts()
	}

	runISR(pb, vector, trapFrame, d.clock, d.diag)

	pb.disableInterrupts()
	endOfInterrupt(controller, candy)

	pb = d.lowerRunLevelInternal(pb, oldRunLevel, trapFrame)

	// Signal delivery: the sole integration point with user-mode signals.
	if oldRunLevel == Low {
		if frame, ok := trapFrame.(UserModeFrame); ok && frame.UserMode() {
			pb.enableInterrupts()
			d.signal(pb.runningThread, trapFrame)
			pb.disableInterrupts()
		}
	}
}

// RaiseRunLevel raises cpu's run level to new and returns the level it had
// before. Raising never touches the pending queue: it cannot change the
// masked set of interrupts already delivered.
func (d *Dispatcher) RaiseRunLevel(cpu CPUID, new RunLevel) RunLevel {
	pb := d.platform.Block(cpu)
	prev := pb.disableInterrupts()

	assert(new >= pb.runLevel, "raise_run_level: %s is below current %s on cpu %d", new, pb.runLevel, cpu)

	old := pb.runLevel
	pb.runLevel = new

	pb.restoreInterrupts(prev)

	return old
}

// LowerRunLevel lowers cpu's run level to new, draining any pending
// interrupts whose priority exceeds new and, if appropriate, flushing one
// or more rounds of software-dispatch-level work.
func (d *Dispatcher) LowerRunLevel(cpu CPUID, new RunLevel) {
	d.lowerRunLevelInternal(d.platform.Block(cpu), new, nil)
}

// lowerRunLevelInternal is the shared body behind LowerRunLevel and the
// lowering step inside DispatchInterrupt. It returns the
// processor block that is current when it returns — ordinarily pb itself,
// but the dispatch-level flush may migrate the calling thread to another
// CPU, in which case every write from that point on, including the final
// run_level assignment, targets the new CPU's block.
func (d *Dispatcher) lowerRunLevelInternal(pb *ProcessorBlock, new RunLevel, trapFrame any) *ProcessorBlock {
	preCallEnabled := pb.disableInterrupts()

	assert(new <= pb.runLevel, "lower_run_level: %s is above current %s on cpu %d", new, pb.runLevel, pb.id)

	// 1. Drain loop: replay pending interrupts in priority order until the
	// tail's run level is no higher than the target.
	for pb.pending.Above(new) {
		top, _ := pb.pending.PeekHighest()
		pb.pending.Pop()
		pb.runLevel = d.table.RunLevel(top.Vector)
		d.replay(pb, top)
	}

	// 2. Dispatch-level flush. The avoidance clause is essential: the
	// scheduler itself calls lower with interrupts already disabled
	// precisely to suppress re-entry into software-dispatch work while it
	// holds the run queue lock; honoring it here is what keeps this from
	// recursing without bound.
	if pb.pendingDispatch && new < Dispatch && (preCallEnabled || pb.runLevel > Dispatch) {
		pb.runLevel = Dispatch

		for pb.pendingDispatch {
			pb.pendingDispatch = false

			pb.enableInterrupts()
			newCPU, migrated := d.softIRQ(pb.id, trapFrame)
			pb.disableInterrupts()

			if migrated {
				pb = d.platform.Block(newCPU)
			}
		}
	}

	// 3. Write run_level <- new.
	pb.runLevel = new

	// 4. Restore the pre-call interrupt-enable state.
	pb.restoreInterrupts(preCallEnabled)

	return pb
}

// replay runs the handler chain and issues EOI for a previously deferred
// interrupt. Precondition: pb.runLevel == table.RunLevel(vector),
// interrupts disabled. Replayed interrupts have no original trap frame.
func (d *Dispatcher) replay(pb *ProcessorBlock, p PendingInterrupt) {
	if p.Controller.PriorityCount() != 0 {
		pb.enableInterrupts()
	}

	runISR(pb, p.Vector, nil, d.clock, d.diag)

	pb.disableInterrupts()
	endOfInterrupt(p.Controller, p.Candy)
}

// endOfInterrupt prefers a controller's fast EOI, if it has one, over the
// contextual form that needs the magic-candy cookie.
func endOfInterrupt(c Controller, candy MagicCandy) {
	if fe, ok := c.(FastEOI); ok {
		fe.FastEndOfInterrupt()
	} else {
		c.EndOfInterrupt(candy)
	}
}
