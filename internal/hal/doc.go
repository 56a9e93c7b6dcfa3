/*
Package hal implements the per-processor interrupt dispatch and run-level
management core of a kernel's hardware abstraction layer.

Its single responsibility is to mediate between asynchronous hardware
interrupt delivery and the kernel's software priority ("run level") model so
that every accepted hardware interrupt runs its registered handlers exactly
once, at the run level matching its vector; an interrupt that arrives while
the processor is already at or above that run level is deferred and
replayed later, in strict priority order; and the processor's nominal run
level, the set of interrupts it is willing to accept, and the hardware
interrupt-enable flag remain mutually consistent across every transition.

# Four cooperating pieces

The package is four small, leaf-first abstractions:

  - the [Controller] adapter: a polymorphic view of whatever interrupt
    controller the platform is running, with acknowledge/EOI/priority-mask
    capability;
  - the handler chain walker (runISR): given a vector and a processor, runs
    every registered handler on that vector's chain, detecting storms and
    honoring the level-triggered short-circuit rule;
  - the [PendingInterruptQueue]: a per-processor, priority-ordered stack of
    interrupts that arrived while masked, replayed highest-first;
  - the [Dispatcher]: the state machine owning every transition of a
    processor's run level — dispatch entry, raise, lower, and the
    software-dispatch-level flush.

# Data flow

On a hardware interrupt: the CPU traps into [Dispatcher.DispatchInterrupt],
which acknowledges through the [Controller], either enqueues (if the
processor is already masked at or above the interrupt's level) or raises the
run level and walks the handler chain, issues EOI, then lowers the run level
back down — draining the pending queue in priority order and, on the way
through Dispatch, flushing any requested software-dispatch-level work.

# Per-CPU state, explicitly addressed

Every physical CPU has its own [ProcessorBlock], pinned to that CPU and
never migrated; the [Platform] is the fixed array of them. Go has no notion
of "the CPU this goroutine is pinned to" the way a kernel's trap glue does,
so nothing here tries to infer it — every call names the [CPUID] it is
acting as.

# What this package does not do

Registering or unregistering handlers, programming a specific controller's
registers, building trap frames, running a scheduler, or delivering
signals are all out of scope; this package defines the narrow collaborator
interfaces ([SoftwareDispatcher], [SignalDispatcher], [Controller]) a real
kernel implements, and the internal/hal/controller package ships a couple of
concrete controllers for tests and the demo.
*/
package hal
