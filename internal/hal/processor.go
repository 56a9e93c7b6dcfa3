package hal

// processor.go holds the per-CPU processor block and the platform-wide
// registry of them. Every physical CPU has its own block, pinned to that
// CPU and never migrated; cross-CPU sharing of dispatch state does not
// exist.
//
// Go has no notion of "the CPU this goroutine is pinned to" the way a
// kernel's trap glue does, so this core does not try to infer it: every
// caller — trap glue, tests, the demo harness — names the CPUID it is
// acting as, via the explicit, lock-free Platform.Block(cpu) lookup below.
// See DESIGN.md for the design rationale.

import "fmt"

// CPUID identifies one of the platform's processors.
type CPUID uint16

// ThreadContext is the opaque, per-CPU running-thread reference. The core
// never interprets it; it is only ever handed to a SignalDispatcher.
type ThreadContext any

// ProcessorBlock is the per-CPU state the run-level manager owns. Every
// field here is mutated only by the CPU this block belongs to; readers on
// other CPUs, if any, must tolerate staleness.
type ProcessorBlock struct {
	id CPUID

	runLevel RunLevel

	pending PendingInterruptQueue

	// pendingDispatch requests a software-dispatch-level pass (e.g. a
	// scheduler tick). Any CPU-local producer may set it; only the
	// run-level manager on this CPU clears it.
	pendingDispatch bool

	interruptsEnabled bool

	table *VectorTable

	interruptTable InterruptTable

	runningThread ThreadContext
}

// NewProcessorBlock creates a processor block for one CPU, starting at Low
// run level with hardware interrupts enabled — the idle state a CPU is in
// before its first interrupt.
func NewProcessorBlock(id CPUID, table *VectorTable) *ProcessorBlock {
	pb := &ProcessorBlock{
		id:                id,
		runLevel:          Low,
		interruptsEnabled: true,
		table:             table,
	}
	pb.pending.table = table

	return pb
}

// RunLevel returns the block's current nominal run level. Safe to call
// from any CPU; it is a plain, unsynchronized read, matching
// get_run_level()'s "lock-free per-CPU read" requirement — the value may be
// stale if read from a CPU other than the owner, which callers must accept.
func (pb *ProcessorBlock) RunLevel() RunLevel {
	return pb.runLevel
}

// interruptsAreEnabled, enableInterrupts, disableInterrupts, and
// restoreInterrupts are this core's software model of the CPU's
// interrupt-enable primitives. A real kernel's trap glue backs these with
// a single status-register bit;
// here, the processor block itself carries the flag, since this package
// never runs on bare hardware.
func (pb *ProcessorBlock) interruptsAreEnabled() bool {
	return pb.interruptsEnabled
}

func (pb *ProcessorBlock) enableInterrupts() {
	pb.interruptsEnabled = true
}

// disableInterrupts disables interrupts and returns the previous state, so
// callers can restore it later — the "-> previous_state" half of the
// external interface.
func (pb *ProcessorBlock) disableInterrupts() bool {
	prev := pb.interruptsEnabled
	pb.interruptsEnabled = false

	return prev
}

func (pb *ProcessorBlock) restoreInterrupts(prev bool) {
	pb.interruptsEnabled = prev
}

// RequestDispatch sets the pending-dispatch-interrupt flag. Any CPU-local
// producer (e.g. a timer tick) may call this; it is cleared only by the
// run-level manager servicing it on this CPU.
func (pb *ProcessorBlock) RequestDispatch() {
	pb.pendingDispatch = true
}

// RunningThread returns the processor's current thread context.
func (pb *ProcessorBlock) RunningThread() ThreadContext {
	return pb.runningThread
}

// SetRunningThread updates the processor's current thread context. Called
// by the scheduler, not by this core, but exposed so a software-dispatch
// callback can record a migration.
func (pb *ProcessorBlock) SetRunningThread(t ThreadContext) {
	pb.runningThread = t
}

// Chain returns the handler chain registered for a vector on this
// processor.
func (pb *ProcessorBlock) Chain(v Vector) *HandlerChain {
	return pb.interruptTable.Chain(v)
}

// Register appends a handler to its vector's chain on this processor. Not
// part of the dispatch core proper, but provided as the minimal
// registration mechanism external collaborators need to populate the
// table the core walks.
func (pb *ProcessorBlock) Register(h *Handler) {
	pb.interruptTable.Chain(h.Vector).Push(h)
}

func (pb *ProcessorBlock) String() string {
	return fmt.Sprintf("CPU%d{run_level:%s pending:%d dispatch:%t}",
		pb.id, pb.runLevel, pb.pending.Len(), pb.pendingDispatch)
}

// Platform is the fixed-size registry of processor blocks for every CPU the
// kernel has brought up: a per-CPU-singleton array indexed by CPU id with
// a CPU-local accessor, never process-wide mutable state guarded by a
// lock.
type Platform struct {
	blocks []*ProcessorBlock
	table  *VectorTable
}

// NewPlatform allocates a platform with n processor blocks sharing one
// vector table.
func NewPlatform(n int, table *VectorTable) *Platform {
	p := &Platform{
		blocks: make([]*ProcessorBlock, n),
		table:  table,
	}

	for i := range p.blocks {
		p.blocks[i] = NewProcessorBlock(CPUID(i), table)
	}

	return p
}

// Block returns the processor block for cpu. It is the platform's
// current_processor_block(): a lock-free, CPU-local pointer lookup with no
// contention, since the backing slice is fixed-size and never resized
// after NewPlatform.
func (p *Platform) Block(cpu CPUID) *ProcessorBlock {
	return p.blocks[cpu]
}

// NumCPU returns the number of processor blocks in the platform.
func (p *Platform) NumCPU() int {
	return len(p.blocks)
}
