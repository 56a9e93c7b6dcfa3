package hal

// options.go follows the teacher's functional-options convention
// (vm.OptionFn in the teacher's package): a Dispatcher is built once with
// NewDispatcher and then configured by a sequence of OptionFn before its first
// DispatchInterrupt call.

import "time"

// OptionFn configures a Dispatcher during construction.
type OptionFn func(*Dispatcher)

// WithSoftwareDispatcher installs the scheduler's software-dispatch-level
// callback.
func WithSoftwareDispatcher(fn SoftwareDispatcher) OptionFn {
	return func(d *Dispatcher) {
		d.softIRQ = fn
	}
}

// WithSignalDispatcher installs the user-mode signal-delivery callback.
func WithSignalDispatcher(fn SignalDispatcher) OptionFn {
	return func(d *Dispatcher) {
		d.signal = fn
	}
}

// WithTimeCounter installs the time-counter oracle used for storm
// detection. Tests substitute a mock; production code leaves the default,
// which wraps time.Now against an arbitrary epoch.
func WithTimeCounter(clock TimeCounter) OptionFn {
	return func(d *Dispatcher) {
		d.clock = clock
	}
}

// WithDiagnostic installs the diagnostic print sink.
func WithDiagnostic(fn Diagnostic) OptionFn {
	return func(d *Dispatcher) {
		d.diag = fn
	}
}

// systemClock is the default TimeCounter: a monotonic clock in
// nanoseconds, ticking at a fixed, nominal frequency.
type systemClock struct{}

// clockEpoch is the arbitrary epoch systemClock counts from.
var clockEpoch = time.Now()

func (systemClock) Now() uint64 {
	return uint64(time.Since(clockEpoch))
}

func (systemClock) Frequency() uint64 {
	return uint64(time.Second)
}
