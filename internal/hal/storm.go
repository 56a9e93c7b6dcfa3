package hal

// storm.go implements the storm-detection diagnostic that the handler
// chain walker (component B) runs on every handler invocation.
//
// The source this core is modeled on computed
//
//	Seconds = TimeCounter - LastTimestamp / HlQueryTimeCounterFrequency()
//
// which, by operator precedence, divides before subtracting — almost
// certainly a bug, since the evident intent is a seconds-since-last-fire
// computation. This implementation uses the intended form,
// (TimeCounter - LastTimestamp) / Frequency, and does not replicate the
// precedence bug.

// StormCountMask selects which invocations are sampled for storm
// detection: sampling happens when interruptCount&StormCountMask == 0,
// i.e. periodically, not on every call.
const StormCountMask = 0x3ff

// StormDeltaSeconds is the threshold below which two samples of the same
// handler are considered a possible storm.
const StormDeltaSeconds = 2

// TimeCounter is the time-counter oracle the walker consults for storm
// detection. A real kernel supplies a free-running hardware counter; tests
// supply a mock.
type TimeCounter interface {
	// Now returns the current raw counter reading.
	Now() uint64

	// Frequency returns the counter's ticks-per-second.
	Frequency() uint64
}

// checkStorm samples a handler's fire rate and returns true if this sample
// indicates a possible storm. It always advances the handler's
// lastTimestamp, even when it does not fire a diagnostic, since the
// baseline for the next sample must move forward regardless.
//
// lastTimestamp is read once into a local rather than re-checked against
// the field a second time: storm detection is allowed to race with another
// CPU concurrently touching the same handler. A lost or duplicated sample
// is an acceptable diagnostic gap, never a correctness bug, so no locking is
// added here.
func checkStorm(h *Handler, clock TimeCounter) bool {
	h.interruptCount++

	if h.interruptCount&StormCountMask != 0 || h.RunLevel > Clock {
		return false
	}

	var (
		now   = clock.Now()
		freq  = clock.Frequency()
		last  = h.lastTimestamp
		storm = false
	)

	if last != 0 && freq != 0 {
		seconds := (now - last) / freq
		storm = seconds < StormDeltaSeconds
	}

	h.lastTimestamp = now

	return storm
}
