package hal

import "testing"

func TestCheckStormFirstSampleNeverFires(tt *testing.T) {
	h := &Handler{RunLevel: Device}
	h.interruptCount = StormCountMask // next increment wraps to a sampled call

	if checkStorm(h, &fakeClock{ticks: 100, freq: 1}) {
		tt.Errorf("first sample must never report a storm: there is no prior timestamp to compare against")
	}

	if h.lastTimestamp != 100 {
		tt.Errorf("want lastTimestamp advanced to 100, got %d", h.lastTimestamp)
	}
}

func TestCheckStormDetectsRapidRefire(tt *testing.T) {
	h := &Handler{RunLevel: Device, lastTimestamp: 100, interruptCount: StormCountMask}

	if !checkStorm(h, &fakeClock{ticks: 101, freq: 1}) {
		tt.Errorf("one tick later at 1 Hz is under StormDeltaSeconds: expected a storm report")
	}
}

func TestCheckStormIgnoresSlowRefire(tt *testing.T) {
	h := &Handler{RunLevel: Device, lastTimestamp: 100, interruptCount: StormCountMask}

	if checkStorm(h, &fakeClock{ticks: 100 + StormDeltaSeconds + 1, freq: 1}) {
		tt.Errorf("a refire well past StormDeltaSeconds must not be reported as a storm")
	}
}

func TestCheckStormOnlySamplesPeriodically(tt *testing.T) {
	h := &Handler{RunLevel: Device, lastTimestamp: 100}

	if checkStorm(h, &fakeClock{ticks: 100, freq: 1}) {
		tt.Errorf("unsampled call (interruptCount&StormCountMask != 0) must never report a storm")
	}

	if h.lastTimestamp != 100 {
		tt.Errorf("unsampled call must not disturb lastTimestamp")
	}
}

func TestCheckStormSkipsAboveClockLevel(tt *testing.T) {
	h := &Handler{RunLevel: High, lastTimestamp: 100, interruptCount: StormCountMask}

	if checkStorm(h, &fakeClock{ticks: 100, freq: 1}) {
		tt.Errorf("storm detection only applies at or below Clock run level")
	}
}

func TestCheckStormAdvancesLastTimestampEvenWhenNoStorm(tt *testing.T) {
	h := &Handler{RunLevel: Device, lastTimestamp: 100, interruptCount: StormCountMask}

	checkStorm(h, &fakeClock{ticks: 500, freq: 1})

	if h.lastTimestamp != 500 {
		tt.Errorf("want lastTimestamp advanced to 500 regardless of storm verdict, got %d", h.lastTimestamp)
	}
}
