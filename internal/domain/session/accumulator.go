package session

import "math"

// Accumulator integrates a vitamin D rate (IU/minute) with a fixed one second
// step. It is not safe for concurrent use; a live session owns exactly one.
type Accumulator struct {
	tracking bool
	rate     float64
	total    float64
	ticks    int64
}

// Start enables accumulation on subsequent ticks.
func (a *Accumulator) Start() { a.tracking = true }

// Stop disables accumulation; the running total is kept.
func (a *Accumulator) Stop() { a.tracking = false }

// Tracking reports whether ticks currently accumulate.
func (a *Accumulator) Tracking() bool { return a.tracking }

// SetRate replaces the rate used by future ticks. Invalid rates become 0.
func (a *Accumulator) SetRate(ratePerMinute float64) {
	if ratePerMinute < 0 || math.IsNaN(ratePerMinute) || math.IsInf(ratePerMinute, 0) {
		ratePerMinute = 0
	}
	a.rate = ratePerMinute
}

// Rate is the current rate in IU/minute.
func (a *Accumulator) Rate() float64 { return a.rate }

// Tick adds one second worth of synthesis. It reports whether anything was added.
func (a *Accumulator) Tick() bool {
	if !a.tracking {
		return false
	}
	a.total += a.rate / 60.0
	a.ticks++
	return true
}

// Total is the accumulated IU.
func (a *Accumulator) Total() float64 { return a.total }

// Ticks is the number of accumulated one second steps.
func (a *Accumulator) Ticks() int64 { return a.ticks }

// Reset clears the total and tick counter and stops tracking.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}
