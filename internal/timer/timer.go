// Package timer provides a countdown timer that is advanced by the caller.
//
// A Timer never reads the clock. The host measures how much time has passed
// since the previous iteration of its loop and passes that delta to Tick:
//
//	t := timer.New(1500 * time.Millisecond)
//	last := time.Now()
//	for {
//		now := time.Now()
//		t.Tick(now.Sub(last))
//		last = now
//		if t.JustFinished() {
//			break
//		}
//	}
//
// Negative arguments are treated as zero everywhere, so Remaining is never
// negative. A Timer is not safe for concurrent use.
package timer

import (
	"fmt"
	"time"
)

// Timer counts down from a fixed duration. The zero value is a timer with a
// zero duration.
type Timer struct {
	duration     time.Duration
	remaining    time.Duration
	finished     bool
	justFinished bool
}

// New returns a running timer with the full duration remaining.
func New(duration time.Duration) *Timer {
	duration = nonNegative(duration)
	return &Timer{
		duration:  duration,
		remaining: duration,
	}
}

// Tick advances the timer by delta. JustFinished reports true only after the
// call that brings the remaining time to zero; ticking a finished timer does
// nothing else.
func (t *Timer) Tick(delta time.Duration) {
	t.justFinished = false
	if t.finished {
		return
	}
	t.remaining = saturatingSub(t.remaining, delta)
	if t.remaining == 0 {
		t.justFinished = true
		t.finished = true
	}
}

// JustFinished reports whether the last Tick (or SetRemaining) moved the
// timer to zero.
func (t *Timer) JustFinished() bool {
	return t.justFinished
}

// Finished reports whether the timer is at zero.
func (t *Timer) Finished() bool {
	return t.finished
}

// Reset restores the full duration and clears both finished flags.
func (t *Timer) Reset() {
	t.SetRemaining(t.duration)
}

// Percent returns the elapsed fraction, from 0 to 1. A zero duration timer
// is always complete.
func (t *Timer) Percent() float64 {
	if t.duration == 0 {
		return 1
	}
	return float64(t.Elapsed()) / float64(t.duration)
}

// PercentLeft returns the remaining fraction, from 1 to 0.
func (t *Timer) PercentLeft() float64 {
	return 1 - t.Percent()
}

// Duration returns the full length of the timer.
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// SetDuration changes the full length without touching the remaining time or
// the finished flags. Call Reset or SetElapsed afterwards to bring the
// remaining time back into range.
func (t *Timer) SetDuration(duration time.Duration) {
	t.duration = nonNegative(duration)
}

// Remaining returns the time left before the timer finishes.
func (t *Timer) Remaining() time.Duration {
	return t.remaining
}

// SetRemaining sets the time left, clamped to [0, Duration()].
//
// Setting zero on a timer that was not at zero marks it finished and just
// finished. Any other value clears both flags, including setting zero when
// the timer was already at zero.
func (t *Timer) SetRemaining(remaining time.Duration) {
	if remaining <= 0 && t.remaining != 0 {
		t.justFinished = true
		t.finished = true
	} else {
		t.justFinished = false
		t.finished = false
	}
	t.remaining = clamp(remaining, 0, t.duration)
}

// Elapsed returns Duration() - Remaining(), or zero if the duration was
// shrunk below the remaining time.
func (t *Timer) Elapsed() time.Duration {
	return saturatingSub(t.duration, t.remaining)
}

// SetElapsed sets the elapsed time. Values past the duration finish the
// timer.
func (t *Timer) SetElapsed(elapsed time.Duration) {
	t.SetRemaining(saturatingSub(t.duration, elapsed))
}

// String renders the timer as "remaining/duration state".
func (t *Timer) String() string {
	state := "running"
	switch {
	case t.justFinished:
		state = "just finished"
	case t.finished:
		state = "finished"
	}
	return fmt.Sprintf("%s/%s %s", t.remaining, t.duration, state)
}

func saturatingSub(a, b time.Duration) time.Duration {
	b = nonNegative(b)
	if b >= a {
		return 0
	}
	return a - b
}

func nonNegative(d time.Duration) time.Duration {
	return max(d, 0)
}

func clamp(d, lo, hi time.Duration) time.Duration {
	return min(max(d, lo), hi)
}
