// Package session aggregates wall-clock work and break time between a user's
// initial start and explicit stop.
package session

import (
	"math"
	"time"

	"focustimer/internal/timer"
)

// Totals is what an accumulator produces on commit.
type Totals struct {
	StartedAt         time.Time
	EndedAt           time.Time
	TotalWorkSeconds  int
	TotalBreakSeconds int
}

// Accumulator adds the wall delta between successive ticks to the phase the
// countdown was in. Paused time never reaches it because ticks stop while paused.
type Accumulator struct {
	startedAt *time.Time
	lastTick  *time.Time
	work      float64
	brk       float64
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

func (a *Accumulator) IsOpen() bool {
	return a.startedAt != nil
}

func (a *Accumulator) StartedAt() (time.Time, bool) {
	if a.startedAt == nil {
		return time.Time{}, false
	}
	return *a.startedAt, true
}

// Open starts a session at now. Opening an already open session only re-marks
// the tick reference.
func (a *Accumulator) Open(now time.Time) {
	if a.startedAt == nil {
		started := now
		a.startedAt = &started
	}
	a.Mark(now)
}

// Mark resets the reference point for the next delta, e.g. after a pause.
func (a *Accumulator) Mark(now time.Time) {
	if a.startedAt == nil {
		return
	}
	last := now
	a.lastTick = &last
}

// Observe credits the time since the previous tick to phase.
func (a *Accumulator) Observe(phase timer.Phase, now time.Time) {
	if a.startedAt == nil {
		return
	}
	if a.lastTick != nil {
		diff := now.Sub(*a.lastTick).Seconds()
		if diff > 0 {
			switch phase {
			case timer.PhaseWork:
				a.work += diff
			case timer.PhaseBreak:
				a.brk += diff
			}
		}
	}
	a.Mark(now)
}

// Elapsed returns the unrounded totals collected so far.
func (a *Accumulator) Elapsed() (work, brk float64) {
	return a.work, a.brk
}

// Totals returns the rounded totals of the open session as if it ended at now,
// leaving the session open. ok is false when no session was open.
func (a *Accumulator) Totals(now time.Time) (Totals, bool) {
	if a.startedAt == nil {
		return Totals{}, false
	}
	return Totals{
		StartedAt:         *a.startedAt,
		EndedAt:           now,
		TotalWorkSeconds:  int(math.Round(a.work)),
		TotalBreakSeconds: int(math.Round(a.brk)),
	}, true
}

// Commit closes the session and returns its rounded totals. ok is false when no
// session was open.
func (a *Accumulator) Commit(now time.Time) (Totals, bool) {
	totals, ok := a.Totals(now)
	if ok {
		a.Reset()
	}
	return totals, ok
}

func (a *Accumulator) Reset() {
	a.startedAt = nil
	a.lastTick = nil
	a.work = 0
	a.brk = 0
}
