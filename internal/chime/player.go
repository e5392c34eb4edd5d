// Package chime plays the short audio cues around a countdown.
//
// A cue is fire-and-forget with an optional completion callback. Stopping a
// playback silences it and detaches the callback so it never runs afterwards.
package chime

import (
	"sync"
	"sync/atomic"
	"time"
)

type Cue string

const (
	// CueStart is the pre-roll played before a countdown begins or resumes.
	CueStart Cue = "start"
	// CueWarning is played when three seconds remain.
	CueWarning Cue = "warning"
	// CuePhaseEnd is played when a phase runs out.
	CuePhaseEnd Cue = "phase_end"
)

// Player starts cues. onDone may be nil; it runs on another goroutine, never
// from inside Play.
type Player interface {
	Play(cue Cue, onDone func()) Playback
}

// Playback is a cue in flight.
type Playback interface {
	Stop()
}

// playback is the shared Playback implementation: finish runs onDone at most
// once and never after Stop.
type playback struct {
	once     sync.Once
	detached atomic.Bool
	onDone   func()
	cancel   func()
}

func newPlayback(onDone func()) *playback {
	return &playback{onDone: onDone}
}

func (p *playback) Stop() {
	p.detached.Store(true)
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *playback) finish() {
	p.once.Do(func() {
		if p.detached.Load() || p.onDone == nil {
			return
		}
		p.onDone()
	})
}

// TimedPlayer completes every cue after a fixed duration without producing
// sound. It backs headless deployments and the fallback of SystemPlayer.
type TimedPlayer struct {
	duration time.Duration
}

func NewTimedPlayer(duration time.Duration) *TimedPlayer {
	if duration < 0 {
		duration = 0
	}
	return &TimedPlayer{duration: duration}
}

func (t *TimedPlayer) Play(cue Cue, onDone func()) Playback {
	p := newPlayback(onDone)
	timer := time.AfterFunc(t.duration, p.finish)
	p.cancel = func() { timer.Stop() }
	return p
}
