package model

import (
	"math"
	"time"

	"focustimer/internal/timer"
)

const (
	DefaultWorkDurationMinutes  = 25.0
	DefaultBreakDurationMinutes = 5.0

	MinWorkDurationMinutes  = 0.1
	MaxWorkDurationMinutes  = 60.0
	MinBreakDurationMinutes = 0.1
	MaxBreakDurationMinutes = 30.0
)

// Settings is the per-user singleton of durations, video sources and the last
// known playback offset of each phase.
type Settings struct {
	UserID               string    `json:"-"`
	WorkSourceRef        string    `json:"workSourceRef"`
	BreakSourceRef       string    `json:"breakSourceRef"`
	WorkDurationMinutes  float64   `json:"workDurationMinutes"`
	BreakDurationMinutes float64   `json:"breakDurationMinutes"`
	WorkProgressSeconds  float64   `json:"workProgressSeconds"`
	BreakProgressSeconds float64   `json:"breakProgressSeconds"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:               userID,
		WorkDurationMinutes:  DefaultWorkDurationMinutes,
		BreakDurationMinutes: DefaultBreakDurationMinutes,
	}
}

func ClampWorkMinutes(minutes float64) float64 {
	return clamp(minutes, MinWorkDurationMinutes, MaxWorkDurationMinutes)
}

func ClampBreakMinutes(minutes float64) float64 {
	return clamp(minutes, MinBreakDurationMinutes, MaxBreakDurationMinutes)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DurationSeconds is the countdown length of phase in whole seconds.
func (s Settings) DurationSeconds(phase timer.Phase) int {
	switch phase {
	case timer.PhaseWork:
		return int(math.Round(s.WorkDurationMinutes * 60))
	case timer.PhaseBreak:
		return int(math.Round(s.BreakDurationMinutes * 60))
	default:
		return 0
	}
}

func (s Settings) SourceRef(phase timer.Phase) string {
	switch phase {
	case timer.PhaseWork:
		return s.WorkSourceRef
	case timer.PhaseBreak:
		return s.BreakSourceRef
	default:
		return ""
	}
}

func (s Settings) Progress(phase timer.Phase) float64 {
	switch phase {
	case timer.PhaseWork:
		return s.WorkProgressSeconds
	case timer.PhaseBreak:
		return s.BreakProgressSeconds
	default:
		return 0
	}
}

func (s *Settings) SetProgress(phase timer.Phase, seconds float64) {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	switch phase {
	case timer.PhaseWork:
		s.WorkProgressSeconds = seconds
	case timer.PhaseBreak:
		s.BreakProgressSeconds = seconds
	}
}
