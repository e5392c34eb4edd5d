package companion

import (
	"fmt"

	"focustimer/internal/timer"
)

// Snapshot is the read-only combined timer and settings state mirrored into a
// companion surface.
type Snapshot struct {
	Phase                timer.Phase `json:"phase"`
	RemainingSeconds     int         `json:"remainingSeconds"`
	IsChimePlaying       bool        `json:"isChimePlaying"`
	WorkDurationMinutes  float64     `json:"workDurationMinutes"`
	BreakDurationMinutes float64     `json:"breakDurationMinutes"`
	WorkSourceRef        string      `json:"workSourceRef"`
	BreakSourceRef       string      `json:"breakSourceRef"`
}

// SourceRef is the video source of the mirrored phase.
func (s Snapshot) SourceRef() string {
	if s.Phase == timer.PhaseWork {
		return s.WorkSourceRef
	}
	return s.BreakSourceRef
}

// TotalSeconds is the full length of the mirrored phase.
func (s Snapshot) TotalSeconds() int {
	if s.Phase == timer.PhaseWork {
		return int(s.WorkDurationMinutes * 60)
	}
	return int(s.BreakDurationMinutes * 60)
}

type VideoView struct {
	VideoID         string  `json:"videoId"`
	EmbedURL        string  `json:"embedUrl"`
	Playing         bool    `json:"playing"`
	PositionSeconds float64 `json:"positionSeconds"`
}

// Frame is one render of the companion surface.
type Frame struct {
	Seq        uint64     `json:"seq"`
	Snapshot   Snapshot   `json:"snapshot"`
	Label      string     `json:"label"`
	Display    string     `json:"display"`
	Progress   float64    `json:"progress"`
	Interacted bool       `json:"interacted"`
	Video      *VideoView `json:"video,omitempty"`
}

const (
	labelWork     = "作業中"
	labelBreak    = "休憩中"
	labelIdle     = "ポモドーロ"
	labelStopped  = "ポモドーロタイマー"
	displayChime  = "準備中... ♪"
	displayHalted = "停止中"
)

func phaseLabel(phase timer.Phase) string {
	switch phase {
	case timer.PhaseWork:
		return labelWork
	case timer.PhaseBreak:
		return labelBreak
	default:
		return labelIdle
	}
}

// compose fills the display fields of a frame from its snapshot.
func compose(s Snapshot) Frame {
	frame := Frame{Snapshot: s, Label: phaseLabel(s.Phase)}
	switch {
	case s.IsChimePlaying:
		frame.Display = displayChime
	case s.Phase == timer.PhaseStopped:
		frame.Label = labelStopped
		frame.Display = displayHalted
	default:
		frame.Display = FormatClock(s.RemainingSeconds)
		if total := s.TotalSeconds(); total > 0 {
			frame.Progress = float64(s.RemainingSeconds) / float64(total)
		}
	}
	return frame
}

// FormatClock renders seconds as mm:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
