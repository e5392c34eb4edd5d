package focus

import (
	"time"

	"focustimer/internal/model"
	"focustimer/internal/timer"
	"focustimer/internal/video"
)

// View is the state a client renders.
type View struct {
	Phase            timer.Phase    `json:"phase"`
	Status           timer.Status   `json:"status"`
	RemainingSeconds int            `json:"remainingSeconds"`
	DurationSeconds  int            `json:"durationSeconds"`
	IsRunning        bool           `json:"isRunning"`
	IsChimePlaying   bool           `json:"isChimePlaying"`
	Session          SessionView    `json:"session"`
	Settings         model.Settings `json:"settings"`
	Video            *VideoView     `json:"video"`
	Notice           string         `json:"notice,omitempty"`
}

type SessionView struct {
	Open         bool       `json:"open"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	WorkSeconds  float64    `json:"workSeconds"`
	BreakSeconds float64    `json:"breakSeconds"`
}

type VideoView struct {
	Phase           timer.Phase `json:"phase"`
	VideoID         string      `json:"videoId"`
	EmbedURL        string      `json:"embedUrl"`
	Playing         bool        `json:"playing"`
	PositionSeconds float64     `json:"positionSeconds"`
}

func (c *Controller) viewLocked() View {
	state := c.machine.State()
	view := View{
		Phase:            state.Phase(),
		Status:           state.Status(),
		RemainingSeconds: state.Remaining(),
		DurationSeconds:  c.current.DurationSeconds(state.Phase()),
		IsRunning:        state.IsRunning(),
		IsChimePlaying:   state.IsChimePlaying(),
		Settings:         c.current,
		Notice:           c.liveNoticeLocked(),
	}

	if startedAt, ok := c.acc.StartedAt(); ok {
		work, brk := c.acc.Elapsed()
		view.Session = SessionView{
			Open:         true,
			StartedAt:    &startedAt,
			WorkSeconds:  work,
			BreakSeconds: brk,
		}
	}

	if c.videoPhase != timer.PhaseStopped && c.video.HasVideo() {
		videoID := c.video.VideoID()
		view.Video = &VideoView{
			Phase:           c.videoPhase,
			VideoID:         videoID,
			EmbedURL:        video.EmbedURL(videoID, video.EmbedOptions{EnableJSAPI: true, HideControls: true, Loop: true}),
			Playing:         c.video.Playing(),
			PositionSeconds: c.video.CurrentPosition(),
		}
	}
	return view
}
