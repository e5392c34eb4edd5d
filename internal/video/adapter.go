package video

import (
	"errors"
	"sync/atomic"
)

var ErrNoVideo = errors.New("no video configured")

type pendingLoad struct {
	videoID string
	start   float64
}

// Adapter is the narrow control surface over a Provider. Calls made before the
// provider is ready are no-ops (or report position 0) and a pending load is
// replayed once it becomes ready. The adapter loops content itself: on ended it
// seeks to zero and plays again while playback is still wanted.
//
// Adapter is not safe for concurrent use except for the ended callback.
type Adapter struct {
	provider    Provider
	videoID     string
	pending     *pendingLoad
	wantPlaying atomic.Bool
}

func NewAdapter(provider Provider) *Adapter {
	a := &Adapter{provider: provider}
	provider.OnEnded(a.handleEnded)
	return a
}

func (a *Adapter) VideoID() string {
	return a.videoID
}

func (a *Adapter) HasVideo() bool {
	return a.videoID != ""
}

func (a *Adapter) Playing() bool {
	return a.wantPlaying.Load()
}

// Load resolves ref and cues it at startSeconds. An unresolvable reference
// clears the current video and returns ErrNoVideo.
func (a *Adapter) Load(ref string, startSeconds float64) error {
	videoID, ok := ResolveID(ref)
	if !ok {
		a.videoID = ""
		a.pending = nil
		a.provider.Pause()
		return ErrNoVideo
	}
	return a.LoadID(videoID, startSeconds)
}

func (a *Adapter) LoadID(videoID string, startSeconds float64) error {
	if videoID == "" {
		return ErrNoVideo
	}
	if startSeconds < 0 {
		startSeconds = 0
	}
	a.videoID = videoID
	if !a.provider.Ready() {
		a.pending = &pendingLoad{videoID: videoID, start: startSeconds}
		return nil
	}
	a.pending = nil
	a.provider.Load(videoID, startSeconds)
	a.applyPlayState()
	return nil
}

func (a *Adapter) Play() {
	a.wantPlaying.Store(true)
	if a.ready() {
		a.applyPlayState()
	}
}

func (a *Adapter) Pause() {
	a.wantPlaying.Store(false)
	if a.ready() {
		a.applyPlayState()
	}
}

func (a *Adapter) Seek(seconds float64) {
	if !a.ready() {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	a.provider.Seek(seconds)
}

// CurrentPosition reports the playback offset in seconds, 0 before the
// provider is ready or when no video is loaded.
func (a *Adapter) CurrentPosition() float64 {
	if !a.ready() || a.videoID == "" {
		return 0
	}
	return a.provider.CurrentTime()
}

func (a *Adapter) ready() bool {
	if !a.provider.Ready() {
		return false
	}
	if a.pending != nil {
		load := a.pending
		a.pending = nil
		a.provider.Load(load.videoID, load.start)
		a.applyPlayState()
	}
	return true
}

func (a *Adapter) applyPlayState() {
	if a.wantPlaying.Load() && a.videoID != "" {
		a.provider.Play()
		return
	}
	a.provider.Pause()
}

func (a *Adapter) handleEnded() {
	a.provider.Seek(0)
	if a.wantPlaying.Load() {
		a.provider.Play()
	}
}
