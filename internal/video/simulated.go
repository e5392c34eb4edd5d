package video

import (
	"sync"
	"time"
)

// SimulatedPlayer models an embed player from the service side. Position
// advances with the clock while playing; with a known content length it stops at
// the end and reports ended, which the Adapter turns into a loop.
type SimulatedPlayer struct {
	mu             sync.Mutex
	now            func() time.Time
	contentSeconds float64
	ready          bool
	videoID        string
	playing        bool
	base           float64
	since          time.Time
	onEnded        func()
}

// NewSimulatedPlayer returns a ready player. contentSeconds of 0 means the
// content never ends.
func NewSimulatedPlayer(now func() time.Time, contentSeconds float64) *SimulatedPlayer {
	if now == nil {
		now = time.Now
	}
	return &SimulatedPlayer{
		now:            now,
		contentSeconds: contentSeconds,
		ready:          true,
	}
}

func (p *SimulatedPlayer) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

func (p *SimulatedPlayer) Load(videoID string, startSeconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.videoID = videoID
	p.base = startSeconds
	p.since = p.now()
}

func (p *SimulatedPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing || p.videoID == "" {
		return
	}
	p.playing = true
	p.since = p.now()
}

func (p *SimulatedPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.base = p.positionLocked()
	p.playing = false
}

func (p *SimulatedPlayer) Seek(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = seconds
	p.since = p.now()
}

func (p *SimulatedPlayer) CurrentTime() float64 {
	p.mu.Lock()
	position := p.positionLocked()
	ended := p.playing && p.contentSeconds > 0 && position >= p.contentSeconds
	var onEnded func()
	if ended {
		p.playing = false
		p.base = p.contentSeconds
		onEnded = p.onEnded
	}
	p.mu.Unlock()

	if onEnded == nil {
		return position
	}
	onEnded()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *SimulatedPlayer) OnEnded(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEnded = fn
}

func (p *SimulatedPlayer) positionLocked() float64 {
	if !p.playing {
		return p.base
	}
	position := p.base + p.now().Sub(p.since).Seconds()
	if p.contentSeconds > 0 && position > p.contentSeconds {
		return p.contentSeconds
	}
	return position
}
