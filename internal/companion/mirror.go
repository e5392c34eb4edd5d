// Package companion mirrors the timer into a secondary always-on-top surface.
//
// The mirror subscribes to its Source once and renders a Frame on every change.
// Its only back-channels are the interaction gate that allows the surface video
// to autoplay and the close affordance.
package companion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"focustimer/internal/timer"
	"focustimer/internal/video"
)

var (
	ErrUnsupported = errors.New("companion window is not supported in this environment")
	ErrAlreadyOpen = errors.New("companion window is already open")
	ErrNotOpen     = errors.New("companion window is not open")
)

// NoticeTTL is how long a denial stays visible.
const NoticeTTL = 3 * time.Second

// Source publishes snapshots. Subscribe callbacks may run while the source holds
// its own lock; they must not call back into the source.
type Source interface {
	Snapshot() Snapshot
	Subscribe(fn func(Snapshot)) (unsubscribe func())
}

// Surface is a granted companion surface.
type Surface interface {
	ID() string
	Render(frame Frame)
	Close()
	// Done is closed when the surface goes away, by Close or by the host.
	Done() <-chan struct{}
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Host grants companion surfaces.
type Host interface {
	Supported() bool
	Request(ctx context.Context, size Size) (Surface, error)
}

type Status struct {
	Supported  bool   `json:"supported"`
	Open       bool   `json:"open"`
	Interacted bool   `json:"interacted"`
	SurfaceID  string `json:"surfaceId,omitempty"`
	Notice     string `json:"notice,omitempty"`
}

type Options struct {
	Size   Size
	Loader *video.Loader
	Logger *slog.Logger
	Now    func() time.Time
}

type Mirror struct {
	host   Host
	source Source
	opts   Options

	mu          sync.Mutex
	surface     Surface
	unsubscribe func()
	adapter     *video.Adapter
	videoRef    string
	interacted  bool
	last        Snapshot
	seq         uint64
	notice      string
	noticeUntil time.Time
}

func NewMirror(host Host, source Source, opts Options) *Mirror {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Size.Width <= 0 {
		opts.Size.Width = 280
	}
	if opts.Size.Height <= 0 {
		opts.Size.Height = 200
	}
	return &Mirror{host: host, source: source, opts: opts}
}

func (m *Mirror) Supported() bool {
	return m.host != nil && m.host.Supported()
}

// Open requests a surface from the host and starts mirroring into it.
func (m *Mirror) Open(ctx context.Context) (Surface, error) {
	if !m.Supported() {
		m.setNotice(ErrUnsupported.Error())
		return nil, ErrUnsupported
	}

	m.mu.Lock()
	if m.surface != nil {
		m.setNoticeLocked(ErrAlreadyOpen.Error())
		m.mu.Unlock()
		return nil, ErrAlreadyOpen
	}
	m.clearNoticeLocked()
	m.mu.Unlock()

	surface, err := m.host.Request(ctx, m.opts.Size)
	if err != nil {
		m.setNotice(err.Error())
		return nil, fmt.Errorf("request companion surface: %w", err)
	}

	m.mu.Lock()
	if m.surface != nil {
		// another Open won the race while the host was answering
		m.setNoticeLocked(ErrAlreadyOpen.Error())
		m.mu.Unlock()
		surface.Close()
		return nil, ErrAlreadyOpen
	}
	m.surface = surface
	m.interacted = false
	m.videoRef = ""
	if m.opts.Loader != nil {
		m.adapter = video.NewAdapter(m.opts.Loader.Provider(surface.ID()))
	}
	openSeq := m.seq
	m.mu.Unlock()

	unsubscribe := m.source.Subscribe(func(s Snapshot) { m.render(surface, s) })
	initial := m.source.Snapshot()

	m.mu.Lock()
	if m.surface != surface {
		m.mu.Unlock()
		unsubscribe()
		return nil, ErrNotOpen
	}
	// a pushed frame since subscribing is at least as new as initial
	if m.seq == openSeq {
		m.renderLocked(surface, initial)
	}
	m.unsubscribe = unsubscribe
	m.mu.Unlock()

	go func() {
		<-surface.Done()
		m.teardown(surface)
	}()

	m.opts.Logger.Info("companion opened", "surface", surface.ID())
	return surface, nil
}

// Close tears the mirror down: unsubscribes, closes the surface and releases
// its video provider.
func (m *Mirror) Close() error {
	m.mu.Lock()
	surface := m.surface
	m.mu.Unlock()
	if surface == nil {
		return ErrNotOpen
	}
	m.teardown(surface)
	return nil
}

// Interact records the user gesture that allows the surface video to play.
func (m *Mirror) Interact() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.surface == nil {
		return ErrNotOpen
	}
	if m.interacted {
		return nil
	}
	m.interacted = true
	m.renderLocked(m.surface, m.last)
	return nil
}

func (m *Mirror) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := Status{
		Supported:  m.Supported(),
		Open:       m.surface != nil,
		Interacted: m.interacted,
	}
	if m.surface != nil {
		status.SurfaceID = m.surface.ID()
	}
	if m.notice != "" && m.opts.Now().Before(m.noticeUntil) {
		status.Notice = m.notice
	}
	return status
}

// Surface returns the open surface, nil when closed.
func (m *Mirror) Surface() Surface {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.surface
}

func (m *Mirror) teardown(surface Surface) {
	m.mu.Lock()
	if m.surface != surface {
		m.mu.Unlock()
		return
	}
	unsubscribe := m.unsubscribe
	adapter := m.adapter
	m.surface = nil
	m.unsubscribe = nil
	m.adapter = nil
	m.interacted = false
	m.videoRef = ""
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if adapter != nil {
		adapter.Pause()
	}
	if m.opts.Loader != nil {
		m.opts.Loader.Release(surface.ID())
	}
	surface.Close()
	m.opts.Logger.Info("companion closed", "surface", surface.ID())
}

func (m *Mirror) render(surface Surface, s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.surface != surface {
		return
	}
	m.renderLocked(surface, s)
}

func (m *Mirror) renderLocked(surface Surface, s Snapshot) {
	m.last = s
	m.seq++

	frame := compose(s)
	frame.Seq = m.seq
	frame.Interacted = m.interacted
	frame.Video = m.syncVideoLocked(s)
	surface.Render(frame)
}

// syncVideoLocked drives the surface's own adapter. The video plays only for a
// counting phase, never during the pre-roll, and only after the user has
// interacted with the surface.
func (m *Mirror) syncVideoLocked(s Snapshot) *VideoView {
	if m.adapter == nil || s.Phase == timer.PhaseStopped {
		if m.adapter != nil {
			m.adapter.Pause()
		}
		return nil
	}

	ref := s.SourceRef()
	if ref != m.videoRef {
		m.videoRef = ref
		if err := m.adapter.Load(ref, 0); err != nil {
			m.opts.Logger.Debug("companion video unavailable", "ref", ref, "error", err)
		}
	}
	if !m.adapter.HasVideo() {
		return nil
	}

	if m.interacted && !s.IsChimePlaying {
		m.adapter.Play()
	} else {
		m.adapter.Pause()
	}

	videoID := m.adapter.VideoID()
	return &VideoView{
		VideoID:         videoID,
		EmbedURL:        video.EmbedURL(videoID, video.EmbedOptions{EnableJSAPI: true, Loop: true, HideControls: true}),
		Playing:         m.adapter.Playing(),
		PositionSeconds: m.adapter.CurrentPosition(),
	}
}

func (m *Mirror) setNotice(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setNoticeLocked(message)
}

func (m *Mirror) setNoticeLocked(message string) {
	m.notice = message
	m.noticeUntil = m.opts.Now().Add(NoticeTTL)
}

func (m *Mirror) clearNoticeLocked() {
	m.notice = ""
	m.noticeUntil = time.Time{}
}
