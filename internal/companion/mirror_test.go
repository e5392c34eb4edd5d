package companion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focustimer/internal/timer"
	"focustimer/internal/video"
)

type fakeSource struct {
	mu       sync.Mutex
	snapshot Snapshot
	subs     map[int]func(Snapshot)
	next     int
}

func newFakeSource(s Snapshot) *fakeSource {
	return &fakeSource{snapshot: s, subs: make(map[int]func(Snapshot))}
}

func (f *fakeSource) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

func (f *fakeSource) Subscribe(fn func(Snapshot)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

func (f *fakeSource) publish(s Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot = s
	for _, fn := range f.subs {
		fn(s)
	}
}

func (f *fakeSource) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type recordingSurface struct {
	*StreamSurface
	mu     sync.Mutex
	frames []Frame
}

func (r *recordingSurface) Render(frame Frame) {
	r.mu.Lock()
	r.frames = append(r.frames, frame)
	r.mu.Unlock()
	r.StreamSurface.Render(frame)
}

func (r *recordingSurface) rendered() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

type fakeHost struct {
	supported bool
	err       error
	granted   []*recordingSurface
}

func (h *fakeHost) Supported() bool {
	return h.supported
}

func (h *fakeHost) Request(ctx context.Context, size Size) (Surface, error) {
	if h.err != nil {
		return nil, h.err
	}
	surface := &recordingSurface{StreamSurface: NewStreamSurface(size)}
	h.granted = append(h.granted, surface)
	return surface, nil
}

type fakeProvider struct {
	mu      sync.Mutex
	playing bool
	videoID string
}

func (p *fakeProvider) Ready() bool { return true }
func (p *fakeProvider) Load(id string, _ float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.videoID = id
}
func (p *fakeProvider) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
}
func (p *fakeProvider) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}
func (p *fakeProvider) Seek(float64)         {}
func (p *fakeProvider) CurrentTime() float64 { return 0 }
func (p *fakeProvider) OnEnded(func())       {}

const workRef = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func runningSnapshot() Snapshot {
	return Snapshot{
		Phase:                timer.PhaseWork,
		RemainingSeconds:     1499,
		WorkDurationMinutes:  25,
		BreakDurationMinutes: 5,
		WorkSourceRef:        workRef,
	}
}

func waitClosed(t *testing.T, m *Mirror) {
	t.Helper()
	require.Eventually(t, func() bool { return m.Surface() == nil }, time.Second, 5*time.Millisecond)
}

func TestOpenRendersInitialSnapshot(t *testing.T) {
	host := &fakeHost{supported: true}
	source := newFakeSource(runningSnapshot())
	m := NewMirror(host, source, Options{})

	surface, err := m.Open(context.Background())
	require.NoError(t, err)
	require.NotNil(t, surface)

	frames := host.granted[0].rendered()
	require.Len(t, frames, 1)
	assert.Equal(t, "作業中", frames[0].Label)
	assert.Equal(t, "24:59", frames[0].Display)
	assert.InDelta(t, 1499.0/1500.0, frames[0].Progress, 1e-9)
	assert.Equal(t, Size{Width: 280, Height: 200}, host.granted[0].Size())
}

// changingSource publishes a newer snapshot right after handing out the
// current one, as a controller tick between the two calls would.
type changingSource struct {
	*fakeSource
	fresh Snapshot
	once  sync.Once
}

func (c *changingSource) Snapshot() Snapshot {
	current := c.fakeSource.Snapshot()
	c.once.Do(func() { c.publish(c.fresh) })
	return current
}

func TestOpenKeepsNewerPushedFrame(t *testing.T) {
	host := &fakeHost{supported: true}
	fresh := runningSnapshot()
	fresh.RemainingSeconds = 1498
	source := &changingSource{fakeSource: newFakeSource(runningSnapshot()), fresh: fresh}
	m := NewMirror(host, source, Options{})

	_, err := m.Open(context.Background())
	require.NoError(t, err)

	frames := host.granted[0].rendered()
	require.Len(t, frames, 1)
	assert.Equal(t, "24:58", frames[0].Display)

	frame := <-host.granted[0].Frames()
	assert.Equal(t, 1498, frame.Snapshot.RemainingSeconds)
}

func TestSecondOpenIsDenied(t *testing.T) {
	host := &fakeHost{supported: true}
	m := NewMirror(host, newFakeSource(runningSnapshot()), Options{})

	_, err := m.Open(context.Background())
	require.NoError(t, err)

	_, err = m.Open(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyOpen)
	assert.Len(t, host.granted, 1)

	status := m.Status()
	assert.True(t, status.Open)
	assert.Equal(t, ErrAlreadyOpen.Error(), status.Notice)
}

func TestOpenUnsupported(t *testing.T) {
	m := NewMirror(&fakeHost{supported: false}, newFakeSource(Snapshot{}), Options{})

	_, err := m.Open(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.False(t, m.Status().Open)
	assert.NotEmpty(t, m.Status().Notice)
}

func TestOpenHostErrorBecomesNotice(t *testing.T) {
	host := &fakeHost{supported: true, err: errors.New("user gesture required")}
	m := NewMirror(host, newFakeSource(Snapshot{}), Options{})

	_, err := m.Open(context.Background())
	require.Error(t, err)
	assert.Equal(t, "user gesture required", m.Status().Notice)
	assert.False(t, m.Status().Open)
}

func TestNoticeExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	m := NewMirror(&fakeHost{}, newFakeSource(Snapshot{}), Options{Now: func() time.Time { return now }})

	_, _ = m.Open(context.Background())
	assert.NotEmpty(t, m.Status().Notice)

	now = now.Add(NoticeTTL)
	assert.Empty(t, m.Status().Notice)
}

func TestChangesArePushed(t *testing.T) {
	host := &fakeHost{supported: true}
	source := newFakeSource(runningSnapshot())
	m := NewMirror(host, source, Options{})
	_, err := m.Open(context.Background())
	require.NoError(t, err)

	next := runningSnapshot()
	next.RemainingSeconds = 1498
	source.publish(next)

	chime := runningSnapshot()
	chime.IsChimePlaying = true
	source.publish(chime)

	source.publish(Snapshot{Phase: timer.PhaseStopped, WorkDurationMinutes: 25, BreakDurationMinutes: 5})

	frames := host.granted[0].rendered()
	require.Len(t, frames, 4)
	assert.Equal(t, "24:58", frames[1].Display)
	assert.Equal(t, "準備中... ♪", frames[2].Display)
	assert.Equal(t, "停止中", frames[3].Display)
	assert.Less(t, frames[2].Seq, frames[3].Seq)
}

func TestCloseUnsubscribes(t *testing.T) {
	host := &fakeHost{supported: true}
	source := newFakeSource(runningSnapshot())
	m := NewMirror(host, source, Options{})
	surface, err := m.Open(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, source.subscribers())

	require.NoError(t, m.Close())
	assert.Equal(t, 0, source.subscribers())
	assert.Nil(t, m.Surface())
	select {
	case <-surface.Done():
	default:
		t.Fatal("surface was not closed")
	}

	assert.ErrorIs(t, m.Close(), ErrNotOpen)

	_, err = m.Open(context.Background())
	assert.NoError(t, err)
}

func TestHostHideTearsDown(t *testing.T) {
	host := &fakeHost{supported: true}
	source := newFakeSource(runningSnapshot())
	m := NewMirror(host, source, Options{})
	_, err := m.Open(context.Background())
	require.NoError(t, err)

	host.granted[0].Close()
	waitClosed(t, m)
	assert.Equal(t, 0, source.subscribers())
}

func TestVideoPlaysOnlyAfterInteraction(t *testing.T) {
	provider := &fakeProvider{}
	loader := video.NewLoader(func(string) video.Provider { return provider })
	host := &fakeHost{supported: true}
	source := newFakeSource(runningSnapshot())
	m := NewMirror(host, source, Options{Loader: loader})

	surface, err := m.Open(context.Background())
	require.NoError(t, err)
	assert.True(t, loader.Loaded(surface.ID()))

	frames := host.granted[0].rendered()
	require.NotNil(t, frames[0].Video)
	assert.Equal(t, "dQw4w9WgXcQ", frames[0].Video.VideoID)
	assert.False(t, frames[0].Video.Playing)

	require.NoError(t, m.Interact())
	frames = host.granted[0].rendered()
	last := frames[len(frames)-1]
	assert.True(t, last.Interacted)
	assert.True(t, last.Video.Playing)

	chime := runningSnapshot()
	chime.IsChimePlaying = true
	source.publish(chime)
	frames = host.granted[0].rendered()
	assert.False(t, frames[len(frames)-1].Video.Playing)

	require.NoError(t, m.Close())
	assert.False(t, loader.Loaded(surface.ID()))
}

func TestStreamSurfaceKeepsLatestFrame(t *testing.T) {
	s := NewStreamSurface(Size{})
	s.Render(Frame{Seq: 1})
	s.Render(Frame{Seq: 2})
	s.Render(Frame{Seq: 3})

	frame := <-s.Frames()
	assert.Equal(t, uint64(3), frame.Seq)

	assert.True(t, s.Attach())
	assert.False(t, s.Attach())
	s.Detach()
	assert.True(t, s.Attach())

	s.Close()
	s.Close()
	s.Render(Frame{Seq: 4})
	select {
	case <-s.Frames():
		t.Fatal("closed surface accepted a frame")
	default:
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "25:00", FormatClock(1500))
	assert.Equal(t, "00:00", FormatClock(-1))
}
