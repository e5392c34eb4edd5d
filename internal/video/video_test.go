package video

import (
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveID(t *testing.T) {
	tests := []struct {
		ref    string
		wantID string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ?start=3", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?list=abc&v=a-b_c1234XY", "a-b_c1234XY", true},
		{"not-a-url", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			id, ok := ResolveID(tt.ref)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestEmbedURL(t *testing.T) {
	raw := EmbedURL("dQw4w9WgXcQ", EmbedOptions{EnableJSAPI: true, Loop: true, StartSeconds: 42})

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.youtube.com", parsed.Host)
	assert.Equal(t, "/embed/dQw4w9WgXcQ", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "1", q.Get("enablejsapi"))
	assert.Equal(t, "1", q.Get("loop"))
	assert.Equal(t, "dQw4w9WgXcQ", q.Get("playlist"))
	assert.Equal(t, "42", q.Get("start"))
	assert.Equal(t, "0", q.Get("rel"))
	assert.Empty(t, q.Get("autoplay"))
}

type fakeProvider struct {
	mu       sync.Mutex
	ready    bool
	loaded   []string
	playing  bool
	position float64
	seeks    []float64
	onEnded  func()
}

func (f *fakeProvider) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

func (f *fakeProvider) Load(videoID string, startSeconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = append(f.loaded, videoID)
	f.position = startSeconds
}

func (f *fakeProvider) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = true
}

func (f *fakeProvider) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
}

func (f *fakeProvider) Seek(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
	f.position = seconds
}

func (f *fakeProvider) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *fakeProvider) OnEnded(fn func()) {
	f.onEnded = fn
}

func TestAdapterBeforeProviderReady(t *testing.T) {
	provider := &fakeProvider{}
	adapter := NewAdapter(provider)

	require.NoError(t, adapter.Load("https://youtu.be/dQw4w9WgXcQ", 30))
	adapter.Play()
	adapter.Seek(10)

	assert.Equal(t, 0.0, adapter.CurrentPosition())
	assert.Empty(t, provider.loaded)
	assert.Empty(t, provider.seeks)

	provider.ready = true
	assert.Equal(t, 30.0, adapter.CurrentPosition())
	assert.Equal(t, []string{"dQw4w9WgXcQ"}, provider.loaded)
	assert.True(t, provider.playing)
}

func TestAdapterUnresolvableReference(t *testing.T) {
	provider := &fakeProvider{ready: true}
	adapter := NewAdapter(provider)

	err := adapter.Load("not-a-url", 0)
	assert.ErrorIs(t, err, ErrNoVideo)
	assert.False(t, adapter.HasVideo())
	assert.Equal(t, 0.0, adapter.CurrentPosition())
}

func TestAdapterLoopsOnEnded(t *testing.T) {
	provider := &fakeProvider{ready: true}
	adapter := NewAdapter(provider)
	require.NoError(t, adapter.Load("https://youtu.be/dQw4w9WgXcQ", 120))
	adapter.Play()

	provider.playing = false
	provider.onEnded()

	assert.Equal(t, []float64{0}, provider.seeks)
	assert.True(t, provider.playing)
}

func TestAdapterEndedWhilePausedDoesNotResume(t *testing.T) {
	provider := &fakeProvider{ready: true}
	adapter := NewAdapter(provider)
	require.NoError(t, adapter.Load("https://youtu.be/dQw4w9WgXcQ", 0))
	adapter.Pause()

	provider.onEnded()
	assert.False(t, provider.playing)
}

func TestLoaderIsScopedPerSurface(t *testing.T) {
	created := 0
	loader := NewLoader(func(surface string) Provider {
		created++
		return &fakeProvider{ready: true}
	})

	primary := loader.Provider("primary")
	again := loader.Provider("primary")
	companion := loader.Provider("companion")

	assert.Same(t, primary, again)
	assert.NotSame(t, primary, companion)
	assert.Equal(t, 2, created)

	loader.Release("companion")
	assert.False(t, loader.Loaded("companion"))
	assert.True(t, loader.Loaded("primary"))
}

func TestSimulatedPlayerLoopsThroughAdapter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	player := NewSimulatedPlayer(clock, 60)
	adapter := NewAdapter(player)
	require.NoError(t, adapter.LoadID("dQw4w9WgXcQ", 50))
	adapter.Play()

	now = now.Add(5 * time.Second)
	assert.InDelta(t, 55.0, adapter.CurrentPosition(), 0.001)

	now = now.Add(10 * time.Second)
	assert.InDelta(t, 0.0, adapter.CurrentPosition(), 0.001)

	now = now.Add(3 * time.Second)
	assert.InDelta(t, 3.0, adapter.CurrentPosition(), 0.001)
}

func TestSimulatedPlayerPauseHoldsPosition(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	player := NewSimulatedPlayer(func() time.Time { return now }, 0)
	adapter := NewAdapter(player)
	require.NoError(t, adapter.LoadID("dQw4w9WgXcQ", 0))
	adapter.Play()

	now = now.Add(7 * time.Second)
	adapter.Pause()
	now = now.Add(time.Hour)

	assert.InDelta(t, 7.0, adapter.CurrentPosition(), 0.001)
}
