package video

import "sync"

// Provider is the external embed player. Implementations must be safe for
// concurrent use and must invoke the ended callback without holding their own
// locks.
type Provider interface {
	Ready() bool
	Load(videoID string, startSeconds float64)
	Play()
	Pause()
	Seek(seconds float64)
	CurrentTime() float64
	OnEnded(fn func())
}

// Loader bootstraps one provider per rendering surface. The primary page and the
// companion window are separate surfaces and never share a provider.
type Loader struct {
	mu      sync.Mutex
	factory func(surface string) Provider
	loaded  map[string]Provider
}

func NewLoader(factory func(surface string) Provider) *Loader {
	return &Loader{
		factory: factory,
		loaded:  make(map[string]Provider),
	}
}

// Provider returns the provider for surface, creating it on first use.
func (l *Loader) Provider(surface string) Provider {
	l.mu.Lock()
	defer l.mu.Unlock()

	if provider, ok := l.loaded[surface]; ok {
		return provider
	}
	provider := l.factory(surface)
	l.loaded[surface] = provider
	return provider
}

func (l *Loader) Loaded(surface string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.loaded[surface]
	return ok
}

// Release forgets the provider of a torn down surface.
func (l *Loader) Release(surface string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if provider, ok := l.loaded[surface]; ok {
		provider.Pause()
		delete(l.loaded, surface)
	}
}
