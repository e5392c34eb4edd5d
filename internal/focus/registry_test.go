package focus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focustimer/internal/chime"
	"focustimer/internal/companion"
	apperrors "focustimer/internal/errors"
	"focustimer/internal/model"
)

func TestRegistryReusesWorkspace(t *testing.T) {
	f := newFixture(t, configuredSettings())
	registry := NewRegistry(f.settings, f.records, companion.NewStreamHost(true), companion.Size{}, f.opts)
	t.Cleanup(registry.CloseAll)

	first, apiErr := registry.Get(context.Background(), testUser)
	require.Nil(t, apiErr)
	second, apiErr := registry.Get(context.Background(), testUser)
	require.Nil(t, apiErr)
	assert.Same(t, first, second)

	other, apiErr := registry.Get(context.Background(), "user-2")
	require.Nil(t, apiErr)
	assert.NotSame(t, first, other)
}

func TestMirrorFollowsController(t *testing.T) {
	f := newFixture(t, configuredSettings())
	registry := NewRegistry(f.settings, f.records, companion.NewStreamHost(true), companion.Size{}, f.opts)
	t.Cleanup(registry.CloseAll)

	workspace, apiErr := registry.Get(context.Background(), testUser)
	require.Nil(t, apiErr)

	surface, err := workspace.Mirror.Open(context.Background())
	require.NoError(t, err)
	stream := surface.(*companion.StreamSurface)

	frame := <-stream.Frames()
	assert.Equal(t, "停止中", frame.Display)

	_, apiErr = workspace.Controller.Start(context.Background())
	require.Nil(t, apiErr)
	frame = <-stream.Frames()
	assert.Equal(t, "準備中... ♪", frame.Display)

	f.player.last(chime.CueStart).complete()
	tickSeconds(f, workspace.Controller, 1)
	frame = <-stream.Frames()
	assert.Equal(t, "24:59", frame.Display)
	assert.Equal(t, "作業中", frame.Label)

	_, err = workspace.Mirror.Open(context.Background())
	assert.ErrorIs(t, err, companion.ErrAlreadyOpen)
	assert.True(t, workspace.Mirror.Status().Open)
}

func TestCloseAllTearsDownMirrors(t *testing.T) {
	f := newFixture(t, configuredSettings())
	registry := NewRegistry(f.settings, f.records, companion.NewStreamHost(true), companion.Size{}, f.opts)

	workspace, apiErr := registry.Get(context.Background(), testUser)
	require.Nil(t, apiErr)
	surface, err := workspace.Mirror.Open(context.Background())
	require.NoError(t, err)
	startRunning(t, f, workspace.Controller)

	registry.CloseAll()

	select {
	case <-surface.Done():
	case <-time.After(time.Second):
		t.Fatal("companion surface still open")
	}
	assert.False(t, workspace.Controller.Ticking())
	assert.False(t, workspace.Mirror.Status().Open)

	_, apiErr = registry.Get(context.Background(), testUser)
	require.NotNil(t, apiErr)
}

// slowSettings holds every settings read for one user until released.
type slowSettings struct {
	*memSettings
	slowUser string
	entered  chan struct{}
	release  chan struct{}
}

func (s *slowSettings) Get(ctx context.Context, userID string) (*model.Settings, *apperrors.APIError) {
	if userID == s.slowUser {
		s.entered <- struct{}{}
		<-s.release
	}
	return s.memSettings.Get(ctx, userID)
}

func TestRegistryLoadsSettingsOutsideLock(t *testing.T) {
	f := newFixture(t, configuredSettings())
	settings := &slowSettings{
		memSettings: f.settings,
		slowUser:    testUser,
		entered:     make(chan struct{}, 2),
		release:     make(chan struct{}),
	}
	registry := NewRegistry(settings, f.records, companion.NewStreamHost(true), companion.Size{}, f.opts)
	t.Cleanup(registry.CloseAll)

	var wg sync.WaitGroup
	results := make([]*Workspace, 2)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			workspace, apiErr := registry.Get(context.Background(), testUser)
			assert.Nil(t, apiErr)
			results[i] = workspace
		}()
	}
	<-settings.entered
	<-settings.entered

	done := make(chan *Workspace, 1)
	go func() {
		workspace, _ := registry.Get(context.Background(), "user-2")
		done <- workspace
	}()
	select {
	case workspace := <-done:
		assert.NotNil(t, workspace)
	case <-time.After(time.Second):
		t.Fatal("other user blocked behind a slow settings read")
	}

	close(settings.release)
	wg.Wait()
	require.NotNil(t, results[0])
	assert.Same(t, results[0], results[1])
	assert.Equal(t, workRef, results[0].Controller.Settings().WorkSourceRef)
}
