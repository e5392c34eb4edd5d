package focus

import (
	"context"
	"sync"

	"focustimer/internal/companion"
	apperrors "focustimer/internal/errors"
)

// Workspace is everything one user's client drives: the controller and the
// companion mirror subscribed to it.
type Workspace struct {
	Controller *Controller
	Mirror     *companion.Mirror
}

// Registry creates workspaces on first use and closes them on shutdown.
type Registry struct {
	settings      SettingsStore
	records       RecordStore
	host          companion.Host
	companionSize companion.Size
	opts          Options

	mu         sync.Mutex
	workspaces map[string]*Workspace
	closed     bool
}

func NewRegistry(settings SettingsStore, records RecordStore, host companion.Host, companionSize companion.Size, opts Options) *Registry {
	return &Registry{
		settings:      settings,
		records:       records,
		host:          host,
		companionSize: companionSize,
		opts:          opts.withDefaults(),
		workspaces:    make(map[string]*Workspace),
	}
}

// Get returns the user's workspace, creating it on first use. Settings are
// loaded outside the registry lock so one user's first request never waits on
// another's.
func (r *Registry) Get(ctx context.Context, userID string) (*Workspace, *apperrors.APIError) {
	if workspace, apiErr := r.lookup(userID); workspace != nil || apiErr != nil {
		return workspace, apiErr
	}

	current, apiErr := r.settings.Get(ctx, userID)
	if apiErr != nil {
		return nil, apiErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errShuttingDown()
	}
	if workspace, ok := r.workspaces[userID]; ok {
		return workspace, nil
	}

	controller := newController(userID, *current, r.settings, r.records, r.opts)
	mirror := companion.NewMirror(r.host, controller, companion.Options{
		Size:   r.companionSize,
		Loader: r.opts.Loader,
		Logger: r.opts.Logger.With("user_id", userID),
		Now:    r.opts.Now,
	})

	workspace := &Workspace{Controller: controller, Mirror: mirror}
	r.workspaces[userID] = workspace
	return workspace, nil
}

func (r *Registry) lookup(userID string) (*Workspace, *apperrors.APIError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errShuttingDown()
	}
	return r.workspaces[userID], nil
}

func errShuttingDown() *apperrors.APIError {
	return apperrors.Unavailable("shutting_down", "server is shutting down")
}

// CloseAll tears down every mirror before its controller.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	r.closed = true
	workspaces := r.workspaces
	r.workspaces = make(map[string]*Workspace)
	r.mu.Unlock()

	for _, workspace := range workspaces {
		_ = workspace.Mirror.Close()
		workspace.Controller.Close()
	}
}
