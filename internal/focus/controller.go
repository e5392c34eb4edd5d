// Package focus drives one user's countdown. It owns the timer, the open
// session, the primary video and the audio cues, and publishes every change to
// its subscribers.
package focus

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"focustimer/internal/chime"
	"focustimer/internal/companion"
	apperrors "focustimer/internal/errors"
	"focustimer/internal/model"
	"focustimer/internal/service"
	"focustimer/internal/session"
	"focustimer/internal/timer"
	"focustimer/internal/video"
)

const (
	warningAt          = 3
	defaultNoticeTTL   = 3 * time.Second
	missingWorkSource  = "set a work video source before starting"
	sessionNotSaved    = "the session could not be saved, stop again to retry"
	persistenceTimeout = 5 * time.Second
)

type SettingsStore interface {
	Get(ctx context.Context, userID string) (*model.Settings, *apperrors.APIError)
	Save(ctx context.Context, settings *model.Settings) *apperrors.APIError
}

type RecordStore interface {
	Commit(ctx context.Context, userID string, totals session.Totals) (*model.Record, *apperrors.APIError)
}

type Options struct {
	Chime  chime.Player
	Loader *video.Loader
	Logger *slog.Logger
	Now    func() time.Time
	// TickInterval is the countdown step, one second unless overridden.
	TickInterval time.Duration
	NoticeTTL    time.Duration
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Chime == nil {
		o.Chime = chime.NewTimedPlayer(0)
	}
	if o.Loader == nil {
		now := o.Now
		o.Loader = video.NewLoader(func(string) video.Provider { return video.NewSimulatedPlayer(now, 0) })
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.NoticeTTL <= 0 {
		o.NoticeTTL = defaultNoticeTTL
	}
	return o
}

// Controller serialises every operation of one user behind its mutex. Cue
// completions and ticks arrive on other goroutines and re-enter through it.
type Controller struct {
	userID   string
	settings SettingsStore
	records  RecordStore
	opts     Options
	logger   *slog.Logger
	surface  string

	mu          sync.Mutex
	machine     *timer.Machine
	acc         *session.Accumulator
	current     model.Settings
	video       *video.Adapter
	videoPhase  timer.Phase
	warned      bool
	cueGen      uint64
	cue         chime.Playback
	alert       chime.Playback
	stopTick    context.CancelFunc
	subscribers map[int]func(companion.Snapshot)
	nextSub     int
	notice      string
	noticeUntil time.Time
	closed      bool
}

func NewController(ctx context.Context, userID string, settings SettingsStore, records RecordStore, opts Options) (*Controller, *apperrors.APIError) {
	current, apiErr := settings.Get(ctx, userID)
	if apiErr != nil {
		return nil, apiErr
	}
	return newController(userID, *current, settings, records, opts.withDefaults()), nil
}

// newController builds a controller from already loaded settings. It does no
// I/O.
func newController(userID string, current model.Settings, settings SettingsStore, records RecordStore, opts Options) *Controller {
	surface := "primary:" + userID
	return &Controller{
		userID:      userID,
		settings:    settings,
		records:     records,
		opts:        opts,
		logger:      opts.Logger.With("user_id", userID),
		surface:     surface,
		machine:     timer.NewMachine(),
		acc:         session.NewAccumulator(),
		current:     current,
		video:       video.NewAdapter(opts.Loader.Provider(surface)),
		videoPhase:  timer.PhaseStopped,
		subscribers: make(map[int]func(companion.Snapshot)),
	}
}

// Start begins a session from Stopped: the work phase is entered paused, the
// pre-roll cue plays, and its completion starts the countdown. On a paused timer
// Start resumes.
func (c *Controller) Start(ctx context.Context) (View, *apperrors.APIError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.machine.State()
	switch state.Status() {
	case timer.StatusRunning, timer.StatusChimePending:
		return c.viewLocked(), nil
	case timer.StatusPaused:
		c.prerollLocked()
		c.notifyLocked()
		return c.viewLocked(), nil
	}

	if strings.TrimSpace(c.current.WorkSourceRef) == "" {
		c.setNoticeLocked(missingWorkSource)
		c.notifyLocked()
		return c.viewLocked(), apperrors.BadRequest(apperrors.CodeMissingWorkSource, missingWorkSource)
	}

	c.warned = false
	c.machine.Start(timer.PhaseWork, c.current.DurationSeconds(timer.PhaseWork), false)
	c.loadVideoLocked(timer.PhaseWork)
	c.prerollLocked()
	c.notifyLocked()
	c.logger.Info("timer started", "phase", timer.PhaseWork)
	return c.viewLocked(), nil
}

// Resume continues a paused countdown after the pre-roll cue.
func (c *Controller) Resume(ctx context.Context) (View, *apperrors.APIError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.machine.State()
	if state.IsStopped() {
		return c.viewLocked(), apperrors.BadRequest(apperrors.CodeTimerStopped, "timer is stopped")
	}
	if state.Status() == timer.StatusPaused {
		c.prerollLocked()
		c.notifyLocked()
	}
	return c.viewLocked(), nil
}

func (c *Controller) Pause(ctx context.Context) (View, *apperrors.APIError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.machine.State().Status() {
	case timer.StatusRunning:
		c.saveProgressLocked(ctx)
		c.machine.Pause()
		c.stopTickerLocked()
	case timer.StatusChimePending:
		c.stopCueLocked()
		c.machine.SetChimePlaying(false)
	default:
		return c.viewLocked(), nil
	}
	c.syncVideoLocked()
	c.notifyLocked()
	c.logger.Debug("timer paused", "remaining", c.machine.State().Remaining())
	return c.viewLocked(), nil
}

// Switch moves to the other phase by hand. The playback position of the
// outgoing phase is saved before the new source is loaded. A running countdown
// keeps running.
func (c *Controller) Switch(ctx context.Context) (View, *apperrors.APIError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.machine.State()
	if state.IsStopped() {
		return c.viewLocked(), apperrors.BadRequest(apperrors.CodeTimerStopped, "timer is stopped")
	}

	c.saveProgressLocked(ctx)
	next := state.Phase().Next()
	c.warned = false
	c.machine.Start(next, c.current.DurationSeconds(next), state.IsRunning())
	if state.IsChimePlaying() {
		c.machine.SetChimePlaying(true)
	}
	c.loadVideoLocked(next)
	c.syncVideoLocked()
	c.notifyLocked()
	c.logger.Info("phase switched", "phase", next)
	return c.viewLocked(), nil
}

// Stop silences any cue, cancels the countdown and commits the open session.
// The record is nil when no session was open.
func (c *Controller) Stop(ctx context.Context) (View, *model.Record, *apperrors.APIError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopCueLocked()
	c.stopAlertLocked()
	c.stopTickerLocked()
	c.saveProgressLocked(ctx)
	c.machine.Stop()
	c.warned = false
	c.syncVideoLocked()
	c.videoPhase = timer.PhaseStopped

	var record *model.Record
	if totals, ok := c.acc.Totals(c.opts.Now()); ok {
		committed, apiErr := c.records.Commit(ctx, c.userID, totals)
		if apiErr != nil {
			// the session stays open so a later Stop can commit it
			c.setNoticeLocked(sessionNotSaved)
			c.logger.Warn("commit session failed", "error", apiErr.Message)
			c.notifyLocked()
			return c.viewLocked(), nil, apiErr
		}
		c.acc.Reset()
		record = committed
		c.logger.Info("session committed",
			"record_id", record.ID,
			"total_work", record.TotalWork,
			"total_break", record.TotalBreak,
		)
	}

	c.notifyLocked()
	return c.viewLocked(), record, nil
}

// UpdateSettings patches the settings. A changed source for the phase on
// screen is reloaded from the start.
func (c *Controller) UpdateSettings(ctx context.Context, input service.UpdateSettingsInput) (View, *apperrors.APIError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := service.ApplySettings(c.current, input)
	if apiErr := c.settings.Save(ctx, &next); apiErr != nil {
		return c.viewLocked(), apiErr
	}
	previous := c.current
	c.current = next

	if phase := c.videoPhase; phase != timer.PhaseStopped && previous.SourceRef(phase) != next.SourceRef(phase) {
		c.loadVideoLocked(phase)
		c.syncVideoLocked()
	}
	c.notifyLocked()
	return c.viewLocked(), nil
}

func (c *Controller) Settings() model.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Tick advances a running countdown by one step. The tick loop calls it; it is
// a no-op unless the timer is running.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickLocked()
}

// Ticking reports whether the tick loop is scheduled.
func (c *Controller) Ticking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopTick != nil
}

// Snapshot implements companion.Source.
func (c *Controller) Snapshot() companion.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn for every state change. fn runs while the controller
// holds its lock and must not call back into it.
func (c *Controller) Subscribe(fn func(companion.Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subscribers, id)
		})
	}
}

// Close cancels the tick loop, silences cues and releases the primary video.
// An open session is discarded, matching a closed page.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true

	c.stopCueLocked()
	c.stopAlertLocked()
	c.stopTickerLocked()
	c.saveProgressLocked(context.Background())
	c.video.Pause()
	c.opts.Loader.Release(c.surface)

	if c.acc.IsOpen() {
		work, brk := c.acc.Elapsed()
		c.logger.Info("open session discarded", "work_seconds", work, "break_seconds", brk)
		c.acc.Reset()
	}
}

func (c *Controller) tickLocked() {
	state := c.machine.State()
	if !state.IsRunning() {
		return
	}
	c.machine.Tick()
	c.acc.Observe(state.Phase(), c.opts.Now())
	c.reactLocked(c.machine.State().Remaining())
	c.notifyLocked()
}

// reactLocked fires the side effects bound to the remaining time: the warning
// cue once per phase entry at three seconds and the transition at zero.
func (c *Controller) reactLocked(remaining int) {
	switch {
	case remaining == warningAt && !c.warned:
		c.warned = true
		c.alertLocked(chime.CueWarning)
	case remaining == 0:
		c.completePhaseLocked()
	}
}

// completePhaseLocked rolls a finished phase over into the next one. The
// session stays open across the switch.
func (c *Controller) completePhaseLocked() {
	state := c.machine.State()
	if state.IsStopped() {
		return
	}
	c.saveProgressLocked(context.Background())
	c.alertLocked(chime.CuePhaseEnd)

	next := state.Phase().Next()
	c.warned = false
	c.machine.Start(next, c.current.DurationSeconds(next), true)
	c.loadVideoLocked(next)
	c.syncVideoLocked()
	c.logger.Info("phase completed", "finished", state.Phase(), "next", next)
}

// prerollLocked holds the countdown while the start cue plays. Only the cue's
// completion resumes it, and only if no later operation superseded the cue.
func (c *Controller) prerollLocked() {
	c.stopCueLocked()
	c.machine.SetChimePlaying(true)
	c.syncVideoLocked()

	gen := c.cueGen
	c.cue = c.opts.Chime.Play(chime.CueStart, func() { c.prerollDone(gen) })
}

func (c *Controller) prerollDone(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.cueGen || !c.machine.State().IsChimePlaying() {
		return
	}
	c.cue = nil
	c.machine.SetChimePlaying(false)
	c.machine.Resume()

	now := c.opts.Now()
	if !c.acc.IsOpen() {
		c.acc.Open(now)
		c.logger.Info("session opened")
	} else {
		c.acc.Mark(now)
	}

	c.syncVideoLocked()
	c.startTickerLocked()
	c.notifyLocked()
}

// stopCueLocked silences the pending pre-roll and invalidates its completion.
func (c *Controller) stopCueLocked() {
	c.cueGen++
	if c.cue != nil {
		c.cue.Stop()
		c.cue = nil
	}
}

func (c *Controller) alertLocked(cue chime.Cue) {
	c.stopAlertLocked()
	c.alert = c.opts.Chime.Play(cue, nil)
}

func (c *Controller) stopAlertLocked() {
	if c.alert != nil {
		c.alert.Stop()
		c.alert = nil
	}
}

func (c *Controller) startTickerLocked() {
	if c.stopTick != nil || c.closed {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.stopTick = cancel
	go c.tickLoop(ctx)
}

func (c *Controller) stopTickerLocked() {
	if c.stopTick != nil {
		c.stopTick()
		c.stopTick = nil
	}
}

func (c *Controller) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if ctx.Err() == nil {
				c.tickLocked()
			}
			c.mu.Unlock()
		}
	}
}

func (c *Controller) loadVideoLocked(phase timer.Phase) {
	c.videoPhase = phase
	ref := c.current.SourceRef(phase)
	if err := c.video.Load(ref, c.current.Progress(phase)); err != nil {
		if errors.Is(err, video.ErrNoVideo) {
			c.logger.Debug("no video for phase", "phase", phase, "ref", ref)
			return
		}
		c.logger.Warn("load video failed", "phase", phase, "error", err)
	}
}

// syncVideoLocked plays the primary video only while the countdown runs.
func (c *Controller) syncVideoLocked() {
	if c.machine.State().IsRunning() {
		c.video.Play()
		return
	}
	c.video.Pause()
}

// saveProgressLocked stores the playback position of the phase on screen. It
// must run before that phase's source changes or is seeked.
func (c *Controller) saveProgressLocked(ctx context.Context) {
	phase := c.videoPhase
	if phase == timer.PhaseStopped || !c.video.HasVideo() {
		return
	}
	position := c.video.CurrentPosition()
	if position == c.current.Progress(phase) {
		return
	}

	c.current.SetProgress(phase, position)
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistenceTimeout)
	defer cancel()
	if apiErr := c.settings.Save(saveCtx, &c.current); apiErr != nil {
		c.logger.Warn("save video progress failed", "phase", phase, "error", apiErr.Message)
	}
}

func (c *Controller) setNoticeLocked(message string) {
	c.notice = message
	c.noticeUntil = c.opts.Now().Add(c.opts.NoticeTTL)
}

func (c *Controller) liveNoticeLocked() string {
	if c.notice == "" || !c.opts.Now().Before(c.noticeUntil) {
		return ""
	}
	return c.notice
}

func (c *Controller) notifyLocked() {
	if len(c.subscribers) == 0 {
		return
	}
	snapshot := c.snapshotLocked()
	for _, fn := range c.subscribers {
		fn(snapshot)
	}
}

func (c *Controller) snapshotLocked() companion.Snapshot {
	state := c.machine.State()
	return companion.Snapshot{
		Phase:                state.Phase(),
		RemainingSeconds:     state.Remaining(),
		IsChimePlaying:       state.IsChimePlaying(),
		WorkDurationMinutes:  c.current.WorkDurationMinutes,
		BreakDurationMinutes: c.current.BreakDurationMinutes,
		WorkSourceRef:        c.current.WorkSourceRef,
		BreakSourceRef:       c.current.BreakSourceRef,
	}
}
