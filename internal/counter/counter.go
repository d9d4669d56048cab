package counter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"leveller/internal/model"
	"leveller/internal/vault"
)

// State is the counter's lifecycle position.
type State int

const (
	// StateNoSession is the initial state: nothing to count.
	StateNoSession State = iota
	// StateActive means a session exists with isActive=true.
	StateActive
	// StateEnded is terminal per session; Start or Resume leaves it.
	StateEnded
)

// DefaultFlushDebounce is how long an increment may sit dirty before
// the session is written out.
const DefaultFlushDebounce = 250 * time.Millisecond

// StartParams carries the user-entered session parameters.
type StartParams struct {
	Name                string
	DateOfBirth         string
	TimeOfBirth         string
	RitualDescription   string
	MantraText          string
	RequiredRepetitions int
}

// Counter is the repetition-counting state machine. All exported
// methods are safe for concurrent use; the increment + completion
// check + persistence trigger runs as one critical section.
type Counter struct {
	mu sync.Mutex

	vault    *vault.Vault
	session  *model.MantraSession
	state    State
	dirty    bool
	signaled bool // completion signaled for the current run

	flushTimer *time.Timer
	debounce   time.Duration
	now        func() time.Time
	ids        IDGenerator
	logger     *slog.Logger

	onComplete func(model.MantraSession)
	onError    func(error)
}

// Option configures a Counter.
type Option func(*Counter)

// WithClock injects the wall clock. Tests use a deterministic clock.
func WithClock(now func() time.Time) Option {
	return func(c *Counter) { c.now = now }
}

// WithIDGenerator injects the session id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *Counter) { c.ids = g }
}

// WithFlushDebounce sets the dirty-flush delay. Zero flushes on every
// accepted event (useful in tests).
func WithFlushDebounce(d time.Duration) Option {
	return func(c *Counter) { c.debounce = d }
}

// WithLogger injects the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Counter) { c.logger = l }
}

// OnComplete registers the completion signal. Called exactly once per
// session run, outside the critical section, with a snapshot of the
// completed session.
func OnComplete(fn func(model.MantraSession)) Option {
	return func(c *Counter) { c.onComplete = fn }
}

// OnError registers the persistence-failure callback. Memory is never
// rolled back; the callback exists so a caller can surface a notice.
func OnError(fn func(error)) Option {
	return func(c *Counter) { c.onError = fn }
}

// New constructs a Counter in StateNoSession.
func New(v *vault.Vault, opts ...Option) *Counter {
	c := &Counter{
		vault:    v,
		state:    StateNoSession,
		debounce: DefaultFlushDebounce,
		now:      time.Now,
		ids:      UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Counter) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a snapshot of the owned session, or false when in
// StateNoSession.
func (c *Counter) Session() (model.MantraSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return model.MantraSession{}, false
	}
	return cloneSession(*c.session), true
}

// Start validates params, creates a new session and transitions to
// Active. Validation failures reject before any state mutation. A
// currently-active session is implicitly ended first, so at most one
// stored session carries isActive at a time; a stale active record left
// behind by a previous process (the last-active pointer still points at
// it) is finalized the same way.
func (c *Counter) Start(ctx context.Context, params StartParams) (model.MantraSession, error) {
	mantra := model.NormalizeText(params.MantraText, 0)
	if mantra == "" {
		return model.MantraSession{}, ErrEmptyMantra
	}
	if params.RequiredRepetitions <= 0 {
		return model.MantraSession{}, fmt.Errorf("%w: got %d", ErrInvalidTarget, params.RequiredRepetitions)
	}

	c.mu.Lock()
	startedAt := c.now()
	var displaced *model.MantraSession
	var staleID string
	if c.state == StateActive && c.session != nil {
		// Inline end of the displaced session, dirty increments
		// included in the snapshot written below.
		c.session.IsActive = false
		if c.session.Completed() {
			c.session.CompletedAt = startedAt.UnixMilli()
		}
		d := cloneSession(*c.session)
		displaced = &d
	} else if id, ok := c.vault.LastActive(model.KeyLastActiveMantraSession); ok {
		staleID = id
	}
	name := model.NormalizeName(params.Name, model.MaxPresetNameLen)
	if name == "" {
		name = "Mantra Session " + startedAt.Format("2006-01-02")
	}
	session := model.MantraSession{
		ID:                  c.ids.Generate(),
		Name:                name,
		DateOfBirth:         params.DateOfBirth,
		TimeOfBirth:         params.TimeOfBirth,
		RitualDescription:   model.NormalizeText(params.RitualDescription, 0),
		MantraText:          mantra,
		RequiredRepetitions: params.RequiredRepetitions,
		CurrentRepetitions:  0,
		IsActive:            true,
		StartedAt:           startedAt.UnixMilli(),
		Log:                 []model.SessionLogEntry{},
	}
	c.session = &session
	c.state = StateActive
	c.dirty = false
	c.signaled = false
	c.stopFlushTimerLocked()
	c.vault.SetLastActive(model.KeyLastActiveMantraSession, session.ID)
	snapshot := cloneSession(session)
	c.mu.Unlock()

	if displaced != nil {
		c.persist(ctx, *displaced)
	} else if staleID != "" {
		c.finalizeStored(ctx, staleID)
	}
	c.persist(ctx, snapshot)
	return snapshot, nil
}

// finalizeStored deactivates a stored session another process left
// active. A missing or already-inactive record is left alone.
func (c *Counter) finalizeStored(ctx context.Context, id string) {
	s, err := c.vault.Session(ctx, id)
	if err != nil {
		if !vault.IsNotFound(err) {
			c.logger.Warn("stale session load failed", "session", id, "error", err)
		}
		return
	}
	if !s.IsActive {
		return
	}
	s.IsActive = false
	if s.Completed() {
		s.CompletedAt = c.now().UnixMilli()
	}
	c.persist(ctx, s)
}

// RecordEvent accepts one counting event from the given channel. Valid
// only in StateActive. Returns true when this event completed the
// session.
//
// The append + increment + completion check happen under the mutex
// with no suspension point in between, so a second event cannot
// interleave and double-fire completion.
func (c *Counter) RecordEvent(ctx context.Context, channel model.Channel) (bool, error) {
	if !model.ValidChannel(channel) {
		return false, fmt.Errorf("%w: %q", ErrInvalidChannel, channel)
	}

	c.mu.Lock()
	if c.state != StateActive || c.session == nil {
		c.mu.Unlock()
		return false, ErrNoActiveSession
	}

	nowMs := c.now().UnixMilli()
	c.session.Log = append(c.session.Log, model.SessionLogEntry{
		Timestamp: nowMs,
		Channel:   channel,
	})
	c.session.CurrentRepetitions++

	completed := c.session.CurrentRepetitions >= c.session.RequiredRepetitions && !c.signaled
	if completed {
		c.session.IsActive = false
		c.session.CompletedAt = nowMs
		c.state = StateEnded
		c.signaled = true
		c.dirty = false
		c.stopFlushTimerLocked()
		c.vault.ClearLastActive(model.KeyLastActiveMantraSession)
		snapshot := cloneSession(*c.session)
		c.mu.Unlock()

		c.persist(ctx, snapshot)
		if c.onComplete != nil {
			c.onComplete(snapshot)
		}
		return true, nil
	}

	c.markDirtyLocked()
	c.mu.Unlock()
	return false, nil
}

// End finalizes the active session. finalCount, when non-nil,
// overrides the current count with the caller's freshest value.
// CompletedAt marks achievement, not teardown: it is stamped only when
// the target was reached, and the completion signal fires under the
// same condition.
func (c *Counter) End(ctx context.Context, finalCount *int) (model.MantraSession, error) {
	c.mu.Lock()
	if c.state != StateActive || c.session == nil {
		c.mu.Unlock()
		return model.MantraSession{}, ErrNoActiveSession
	}
	if finalCount != nil && *finalCount >= 0 {
		c.session.CurrentRepetitions = *finalCount
	}
	c.session.IsActive = false
	c.state = StateEnded
	c.dirty = false
	c.stopFlushTimerLocked()
	c.vault.ClearLastActive(model.KeyLastActiveMantraSession)
	reached := c.session.Completed() && !c.signaled
	if c.session.Completed() {
		c.session.CompletedAt = c.now().UnixMilli()
	}
	if reached {
		c.signaled = true
	}
	snapshot := cloneSession(*c.session)
	c.mu.Unlock()

	c.persist(ctx, snapshot)
	if reached && c.onComplete != nil {
		c.onComplete(snapshot)
	}
	return snapshot, nil
}

// Resume loads a stored session and makes it the live one. A
// different currently-active session is implicitly ended first.
// Loading a previously completed session re-activates it and counting
// resumes from the stored count - loading any session makes it live.
// Resuming the already-live session is a no-op snapshot; the in-memory
// state stays authoritative and unflushed increments are kept.
func (c *Counter) Resume(ctx context.Context, sessionID string) (model.MantraSession, error) {
	c.mu.Lock()
	if c.state == StateActive && c.session != nil && c.session.ID == sessionID {
		c.vault.SetLastActive(model.KeyLastActiveMantraSession, sessionID)
		snapshot := cloneSession(*c.session)
		c.mu.Unlock()
		return snapshot, nil
	}
	c.mu.Unlock()

	loaded, err := c.vault.Session(ctx, sessionID)
	if err != nil {
		return model.MantraSession{}, err
	}

	c.mu.Lock()
	if c.state == StateActive && c.session != nil && c.session.ID != sessionID {
		// Inline end of the displaced session; Resume must not call
		// End and re-enter the mutex.
		c.session.IsActive = false
		if c.session.Completed() {
			c.session.CompletedAt = c.now().UnixMilli()
		}
		displaced := cloneSession(*c.session)
		c.mu.Unlock()
		c.persist(ctx, displaced)
		c.mu.Lock()
	}

	loaded.IsActive = true
	c.session = &loaded
	c.state = StateActive
	c.dirty = false
	c.signaled = false
	c.stopFlushTimerLocked()
	c.vault.SetLastActive(model.KeyLastActiveMantraSession, loaded.ID)
	snapshot := cloneSession(loaded)
	c.mu.Unlock()

	c.persist(ctx, snapshot)
	return snapshot, nil
}

// ResumeLast resumes the session recorded in the last-active pointer.
// Returns false without error when no pointer exists or the record is
// gone (a dangling pointer degrades, it does not fail).
func (c *Counter) ResumeLast(ctx context.Context) (model.MantraSession, bool, error) {
	id, ok := c.vault.LastActive(model.KeyLastActiveMantraSession)
	if !ok || id == "" {
		return model.MantraSession{}, false, nil
	}
	s, err := c.Resume(ctx, id)
	if err != nil {
		if vault.IsNotFound(err) {
			c.vault.ClearLastActive(model.KeyLastActiveMantraSession)
			return model.MantraSession{}, false, nil
		}
		return model.MantraSession{}, false, err
	}
	return s, true, nil
}

// Delete removes a stored session. Deleting the live session
// transitions to StateNoSession and clears the pointer.
func (c *Counter) Delete(ctx context.Context, sessionID string) error {
	if err := c.vault.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	c.mu.Lock()
	if c.session != nil && c.session.ID == sessionID {
		c.session = nil
		c.state = StateNoSession
		c.dirty = false
		c.signaled = false
		c.stopFlushTimerLocked()
		c.vault.ClearLastActive(model.KeyLastActiveMantraSession)
	}
	c.mu.Unlock()
	return nil
}

// Flush writes the session out now if dirty. Used at teardown.
func (c *Counter) Flush(ctx context.Context) {
	c.mu.Lock()
	if !c.dirty || c.session == nil {
		c.mu.Unlock()
		return
	}
	c.dirty = false
	c.stopFlushTimerLocked()
	snapshot := cloneSession(*c.session)
	c.mu.Unlock()
	c.persist(ctx, snapshot)
}

// Close stops the flush timer and performs a final flush.
func (c *Counter) Close() {
	c.Flush(context.Background())
}

// markDirtyLocked schedules a debounced flush. Caller holds c.mu.
func (c *Counter) markDirtyLocked() {
	c.dirty = true
	if c.debounce <= 0 {
		// Immediate mode: snapshot here, write after unlock via timer
		// with zero delay to stay off the critical path.
		if c.flushTimer == nil {
			c.flushTimer = time.AfterFunc(0, c.flushTimerFired)
		}
		return
	}
	if c.flushTimer == nil {
		c.flushTimer = time.AfterFunc(c.debounce, c.flushTimerFired)
	}
}

func (c *Counter) stopFlushTimerLocked() {
	if c.flushTimer != nil {
		c.flushTimer.Stop()
		c.flushTimer = nil
	}
}

func (c *Counter) flushTimerFired() {
	c.mu.Lock()
	c.flushTimer = nil
	if !c.dirty || c.session == nil {
		c.mu.Unlock()
		return
	}
	c.dirty = false
	snapshot := cloneSession(*c.session)
	c.mu.Unlock()
	c.persist(context.Background(), snapshot)
}

// persist writes a session snapshot. Failures are reported and
// logged; in-memory state stays authoritative.
func (c *Counter) persist(ctx context.Context, s model.MantraSession) {
	if err := c.vault.SaveSession(ctx, s); err != nil {
		c.logger.Warn("session save failed", "session", s.ID, "error", err)
		if c.onError != nil {
			c.onError(err)
		}
	}
}

func cloneSession(s model.MantraSession) model.MantraSession {
	s.Log = append([]model.SessionLogEntry(nil), s.Log...)
	return s
}
