// Package usage records how long a codec spends in calls.
//
// A Recorder is attached to a codec as its usage tracker. Each
// in-call period becomes a Session with a unique ID, start and end
// times, and duration. Completed sessions are handed to an optional
// callback and an optional store.
package usage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roomkit/codec-go/pkg/codec"
	"github.com/roomkit/codec-go/pkg/persistence"
)

// Recorder errors.
var (
	ErrAlreadyActive = errors.New("usage session already active")
	ErrNotActive     = errors.New("no active usage session")
)

// Session is one in-call period.
type Session struct {
	ID        string
	DeviceKey string
	Start     time.Time
	End       time.Time
	Duration  time.Duration
}

// Record converts the session to its persisted form.
func (s Session) Record() persistence.SessionRecord {
	return persistence.SessionRecord{
		ID:        s.ID,
		DeviceKey: s.DeviceKey,
		Start:     s.Start,
		End:       s.End,
		Duration:  s.Duration,
	}
}

// SessionStore receives completed sessions.
type SessionStore interface {
	Append(rec persistence.SessionRecord) error
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithStore persists every completed session.
func WithStore(store SessionStore) Option {
	return func(r *Recorder) {
		r.store = store
	}
}

// OnUsageEnded registers a callback invoked with each completed session.
func OnUsageEnded(fn func(Session)) Option {
	return func(r *Recorder) {
		r.onEnded = fn
	}
}

// Recorder tracks usage sessions for a single device.
type Recorder struct {
	deviceKey string
	now       func() time.Time
	logger    *slog.Logger
	store     SessionStore
	onEnded   func(Session)

	mu       sync.Mutex
	active   *Session
	last     Session
	total    time.Duration
	sessions int

	storeErrors int
}

// NewRecorder creates a recorder for deviceKey.
func NewRecorder(deviceKey string, opts ...Option) *Recorder {
	r := &Recorder{
		deviceKey: deviceKey,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("device", deviceKey)
	return r
}

// StartDeviceUsage opens a session.
func (r *Recorder) StartDeviceUsage() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyActive, r.active.ID)
	}

	r.active = &Session{
		ID:        uuid.NewString(),
		DeviceKey: r.deviceKey,
		Start:     r.now(),
	}
	r.logger.Info("usage started", "session_id", r.active.ID)
	return nil
}

// EndDeviceUsage closes the active session and hands it to the store
// and callback. The session is complete once the edge is seen: a store
// failure is logged and counted, not returned.
func (r *Recorder) EndDeviceUsage() error {
	r.mu.Lock()
	if r.active == nil {
		r.mu.Unlock()
		return ErrNotActive
	}

	s := *r.active
	s.End = r.now()
	s.Duration = s.End.Sub(s.Start)
	if s.Duration < 0 {
		s.Duration = 0
	}

	r.active = nil
	r.last = s
	r.total += s.Duration
	r.sessions++
	store, onEnded := r.store, r.onEnded
	r.mu.Unlock()

	r.logger.Info("usage ended", "session_id", s.ID, "duration", s.Duration)

	if store != nil {
		if err := store.Append(s.Record()); err != nil {
			r.mu.Lock()
			r.storeErrors++
			r.mu.Unlock()
			r.logger.Error("persist usage session failed", "session_id", s.ID, "error", err)
		}
	}
	if onEnded != nil {
		onEnded(s)
	}
	return nil
}

// StoreErrors returns how many completed sessions could not be persisted.
func (r *Recorder) StoreErrors() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.storeErrors
}

// Active returns the open session, if any.
func (r *Recorder) Active() (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return Session{}, false
	}
	return *r.active, true
}

// LastSession returns the most recently completed session.
func (r *Recorder) LastSession() (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.sessions > 0
}

// SessionID returns the active session ID, or the last completed one.
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return r.active.ID
	}
	return r.last.ID
}

// LastDuration returns the duration of the last completed session.
func (r *Recorder) LastDuration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last.Duration
}

// Total returns the summed duration and count of completed sessions.
func (r *Recorder) Total() (time.Duration, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total, r.sessions
}

var (
	_ codec.UsageTracker    = (*Recorder)(nil)
	_ codec.SessionReporter = (*Recorder)(nil)
)
