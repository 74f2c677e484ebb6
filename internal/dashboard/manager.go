// Package dashboard hosts server-side rate table sessions.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/apperrors"
	"github.com/SscSPs/fx_rate_dashboard/internal/core/domain"
	"github.com/SscSPs/fx_rate_dashboard/internal/ratetable"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

var errLoaderMissing = errors.New("no loader configured for table")

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = fmt.Errorf("%w: dashboard session", apperrors.ErrNotFound)

// Option configures a Manager.
type Option func(*Manager)

// WithLocation sets the zone that defines "today" for daily loads.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// WithLogger sets the base logger for sessions.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithSessionOptions passes options to every session's coordinator.
func WithSessionOptions(opts ...ratetable.CoordinatorOption) Option {
	return func(m *Manager) {
		m.coordOpts = append(m.coordOpts, opts...)
	}
}

// Manager owns the live sessions. Sessions expire ttl after their last use
// and the least recently used one is evicted once size is reached.
type Manager struct {
	sessions  *expirable.LRU[string, *Session]
	loaders   Loaders
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
	coordOpts []ratetable.CoordinatorOption
}

// NewManager creates a session manager.
func NewManager(loaders Loaders, size int, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{
		loaders: loaders,
		loc:     time.UTC,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sessions = expirable.NewLRU[string, *Session](size, func(id string, s *Session) {
		s.closed.Store(true)
		m.logger.Debug("Dashboard session evicted", slog.String("session_id", id))
	}, ttl)
	return m
}

func (m *Manager) today() time.Time {
	return domain.DateOnly(m.now().In(m.loc))
}

// Create opens a session and loads its daily table for date (zero means today).
func (m *Manager) Create(ctx context.Context, date time.Time) (*Session, error) {
	s := newSession(uuid.NewString(), m.loaders, m.today, m.logger, m.coordOpts...)
	m.sessions.Add(s.ID(), s)
	if _, err := s.Reload(ctx, ratetable.Daily, date); err != nil {
		return nil, err
	}
	m.logger.Info("Dashboard session created", slog.String("session_id", s.ID()))
	return s, nil
}

// Get returns a live session and extends its lifetime.
func (m *Manager) Get(id string) (*Session, error) {
	s, ok := m.sessions.Get(id)
	if !ok || s.closed.Load() {
		return nil, ErrSessionNotFound
	}
	m.sessions.Add(id, s)
	// a Delete or eviction that ran between Get and Add must not be undone
	if s.closed.Load() {
		m.sessions.Remove(id)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete closes a session. It reports whether the session existed.
// Removal runs the eviction callback, which marks the session closed.
func (m *Manager) Delete(id string) bool {
	return m.sessions.Remove(id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	return m.sessions.Len()
}
