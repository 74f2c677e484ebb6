package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/ratetable"
)

// Snapshot is the complete render model of a session.
type Snapshot struct {
	ID     string
	Active ratetable.TableID
	Tables map[ratetable.TableID]ratetable.TableView
}

// Session is one dashboard user's view of both rate tables. All methods are
// safe for concurrent use; loaders run without holding the session lock.
type Session struct {
	id      string
	loaders Loaders
	today   func() time.Time
	logger  *slog.Logger
	closed  atomic.Bool

	mu    sync.Mutex
	coord *ratetable.Coordinator
}

func newSession(id string, loaders Loaders, today func() time.Time, logger *slog.Logger, opts ...ratetable.CoordinatorOption) *Session {
	return &Session{
		id:      id,
		loaders: loaders,
		today:   today,
		logger:  logger.With(slog.String("session_id", id)),
		coord:   ratetable.NewCoordinator(opts...),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot renders both tables.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{ID: s.id, Active: s.coord.Active(), Tables: s.coord.Views()}
}

// View renders one table.
func (s *Session) View(id ratetable.TableID) (ratetable.TableView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.coord.Table(id)
	if err != nil {
		return ratetable.TableView{}, err
	}
	return t.View(), nil
}

// Reload refetches a table. A zero date means today. Fetch failures end up
// in the returned view as an error marker; the error result is reserved for
// unknown tables. When a newer reload of the same table starts while this
// one is in flight, this one's result is discarded.
func (s *Session) Reload(ctx context.Context, id ratetable.TableID, date time.Time) (ratetable.TableView, error) {
	load, err := s.loaders.forTable(id)
	if err != nil {
		return ratetable.TableView{}, err
	}
	if date.IsZero() {
		date = s.today()
	}

	s.mu.Lock()
	t, err := s.coord.Table(id)
	if err != nil {
		s.mu.Unlock()
		return ratetable.TableView{}, err
	}
	token := t.BeginFetch()
	s.mu.Unlock()

	var records []ratetable.RateRecord
	var loadErr error
	if load == nil {
		loadErr = errLoaderMissing
	} else {
		records, loadErr = load(ctx, date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if loadErr != nil {
		if t.FailFetch(token, loadErr.Error()) {
			s.logger.Warn("Table fetch failed",
				slog.String("table", string(id)),
				slog.String("error", loadErr.Error()))
		}
	} else if !t.CompleteFetch(token, records) {
		s.logger.Debug("Discarded superseded fetch", slog.String("table", string(id)))
	}
	return t.View(), nil
}

// Activate switches the visible tab, fetching the table when it has never
// been loaded, was marked stale, or its last fetch failed.
func (s *Session) Activate(ctx context.Context, id ratetable.TableID) (ratetable.Activation, ratetable.TableView, error) {
	s.mu.Lock()
	act, err := s.coord.Activate(id)
	s.mu.Unlock()
	if err != nil {
		return ratetable.Activation{}, ratetable.TableView{}, err
	}

	if act.NeedsFetch {
		view, err := s.Reload(ctx, id, time.Time{})
		return act, view, err
	}
	view, err := s.View(id)
	return act, view, err
}

// MarkStale makes the next activation of id refetch it.
func (s *Session) MarkStale(id ratetable.TableID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coord.MarkStale(id)
}

// Search applies a query to one table.
func (s *Session) Search(id ratetable.TableID, query string) (ratetable.TableView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.coord.Table(id)
	if err != nil {
		return ratetable.TableView{}, err
	}
	t.SetSearchQuery(query)
	return t.View(), nil
}

// Amount records the amount typed into a visible row and returns the
// re-rendered row.
func (s *Session) Amount(id ratetable.TableID, row int, value string) (ratetable.RowView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.coord.Table(id)
	if err != nil {
		return ratetable.RowView{}, err
	}
	return t.OnAmountInput(row, value)
}
