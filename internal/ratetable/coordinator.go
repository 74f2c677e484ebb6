package ratetable

import (
	"errors"
	"fmt"
)

// ErrUnknownTable is returned for a table id the coordinator does not own.
var ErrUnknownTable = errors.New("unknown table")

const userEmptyMessage = "No user-defined rates available"

// Activation describes the outcome of switching tabs.
type Activation struct {
	Table    TableID `json:"table"`
	Previous TableID `json:"previous"`
	Changed  bool    `json:"changed"`
	// NeedsFetch is set when the activated table has never been loaded or was
	// marked stale. The coordinator never fetches; the caller does.
	NeedsFetch bool `json:"needsFetch"`
}

// Coordinator runs the daily and user-defined tables side by side. Each table
// keeps its own records, row input and query; switching the visible table
// never touches the hidden one.
type Coordinator struct {
	daily  *Table
	user   *Table
	active TableID
	stale  map[TableID]bool
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*coordinatorConfig)

type coordinatorConfig struct {
	renderer Renderer
	keyFunc  func() string
}

// WithTableRenderer sets the renderer shared by both tables.
func WithTableRenderer(r Renderer) CoordinatorOption {
	return func(c *coordinatorConfig) { c.renderer = r }
}

// WithRecordKeys overrides record key generation for both tables.
func WithRecordKeys(fn func() string) CoordinatorOption {
	return func(c *coordinatorConfig) { c.keyFunc = fn }
}

// NewCoordinator creates both tables empty with the daily table active. The
// daily table is expected to be loaded by the caller right away; the
// user-defined table reports NeedsFetch on its first activation.
func NewCoordinator(opts ...CoordinatorOption) *Coordinator {
	var cfg coordinatorConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Coordinator{
		daily: NewTable(Daily,
			WithRenderer(cfg.renderer),
			WithKeyFunc(cfg.keyFunc),
		),
		user: NewTable(UserDefined,
			WithRenderer(cfg.renderer),
			WithKeyFunc(cfg.keyFunc),
			WithEmptyMessage(userEmptyMessage),
		),
		active: Daily,
		stale:  map[TableID]bool{UserDefined: true},
	}
}

// Daily returns the daily table.
func (c *Coordinator) Daily() *Table { return c.daily }

// User returns the user-defined table.
func (c *Coordinator) User() *Table { return c.user }

// Active returns the id of the visible table.
func (c *Coordinator) Active() TableID { return c.active }

// Table looks up a table by id.
func (c *Coordinator) Table(id TableID) (*Table, error) {
	switch id {
	case Daily:
		return c.daily, nil
	case UserDefined:
		return c.user, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, id)
	}
}

// Activate makes id the visible table. A stale or failed table is reported
// through NeedsFetch; the stale flag is cleared afterwards.
func (c *Coordinator) Activate(id TableID) (Activation, error) {
	t, err := c.Table(id)
	if err != nil {
		return Activation{}, err
	}
	// a failed table is retried on every activation until a fetch succeeds
	act := Activation{
		Table:      id,
		Previous:   c.active,
		Changed:    c.active != id,
		NeedsFetch: c.stale[id] || t.State() == StateFailed,
	}
	c.active = id
	delete(c.stale, id)
	return act, nil
}

// MarkStale asks for a refetch the next time id is activated.
func (c *Coordinator) MarkStale(id TableID) error {
	if _, err := c.Table(id); err != nil {
		return err
	}
	c.stale[id] = true
	return nil
}

// Views renders both tables.
func (c *Coordinator) Views() map[TableID]TableView {
	return map[TableID]TableView{
		Daily:       c.daily.View(),
		UserDefined: c.user.View(),
	}
}
