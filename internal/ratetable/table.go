package ratetable

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrRowOutOfRange is returned when an amount edit targets a row that is not
// currently rendered.
var ErrRowOutOfRange = errors.New("row index out of range")

const (
	defaultEmptyMessage = "No rates available"
	loadingMessage      = "Loading..."
)

// FetchToken identifies one fetch started with BeginFetch.
type FetchToken uint64

type entry struct {
	key    string
	record RateRecord
}

// Table owns the state of one rate table: the fetched records, the user's
// per-row amounts and the active search query.
//
// A Table is not safe for concurrent use; callers serialize access.
type Table struct {
	id           TableID
	emptyMessage string
	renderer     Renderer
	newKey       func() string

	entries []entry
	visible []int // indexes into entries, in render order
	rows    *RowStore
	query   string

	state    State
	failure  string
	fetchSeq FetchToken
	pending  bool
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithRenderer sets the renderer receiving full renders and row patches.
func WithRenderer(r Renderer) TableOption {
	return func(t *Table) {
		if r != nil {
			t.renderer = r
		}
	}
}

// WithEmptyMessage sets the text shown when there are no rows.
func WithEmptyMessage(msg string) TableOption {
	return func(t *Table) { t.emptyMessage = msg }
}

// WithKeyFunc overrides how record keys are generated.
func WithKeyFunc(fn func() string) TableOption {
	return func(t *Table) {
		if fn != nil {
			t.newKey = fn
		}
	}
}

// NewTable creates an empty table.
func NewTable(id TableID, opts ...TableOption) *Table {
	t := &Table{
		id:           id,
		emptyMessage: defaultEmptyMessage,
		renderer:     nopRenderer{},
		newKey:       uuid.NewString,
		rows:         NewRowStore(),
		state:        StateEmpty,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the table identifier.
func (t *Table) ID() TableID { return t.id }

// State returns the current lifecycle state.
func (t *Table) State() State { return t.state }

// Query returns the normalized search query.
func (t *Table) Query() string { return t.query }

// Len returns the number of backing records, ignoring the filter.
func (t *Table) Len() int { return len(t.entries) }

// Records returns a copy of the backing records in their original order.
func (t *Table) Records() []RateRecord {
	out := make([]RateRecord, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.record
	}
	return out
}

// Input returns the raw input stored for a record key.
func (t *Table) Input(key string) RawInput {
	return t.rows.Get(key)
}

// SetRecords replaces the backing records. Row input and the search query are
// discarded and the whole table is rendered again.
func (t *Table) SetRecords(records []RateRecord) {
	t.entries = make([]entry, len(records))
	for i, rec := range records {
		t.entries[i] = entry{key: t.newKey(), record: rec}
	}
	t.rows.Clear()
	t.query = ""
	t.failure = ""
	if len(t.entries) == 0 {
		t.state = StateEmpty
	} else {
		t.state = StateLoaded
	}
	t.refilter()
	t.renderer.RenderTable(t.View())
}

// SetSearchQuery filters the table to records whose source or target code
// contains the query, ignoring case. An empty query shows every record in its
// original order. Row input is left untouched.
func (t *Table) SetSearchQuery(query string) {
	t.query = strings.ToUpper(strings.TrimSpace(query))
	switch t.state {
	case StateLoaded, StateFiltered:
		if t.query == "" {
			t.state = StateLoaded
		} else {
			t.state = StateFiltered
		}
	}
	t.refilter()
	t.renderer.RenderTable(t.View())
}

func (t *Table) refilter() {
	t.visible = t.visible[:0]
	for i, e := range t.entries {
		if t.query == "" || matches(e.record, t.query) {
			t.visible = append(t.visible, i)
		}
	}
}

func matches(rec RateRecord, query string) bool {
	return strings.Contains(strings.ToUpper(rec.FromCurrency), query) ||
		strings.Contains(strings.ToUpper(rec.ToCurrency), query)
}

// showsRows reports whether rows are painted, as opposed to a loading or
// error marker.
func (t *Table) showsRows() bool {
	return t.state != StateLoading && t.state != StateFailed
}

func (t *Table) entryAt(rowIndex int) (entry, error) {
	if !t.showsRows() || rowIndex < 0 || rowIndex >= len(t.visible) {
		return entry{}, fmt.Errorf("%w: %d", ErrRowOutOfRange, rowIndex)
	}
	return t.entries[t.visible[rowIndex]], nil
}

// OnAmountInput records what the user typed into a row and returns the
// recomputed row. Only that row is re-rendered. An empty string clears the row.
func (t *Table) OnAmountInput(rowIndex int, raw string) (RowView, error) {
	e, err := t.entryAt(rowIndex)
	if err != nil {
		return RowView{}, err
	}
	in := Typed(raw)
	if raw == "" {
		in = Unset
	}
	t.rows.Set(e.key, in)

	row := BuildRow(e.record, e.key, rowIndex, in)
	t.renderer.PatchRow(t.id, row)
	return row, nil
}

// RenderModelFor derives the row currently rendered at rowIndex.
func (t *Table) RenderModelFor(rowIndex int) (RowView, error) {
	e, err := t.entryAt(rowIndex)
	if err != nil {
		return RowView{}, err
	}
	return BuildRow(e.record, e.key, rowIndex, t.rows.Get(e.key)), nil
}

// BuildRow combines a record with the user's input for it.
func BuildRow(rec RateRecord, key string, rowIndex int, in RawInput) RowView {
	converted := Placeholder(rec.ToCurrency)
	if !in.Blank() {
		amount := ToNum(in.Text()).Mul(rec.ExchangeRate)
		converted = Format(decimal.NewNullDecimal(amount), rec.ToCurrency)
	}
	rawRate := rec.RawRate
	if rawRate == "" {
		rawRate = "-"
	}
	return RowView{
		Index:            rowIndex,
		Key:              key,
		Date:             SafeDate(rec.Date),
		FromCurrency:     rec.FromCurrency,
		ToCurrency:       rec.ToCurrency,
		InputValue:       in.Text(),
		ConvertedDisplay: converted,
		RawRateDisplay:   rawRate,
	}
}

// View renders the whole table.
func (t *Table) View() TableView {
	v := TableView{Table: t.id, State: t.state, Query: t.query, Rows: []RowView{}}
	switch {
	case t.state == StateLoading:
		v.Marker, v.Message = MarkerLoading, loadingMessage
	case t.state == StateFailed:
		v.Marker, v.Message = MarkerError, "Error: "+t.failure
	case len(t.visible) == 0:
		v.Marker, v.Message = MarkerNoData, t.emptyMessage
	default:
		v.Rows = make([]RowView, len(t.visible))
		for i, idx := range t.visible {
			e := t.entries[idx]
			v.Rows[i] = BuildRow(e.record, e.key, i, t.rows.Get(e.key))
		}
	}
	return v
}

// BeginFetch marks the table as loading and returns a token for the fetch.
// Only the most recently issued token may complete or fail the fetch.
func (t *Table) BeginFetch() FetchToken {
	t.fetchSeq++
	t.pending = true
	t.state = StateLoading
	t.renderer.RenderTable(t.View())
	return t.fetchSeq
}

func (t *Table) settle(token FetchToken) bool {
	if !t.pending || token != t.fetchSeq {
		return false
	}
	t.pending = false
	return true
}

// CompleteFetch applies fetched records if token belongs to the latest fetch.
// It reports whether the result was applied; stale results are dropped.
func (t *Table) CompleteFetch(token FetchToken, records []RateRecord) bool {
	if !t.settle(token) {
		return false
	}
	t.SetRecords(records)
	return true
}

// FailFetch shows an error marker if token belongs to the latest fetch.
func (t *Table) FailFetch(token FetchToken, message string) bool {
	if !t.settle(token) {
		return false
	}
	t.state = StateFailed
	t.failure = message
	t.renderer.RenderTable(t.View())
	return true
}
