package ratetable

// TableID names one of the dashboard tables.
type TableID string

const (
	// Daily holds the day-wise rates read from the rate store.
	Daily TableID = "daily"
	// UserDefined holds rates proxied from the user-defined upstream.
	UserDefined TableID = "user"
)

// State is the lifecycle state of a table.
type State string

const (
	StateEmpty    State = "empty"
	StateLoading  State = "loading"
	StateLoaded   State = "loaded"
	StateFiltered State = "filtered"
	StateFailed   State = "failed"
)

// Marker replaces the table body when there are no rows to paint.
type Marker string

const (
	MarkerNone    Marker = ""
	MarkerLoading Marker = "loading"
	MarkerNoData  Marker = "no_data"
	MarkerError   Marker = "error"
)

// RowView is the display-ready form of one row. All fields are strings so
// the painter never needs to format anything itself.
type RowView struct {
	Index            int    `json:"index"`
	Key              string `json:"key"`
	Date             string `json:"date"`
	FromCurrency     string `json:"fromCurrency"`
	ToCurrency       string `json:"toCurrency"`
	InputValue       string `json:"inputValue"`
	ConvertedDisplay string `json:"convertedDisplay"`
	RawRateDisplay   string `json:"rawRateDisplay"`
}

// TableView is a full render of a table. When Marker is set, Rows is empty and
// Message holds the text to show in place of the rows.
type TableView struct {
	Table   TableID   `json:"table"`
	State   State     `json:"state"`
	Marker  Marker    `json:"marker,omitempty"`
	Message string    `json:"message,omitempty"`
	Query   string    `json:"query"`
	Rows    []RowView `json:"rows"`
}

// Renderer paints table output. RenderTable receives full re-renders;
// PatchRow receives single-row updates produced by amount edits.
type Renderer interface {
	RenderTable(view TableView)
	PatchRow(table TableID, row RowView)
}

type nopRenderer struct{}

func (nopRenderer) RenderTable(TableView) {}
func (nopRenderer) PatchRow(TableID, RowView) {}

// RendererFuncs adapts plain functions to a Renderer. Nil fields are skipped.
type RendererFuncs struct {
	Table func(view TableView)
	Row   func(table TableID, row RowView)
}

func (f RendererFuncs) RenderTable(view TableView) {
	if f.Table != nil {
		f.Table(view)
	}
}

func (f RendererFuncs) PatchRow(table TableID, row RowView) {
	if f.Row != nil {
		f.Row(table, row)
	}
}
