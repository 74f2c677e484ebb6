package ratetable_test

import (
	"fmt"
	"testing"

	"github.com/SscSPs/fx_rate_dashboard/internal/ratetable"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct {
	tables  []ratetable.TableView
	patches []ratetable.RowView
}

func (r *recordingRenderer) RenderTable(v ratetable.TableView) { r.tables = append(r.tables, v) }
func (r *recordingRenderer) PatchRow(_ ratetable.TableID, row ratetable.RowView) {
	r.patches = append(r.patches, row)
}

func (r *recordingRenderer) lastTable() ratetable.TableView { return r.tables[len(r.tables)-1] }

func sequentialKeys() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("k%d", n)
	}
}

func rec(from, to, rate, date string) ratetable.RateRecord {
	return ratetable.RateRecord{
		FromCurrency: from,
		ToCurrency:   to,
		ExchangeRate: decimal.RequireFromString(rate),
		RawRate:      rate,
		Date:         date,
	}
}

func newTestTable() (*ratetable.Table, *recordingRenderer) {
	r := &recordingRenderer{}
	return ratetable.NewTable(ratetable.Daily,
		ratetable.WithRenderer(r),
		ratetable.WithKeyFunc(sequentialKeys()),
	), r
}

func TestTable_InitialStateShowsNoData(t *testing.T) {
	tbl, _ := newTestTable()

	v := tbl.View()
	assert.Equal(t, ratetable.StateEmpty, v.State)
	assert.Equal(t, ratetable.MarkerNoData, v.Marker)
	assert.Equal(t, "No rates available", v.Message)
	assert.Empty(t, v.Rows)
}

func TestTable_SetRecordsEmptyShowsNoDataMarker(t *testing.T) {
	tbl, r := newTestTable()
	tbl.SetRecords(nil)

	require.Len(t, r.tables, 1)
	assert.Equal(t, ratetable.MarkerNoData, r.lastTable().Marker)
	assert.Equal(t, "No rates available", r.lastTable().Message)
}

func TestTable_SetRecordsRendersAllRows(t *testing.T) {
	tbl, r := newTestTable()
	tbl.SetRecords([]ratetable.RateRecord{
		rec("USD", "INR", "83.12", "2024-05-01"),
		rec("USD", "EUR", "0.92", "2024-05-01T06:40:00Z"),
	})

	require.Len(t, r.tables, 1)
	want := []ratetable.RowView{
		{Index: 0, Key: "k1", Date: "2024-05-01", FromCurrency: "USD", ToCurrency: "INR", ConvertedDisplay: "INR ₹", RawRateDisplay: "83.12"},
		{Index: 1, Key: "k2", Date: "2024-05-01", FromCurrency: "USD", ToCurrency: "EUR", ConvertedDisplay: "EUR €", RawRateDisplay: "0.92"},
	}
	if diff := cmp.Diff(want, r.lastTable().Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, ratetable.StateLoaded, tbl.State())
}

func TestTable_OnAmountInputConverts(t *testing.T) {
	tbl, r := newTestTable()
	tbl.SetRecords([]ratetable.RateRecord{rec("USD", "INR", "83.12", "2024-05-01")})

	row, err := tbl.OnAmountInput(0, "10")
	require.NoError(t, err)
	assert.Equal(t, "₹831.2000", row.ConvertedDisplay)
	assert.Equal(t, "10", row.InputValue)

	require.Len(t, r.patches, 1, "amount edits emit a single-row patch")
	assert.Len(t, r.tables, 1, "amount edits do not re-render the table")
	assert.Equal(t, row, r.patches[0])
}

func TestTable_OnAmountInputClearedShowsPlaceholder(t *testing.T) {
	tbl, _ := newTestTable()
	tbl.SetRecords([]ratetable.RateRecord{rec("USD", "INR", "83.12", "2024-05-01")})

	_, err := tbl.OnAmountInput(0, "10")
	require.NoError(t, err)
	row, err := tbl.OnAmountInput(0, "")
	require.NoError(t, err)

	assert.Equal(t, "INR ₹", row.ConvertedDisplay)
	assert.False(t, tbl.Input(row.Key).IsSet())
}

func TestTable_SARSuffix(t *testing.T) {
	tbl, _ := newTestTable()
	tbl.SetRecords([]ratetable.RateRecord{rec("USD", "SAR", "3.75", "")})

	row, err := tbl.OnAmountInput(0, "100")
	require.NoError(t, err)
	assert.Equal(t, "375.0000 ﷼", row.ConvertedDisplay)
	assert.Equal(t, "-", row.Date)
}

func TestTable_InvalidInputCoercesToZero(t *testing.T) {
	tbl, _ := newTestTable()
	tbl.SetRecords([]ratetable.RateRecord{rec("USD", "EUR", "0.92", "2024-05-01")})

	row, err := tbl.OnAmountInput(0, "1e")
	require.NoError(t, err)
	assert.Equal(t, "€0.0000", row.ConvertedDisplay)
	assert.Equal(t, "1e", row.InputValue, "raw text is kept as typed")
}

func TestTable_OutOfRangeInputCoercesToZero(t *testing.T) {
	tbl, _ := newTestTable()
	tbl.SetRecords([]ratetable.RateRecord{rec("USD", "INR", "83.12", "2024-05-01")})

	for _, in := range []string{"1e400", "1e100000000", "-1e999999999"} {
		row, err := tbl.OnAmountInput(0, in)
		require.NoError(t, err)
		assert.Equal(t, "₹0.0000", row.ConvertedDisplay, "input %q", in)
		assert.Equal(t, in, row.InputValue)
	}
}

func TestTable_MalformedRateStillRenders(t *testing.T) {
	tbl, _ := newTestTable()
	tbl.SetRecords([]ratetable.RateRecord{{FromCurrency: "USD", ToCurrency: "AED"}})

	row, err := tbl.OnAmountInput(0, "50")
	require.NoError(t, err)
	assert.Equal(t, "د.إ 0.0000", row.ConvertedDisplay)
	assert.Equal(t, "-", row.RawRateDisplay)
}

func TestTable_OnAmountInputOutOfRange(t *testing.T) {
	tbl, r := newTestTable()
	tbl.SetRecords([]ratetable.RateRecord{rec("USD", "INR", "83.12", "2024-05-01")})

	for _, idx := range []int{-1, 1, 5} {
		_, err := tbl.OnAmountInput(idx, "1")
		assert.ErrorIs(t, err, ratetable.ErrRowOutOfRange)
	}
	assert.Empty(t, r.patches)
}

func TestTable_SearchFiltersByEitherCode(t *testing.T) {
	tbl, _ := newTestTable()
	tbl.SetRecords([]ratetable.RateRecord{
		rec("USD", "EUR", "0.92", "2024-05-01"),
		rec("USD", "INR", "83.12", "2024-05-01"),
	})

	tbl.SetSearchQuery("EUR")
	v := tbl.View()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "EUR", v.Rows[0].ToCurrency)
	assert.Equal(t, ratetable.StateFiltered, v.State)

	tbl.SetSearchQuery(" usd ")
	assert.Len(t, tbl.View().Rows, 2, "query is trimmed and case-insensitive")
	assert.Equal(t, "USD", tbl.Query())
}

func TestTable_SearchIsIdempotentAndReversible(t *testing.T) {
	tbl, _ := newTestTable()
	tbl.SetRecords([]ratetable.RateRecord{
		rec("USD", "EUR", "0.92", "d"),
		rec("USD", "INR", "83.12", "d"),
		rec("EUR", "AED", "4.0", "d"),
	})
	original := tbl.View().Rows

	tbl.SetSearchQuery("eur")
	once := tbl.View().Rows
	tbl.SetSearchQuery("eur")
	twice := tbl.View().Rows
	assert.Equal(t, once, twice)
	assert.Len(t, once, 2)

	tbl.SetSearchQuery("")
	assert.Equal(t, original, tbl.View().Rows)
	assert.Equal(t, ratetable.StateLoaded, tbl.State())
}

func TestTable_SearchWithNoMatchesShowsNoData(t *testing.T) {
	tbl, _ := newTestTable()
	tbl.SetRecords([]ratetable.RateRecord{rec("USD", "EUR", "0.92", "d")})

	tbl.SetSearchQuery("JPY")
	v := tbl.View()
	assert.Equal(t, ratetable.MarkerNoData, v.Marker)
	assert.Empty(t, v.Rows)
}

func TestTable_AmountsFollowRecordThroughFiltering(t *testing.T) {
	tbl, _ := newTestTable()
	tbl.SetRecords([]ratetable.RateRecord{
		rec("USD", "EUR", "0.92", "d"),
		rec("USD", "INR", "83.12", "d"),
	})

	_, err := tbl.OnAmountInput(1, "10") // INR row
	require.NoError(t, err)

	tbl.SetSearchQuery("INR")
	v := tbl.View()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "₹831.2000", v.Rows[0].ConvertedDisplay, "INR row keeps its amount at its new position")

	// Editing the only visible row while filtered updates the INR record.
	_, err = tbl.OnAmountInput(0, "1")
	require.NoError(t, err)

	tbl.SetSearchQuery("")
	v = tbl.View()
	assert.Equal(t, "EUR €", v.Rows[0].ConvertedDisplay, "EUR row never received input")
	assert.Equal(t, "₹83.1200", v.Rows[1].ConvertedDisplay)
}

func TestTable_SetRecordsClearsInputAndQuery(t *testing.T) {
	tbl, _ := newTestTable()
	records := []ratetable.RateRecord{rec("USD", "INR", "83.12", "d"), rec("USD", "EUR", "0.92", "d")}
	tbl.SetRecords(records)
	_, err := tbl.OnAmountInput(0, "5")
	require.NoError(t, err)
	tbl.SetSearchQuery("EUR")

	tbl.SetRecords(records)
	v := tbl.View()
	assert.Empty(t, v.Query)
	require.Len(t, v.Rows, 2)
	for _, row := range v.Rows {
		assert.Empty(t, row.InputValue)
	}
}

func TestTable_RenderModelFor(t *testing.T) {
	tbl, _ := newTestTable()
	tbl.SetRecords([]ratetable.RateRecord{rec("USD", "AED", "3.6725", "2024-05-01T00:00:00")})
	_, err := tbl.OnAmountInput(0, "2")
	require.NoError(t, err)

	row, err := tbl.RenderModelFor(0)
	require.NoError(t, err)
	assert.Equal(t, "د.إ 7.3450", row.ConvertedDisplay)
	assert.Equal(t, "2024-05-01", row.Date)
	assert.Equal(t, "3.6725", row.RawRateDisplay)

	_, err = tbl.RenderModelFor(3)
	assert.ErrorIs(t, err, ratetable.ErrRowOutOfRange)
}

func TestTable_FetchLifecycle(t *testing.T) {
	tbl, r := newTestTable()

	tok := tbl.BeginFetch()
	assert.Equal(t, ratetable.MarkerLoading, r.lastTable().Marker)
	assert.Equal(t, "Loading...", r.lastTable().Message)

	_, err := tbl.OnAmountInput(0, "1")
	assert.ErrorIs(t, err, ratetable.ErrRowOutOfRange, "no rows are editable while loading")

	applied := tbl.CompleteFetch(tok, []ratetable.RateRecord{rec("USD", "INR", "83.12", "d")})
	assert.True(t, applied)
	assert.Equal(t, ratetable.StateLoaded, tbl.State())
	assert.False(t, tbl.CompleteFetch(tok, nil), "a token settles once")
}

func TestTable_FetchFailureShowsError(t *testing.T) {
	tbl, r := newTestTable()

	tok := tbl.BeginFetch()
	assert.True(t, tbl.FailFetch(tok, "Failed to fetch daily rates (502)"))

	v := r.lastTable()
	assert.Equal(t, ratetable.MarkerError, v.Marker)
	assert.Equal(t, "Error: Failed to fetch daily rates (502)", v.Message)
	assert.Equal(t, ratetable.StateFailed, tbl.State())

	// A later reload recovers.
	tok = tbl.BeginFetch()
	require.True(t, tbl.CompleteFetch(tok, []ratetable.RateRecord{rec("USD", "EUR", "0.92", "d")}))
	assert.Len(t, tbl.View().Rows, 1)
}

func TestTable_StaleFetchIsDiscarded(t *testing.T) {
	tbl, _ := newTestTable()

	first := tbl.BeginFetch()
	second := tbl.BeginFetch()

	require.True(t, tbl.CompleteFetch(second, []ratetable.RateRecord{rec("USD", "EUR", "0.92", "new")}))
	assert.False(t, tbl.CompleteFetch(first, []ratetable.RateRecord{rec("USD", "INR", "83.12", "old")}))
	assert.False(t, tbl.FailFetch(first, "late failure"))

	v := tbl.View()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "new", v.Rows[0].Date)
}

func TestTable_StaleFetchDiscardedEvenWhenLatestResolvesLast(t *testing.T) {
	tbl, _ := newTestTable()

	first := tbl.BeginFetch()
	second := tbl.BeginFetch()

	assert.False(t, tbl.CompleteFetch(first, []ratetable.RateRecord{rec("USD", "INR", "83.12", "old")}))
	assert.Equal(t, ratetable.StateLoading, tbl.State(), "still waiting on the latest fetch")

	require.True(t, tbl.CompleteFetch(second, []ratetable.RateRecord{rec("USD", "EUR", "0.92", "new")}))
	assert.Equal(t, "new", tbl.View().Rows[0].Date)
}
