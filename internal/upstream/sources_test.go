package upstream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/core/domain"
	"github.com/SscSPs/fx_rate_dashboard/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var targetDate = time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC)

func TestDailySource_FetchDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":1,"data":[
			{"from_currency":" USD ","to_currency":"INR","exchange_rate":83.12,"date":"2024-05-01"},
			{"from_currency":"USD","to_currency":"EUR","exchange_rate":"0.92"},
			{"from_currency":"","to_currency":"AED","exchange_rate":3.67},
			{"from_currency":"USD","to_currency":"SAR","exchange_rate":null},
			{"from_currency":"USD","to_currency":"GBP"}
		]}`))
	}))
	defer srv.Close()

	rates, err := upstream.NewDailySource(newClient(0), srv.URL).FetchDaily(context.Background(), targetDate)
	require.NoError(t, err)
	require.Len(t, rates, 2)

	assert.Equal(t, "USD", rates[0].FromCurrency)
	assert.Equal(t, "INR", rates[0].ToCurrency)
	assert.Equal(t, "83.12", rates[0].Rate.String())
	assert.Equal(t, domain.SourceDaily, rates[0].Source)
	assert.Equal(t, domain.DateOnly(targetDate), rates[0].RateDate)
	assert.Equal(t, "0.92", rates[1].Rate.String())
}

func TestDailySource_NullData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":0,"data":null,"err":"nothing yet"}`))
	}))
	defer srv.Close()

	rates, err := upstream.NewDailySource(newClient(0), srv.URL).FetchDaily(context.Background(), targetDate)
	require.NoError(t, err)
	assert.Empty(t, rates)
}

func TestDailySource_Errors(t *testing.T) {
	_, err := upstream.NewDailySource(newClient(0), "").FetchDaily(context.Background(), targetDate)
	assert.ErrorIs(t, err, upstream.ErrNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err = upstream.NewDailySource(newClient(0), srv.URL).FetchDaily(context.Background(), targetDate)
	assert.ErrorContains(t, err, "decode daily feed")
}

func TestFallbackSource_FetchLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USD", r.URL.Query().Get("base"))
		assert.Equal(t, "INR,EUR,AED,SAR", r.URL.Query().Get("symbols"))
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"EUR":0.92,"INR":83.1,"SAR":3.75,"JPY":155.2}}`))
	}))
	defer srv.Close()

	rates, err := upstream.NewFallbackSource(newClient(0), srv.URL+"/latest").FetchLatest(context.Background(), targetDate)
	require.NoError(t, err)
	require.Len(t, rates, 3)

	var pairs []string
	for _, r := range rates {
		assert.Equal(t, "USD", r.FromCurrency)
		assert.Equal(t, domain.DateOnly(targetDate), r.RateDate)
		pairs = append(pairs, r.ToCurrency)
	}
	assert.Equal(t, []string{"INR", "EUR", "SAR"}, pairs, "follows the requested symbol order")
}

func TestFallbackSource_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := upstream.NewFallbackSource(newClient(0), srv.URL).FetchLatest(context.Background(), targetDate)
	assert.ErrorIs(t, err, upstream.ErrStatusCode)
}
