package marketdata_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alejandrodnm/ahrbot/internal/adapters/marketdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCurrentPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/simple/price", r.URL.Path)
		w.Write([]byte(`{"bitcoin":{"usd":67421.55}}`))
	}))
	defer srv.Close()

	c := marketdata.NewClient(srv.URL)
	price, err := c.FetchCurrentPrice(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 67421.55, price, 1e-9)
}

func TestFetchCurrentPrice_ZeroPriceRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin":{"usd":0}}`))
	}))
	defer srv.Close()

	_, err := marketdata.NewClient(srv.URL).FetchCurrentPrice(context.Background())
	assert.Error(t, err)
}

func TestFetchDailyHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		w.Write([]byte(`{"prices":[[1704067200000,42000.5],[1704153600000,43100.0]]}`))
	}))
	defer srv.Close()

	c := marketdata.NewClient(srv.URL)
	series, err := c.FetchDailyHistory(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.InDelta(t, 42000.5, series[0].Price, 1e-9)
	assert.True(t, series[0].Date.Before(series[1].Date))
	assert.Equal(t, 2024, series[0].Date.Year())
}

func TestFetchDailyHistory_ClientErrorDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := marketdata.NewClient(srv.URL).FetchDailyHistory(context.Background(), 200)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "4xx must not be retried")
}
