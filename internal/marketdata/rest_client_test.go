package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a test server and a RestClient pointed at it.
func setupTestServer(handler http.Handler) (*RestClient, *httptest.Server) {
	server := httptest.NewServer(handler)

	rc := &RestClient{
		client:  resty.New().SetBaseURL(server.URL),
		apiKey:  "test_api_key",
		logger:  zap.NewNop(), // no-op logger for tests
		limiter: rate.NewLimiter(rate.Inf, 1),
	}

	return rc, server
}

func TestGetHistoricalData(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		// Deliberately out of order: the client must sort ascending.
		mockResponse := `{"symbol":"AAPL","candles":[
			{"date":"2024-01-03","open":101,"high":103,"low":100,"close":102,"volume":1200},
			{"date":"2024-01-02","open":100,"high":102,"low":99,"close":101,"volume":1000}
		]}`

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/history", r.URL.Path)
			assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
			assert.Equal(t, "1d", r.URL.Query().Get("interval"))
			assert.Equal(t, "2024-01-01", r.URL.Query().Get("from"))
			assert.Equal(t, "test_api_key", r.Header.Get("X-API-KEY"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(mockResponse))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		points, err := rc.GetHistoricalData(context.Background(), "AAPL", "1d", from, to)

		assert.NoError(t, err)
		assert.Len(t, points, 2)
		assert.Equal(t, 101.0, points[0].Close)
		assert.Equal(t, 102.0, points[1].Close)
		assert.True(t, points[0].Date.Before(points[1].Date))
	})

	t.Run("EmptyHistoryIsDistinguishable", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"symbol":"AAPL","candles":[]}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		points, err := rc.GetHistoricalData(context.Background(), "AAPL", "1d", from, to)

		assert.Nil(t, points)
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("ClientErrorIsNotRetried", func(t *testing.T) {
		var calls int
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"unknown symbol"}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		_, err := rc.GetHistoricalData(context.Background(), "NOPE", "1d", from, to)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "request failed with status")
		assert.Equal(t, 1, calls)
	})
}

func TestGetQuotes(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockResponse := `[
			{"symbol":"AAPL","price":187.5,"volume":100000,"timestamp":1718000000},
			{"symbol":"MSFT","price":420.25,"volume":80000,"timestamp":1718000000}
		]`

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/quotes", r.URL.Path)
			assert.Equal(t, "AAPL,MSFT", r.URL.Query().Get("symbols"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(mockResponse))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		quotes, err := rc.GetQuotes(context.Background(), []string{"AAPL", "MSFT"})

		assert.NoError(t, err)
		assert.Len(t, quotes, 2)
		assert.Equal(t, 187.5, quotes["AAPL"].Price)
		assert.Equal(t, 420.25, quotes["MSFT"].Price)
	})
}
