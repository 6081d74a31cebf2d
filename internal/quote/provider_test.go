package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderFetchQuote(t *testing.T) {
	t.Run("parses a well-formed quote", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
			assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
			assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

			fmt.Fprint(w, `{"Global Quote": {
				"01. symbol": "AAPL",
				"05. price": "189.4300",
				"10. change percent": "-1.2345%"
			}}`)
		}))
		defer server.Close()

		p := NewProvider("test-key", server.URL, time.Second)
		q, err := p.FetchQuote(context.Background(), "AAPL")
		require.NoError(t, err)

		assert.Equal(t, "AAPL", q.Symbol)
		assert.True(t, decimal.RequireFromString("189.43").Equal(q.Price))
		assert.True(t, decimal.RequireFromString("-1.2345").Equal(q.ChangePercent))
		assert.False(t, q.Timestamp.IsZero())
		assert.False(t, q.Stale)
	})

	t.Run("missing price fields return ErrNoQuote", func(t *testing.T) {
		// Unknown symbol and exhausted quota both come back as an empty
		// Global Quote object
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Global Quote": {}}`)
		}))
		defer server.Close()

		p := NewProvider("test-key", server.URL, time.Second)
		_, err := p.FetchQuote(context.Background(), "NOPE")
		assert.ErrorIs(t, err, ErrNoQuote)
	})

	t.Run("unparseable price returns ErrNoQuote", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Global Quote": {"05. price": "not-a-number"}}`)
		}))
		defer server.Close()

		p := NewProvider("test-key", server.URL, time.Second)
		_, err := p.FetchQuote(context.Background(), "BAD")
		assert.ErrorIs(t, err, ErrNoQuote)
	})

	t.Run("server error is not ErrNoQuote", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		p := NewProvider("test-key", server.URL, time.Second)
		_, err := p.FetchQuote(context.Background(), "AAPL")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoQuote)
	})

	t.Run("timeout is not ErrNoQuote", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		p := NewProvider("test-key", server.URL, 50*time.Millisecond)
		_, err := p.FetchQuote(context.Background(), "SLOW")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoQuote)
	})

	t.Run("missing API key fails without a request", func(t *testing.T) {
		p := NewProvider("", "http://localhost:0", time.Second)
		_, err := p.FetchQuote(context.Background(), "AAPL")
		assert.ErrorIs(t, err, ErrNoQuote)
	})

	t.Run("missing change percent defaults to zero", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Global Quote": {"05. price": "10.00"}}`)
		}))
		defer server.Close()

		p := NewProvider("test-key", server.URL, time.Second)
		q, err := p.FetchQuote(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.True(t, q.ChangePercent.IsZero())
	})
}
