package quote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/internal/models"
)

type fakeFetcher struct {
	quote *models.Quote
	err   error

	FetchCalls int
}

func (f *fakeFetcher) FetchQuote(_ context.Context, symbol string) (*models.Quote, error) {
	f.FetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	q := *f.quote
	q.Symbol = symbol
	return &q, nil
}

type fakeFallback struct {
	stored map[string]*models.Quote

	UpsertCalls int
	GetCalls    int
}

func newFakeFallback() *fakeFallback {
	return &fakeFallback{stored: make(map[string]*models.Quote)}
}

func (f *fakeFallback) UpsertQuote(q *models.Quote) error {
	f.UpsertCalls++
	stored := *q
	f.stored[q.Symbol] = &stored
	return nil
}

func (f *fakeFallback) GetCachedQuote(symbol string) (*models.Quote, error) {
	f.GetCalls++
	q, ok := f.stored[symbol]
	if !ok {
		return nil, nil
	}
	copied := *q
	return &copied, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func liveQuote(price float64) *models.Quote {
	return &models.Quote{
		Price:         decimal.NewFromFloat(price),
		ChangePercent: decimal.NewFromFloat(0.5),
		Timestamp:     time.Now(),
	}
}

func TestServiceGetPrice(t *testing.T) {
	t.Run("live fetch writes through to durable cache", func(t *testing.T) {
		fetcher := &fakeFetcher{quote: liveQuote(101.50)}
		fallback := newFakeFallback()
		s := NewService(fetcher, NewMemoryCache(DefaultCacheTTL), fallback, discardLogger())

		q, err := s.GetPrice(context.Background(), "AAPL")
		require.NoError(t, err)

		assert.True(t, decimal.NewFromFloat(101.50).Equal(q.Price))
		assert.False(t, q.Stale)
		assert.Equal(t, 1, fallback.UpsertCalls)
	})

	t.Run("fresh cache entry avoids a second fetch", func(t *testing.T) {
		fetcher := &fakeFetcher{quote: liveQuote(101.50)}
		s := NewService(fetcher, NewMemoryCache(DefaultCacheTTL), newFakeFallback(), discardLogger())

		_, err := s.GetPrice(context.Background(), "AAPL")
		require.NoError(t, err)
		_, err = s.GetPrice(context.Background(), "AAPL")
		require.NoError(t, err)

		assert.Equal(t, 1, fetcher.FetchCalls)
	})

	t.Run("transport failure falls back to durable cache as stale", func(t *testing.T) {
		fetcher := &fakeFetcher{err: fmt.Errorf("connection timed out")}
		fallback := newFakeFallback()
		fallback.stored["AAPL"] = &models.Quote{
			Symbol:        "AAPL",
			Price:         decimal.NewFromFloat(99.00),
			ChangePercent: decimal.NewFromFloat(-2.1),
			Timestamp:     time.Now().Add(-time.Hour),
		}
		s := NewService(fetcher, NewMemoryCache(DefaultCacheTTL), fallback, discardLogger())

		q, err := s.GetPrice(context.Background(), "AAPL")
		require.NoError(t, err)

		assert.True(t, q.Stale)
		assert.True(t, decimal.NewFromFloat(99.00).Equal(q.Price))
	})

	t.Run("transport failure without fallback is unavailable", func(t *testing.T) {
		fetcher := &fakeFetcher{err: fmt.Errorf("connection timed out")}
		s := NewService(fetcher, NewMemoryCache(DefaultCacheTTL), newFakeFallback(), discardLogger())

		_, err := s.GetPrice(context.Background(), "AAPL")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("no-quote response does not consult the fallback", func(t *testing.T) {
		fetcher := &fakeFetcher{err: fmt.Errorf("no price data: %w", ErrNoQuote)}
		fallback := newFakeFallback()
		fallback.stored["GONE"] = &models.Quote{
			Symbol: "GONE",
			Price:  decimal.NewFromFloat(10.00),
		}
		s := NewService(fetcher, NewMemoryCache(DefaultCacheTTL), fallback, discardLogger())

		_, err := s.GetPrice(context.Background(), "GONE")
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Zero(t, fallback.GetCalls)
	})
}
