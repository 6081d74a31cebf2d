package quote

import (
	"context"
	"errors"
	"log/slog"

	"stockwatch/internal/models"
)

// ErrUnavailable is returned when no price can be produced for a symbol:
// the live fetch failed and no durable fallback exists.
var ErrUnavailable = errors.New("quote unavailable")

// Fetcher fetches a live quote from the market data provider
type Fetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// FallbackStore is the durable last-known-good quote row per symbol
type FallbackStore interface {
	UpsertQuote(q *models.Quote) error
	GetCachedQuote(symbol string) (*models.Quote, error)
}

// Service is the read-through quote source used by both the monitoring
// cycle and the API: short-lived cache, then live fetch (written through to
// the durable row), then stale fallback.
type Service struct {
	fetcher  Fetcher
	cache    Cache
	fallback FallbackStore
	logger   *slog.Logger
}

// NewService creates a quote service
func NewService(fetcher Fetcher, cache Cache, fallback FallbackStore, logger *slog.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		cache:    cache,
		fallback: fallback,
		logger:   logger,
	}
}

// GetPrice returns the current quote for a symbol. The returned quote is
// marked stale when it was served from the durable fallback after a failed
// live fetch. Returns ErrUnavailable when no price can be produced at all.
func (s *Service) GetPrice(ctx context.Context, symbol string) (*models.Quote, error) {
	if cached, err := s.cache.Get(ctx, symbol); err != nil {
		s.logger.Warn("quote cache read failed", "symbol", symbol, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	q, err := s.fetcher.FetchQuote(ctx, symbol)
	if err == nil {
		if err := s.fallback.UpsertQuote(q); err != nil {
			s.logger.Warn("failed to update durable quote cache", "symbol", symbol, "error", err)
		}
		if err := s.cache.Set(ctx, q); err != nil {
			s.logger.Warn("quote cache write failed", "symbol", symbol, "error", err)
		}
		return q, nil
	}

	// A response without quote fields means the symbol is unknown or the
	// quota is exhausted; serving a stale price would be misleading there.
	// Only transport failures fall back to the durable row.
	if errors.Is(err, ErrNoQuote) {
		s.logger.Warn("provider has no quote", "symbol", symbol, "error", err)
		return nil, ErrUnavailable
	}

	s.logger.Warn("live quote fetch failed, trying durable cache", "symbol", symbol, "error", err)

	cached, cacheErr := s.fallback.GetCachedQuote(symbol)
	if cacheErr != nil {
		s.logger.Error("durable quote cache read failed", "symbol", symbol, "error", cacheErr)
		return nil, ErrUnavailable
	}
	if cached == nil {
		return nil, ErrUnavailable
	}

	cached.Stale = true
	return cached, nil
}
