package quote

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/internal/models"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss returns nil", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)

		q, err := c.Get(ctx, "AAPL")
		require.NoError(t, err)
		assert.Nil(t, q)
	})

	t.Run("set then get within TTL", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)
		require.NoError(t, c.Set(ctx, &models.Quote{
			Symbol: "AAPL",
			Price:  decimal.NewFromFloat(123.45),
		}))

		q, err := c.Get(ctx, "AAPL")
		require.NoError(t, err)
		require.NotNil(t, q)
		assert.True(t, decimal.NewFromFloat(123.45).Equal(q.Price))
	})

	t.Run("entries expire after the TTL", func(t *testing.T) {
		c := NewMemoryCache(5 * time.Minute)
		base := time.Now()
		c.now = func() time.Time { return base }

		require.NoError(t, c.Set(ctx, &models.Quote{Symbol: "AAPL", Price: decimal.NewFromInt(1)}))

		c.now = func() time.Time { return base.Add(5*time.Minute + time.Second) }
		q, err := c.Get(ctx, "AAPL")
		require.NoError(t, err)
		assert.Nil(t, q)
	})

	t.Run("set replaces the previous entry", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)
		require.NoError(t, c.Set(ctx, &models.Quote{Symbol: "AAPL", Price: decimal.NewFromInt(1)}))
		require.NoError(t, c.Set(ctx, &models.Quote{Symbol: "AAPL", Price: decimal.NewFromInt(2)}))

		q, err := c.Get(ctx, "AAPL")
		require.NoError(t, err)
		require.NotNil(t, q)
		assert.True(t, decimal.NewFromInt(2).Equal(q.Price))
	})
}
