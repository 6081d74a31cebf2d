package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/internal/models"
)

func TestWatchesRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	createTestUser := func(t *testing.T, email string, withContact bool) *models.User {
		t.Helper()
		user := &models.User{Email: email}
		require.NoError(t, testDB.CreateUser(user))
		if withContact {
			require.NoError(t, testDB.UpdateContact(user.ID, "5551234567", "verizon", "", true, true))
		}
		return user
	}

	newWatch := func(userID, symbol string, threshold float64, direction string) *models.Watch {
		return &models.Watch{
			UserID:    userID,
			Symbol:    symbol,
			Threshold: decimal.NewFromFloat(threshold),
			Direction: direction,
		}
	}

	t.Run("CreateWatch normalizes symbol to uppercase", func(t *testing.T) {
		testDB.TruncateAll(t)
		user := createTestUser(t, "a@example.com", true)

		watch := newWatch(user.ID, "aapl", 150, models.DirectionBelow)
		require.NoError(t, testDB.CreateWatch(watch))

		assert.Equal(t, "AAPL", watch.Symbol)
		assert.True(t, watch.IsActive)
		assert.NotEmpty(t, watch.ID)
	})

	t.Run("second active watch on same symbol is rejected", func(t *testing.T) {
		testDB.TruncateAll(t)
		user := createTestUser(t, "a@example.com", true)

		require.NoError(t, testDB.CreateWatch(newWatch(user.ID, "AAPL", 150, models.DirectionBelow)))
		err := testDB.CreateWatch(newWatch(user.ID, "AAPL", 200, models.DirectionAbove))
		assert.ErrorIs(t, err, ErrDuplicateWatch)
	})

	t.Run("deactivated watch frees the symbol for a new one", func(t *testing.T) {
		testDB.TruncateAll(t)
		user := createTestUser(t, "a@example.com", true)

		first := newWatch(user.ID, "AAPL", 150, models.DirectionBelow)
		require.NoError(t, testDB.CreateWatch(first))
		require.NoError(t, testDB.DeactivateWatch(user.ID, first.ID))

		require.NoError(t, testDB.CreateWatch(newWatch(user.ID, "AAPL", 160, models.DirectionBelow)))

		// The old row still exists for history references
		old, err := testDB.GetWatch(first.ID)
		require.NoError(t, err)
		assert.False(t, old.IsActive)
	})

	t.Run("UpdateWatch is scoped to the owning user", func(t *testing.T) {
		testDB.TruncateAll(t)
		owner := createTestUser(t, "owner@example.com", true)
		other := createTestUser(t, "other@example.com", true)

		watch := newWatch(owner.ID, "AAPL", 150, models.DirectionBelow)
		require.NoError(t, testDB.CreateWatch(watch))

		err := testDB.UpdateWatch(other.ID, watch.ID, "hijack", decimal.NewFromInt(1), models.DirectionAbove)
		assert.Error(t, err)

		err = testDB.UpdateWatch(owner.ID, watch.ID, "Apple", decimal.NewFromFloat(175.50), models.DirectionAbove)
		require.NoError(t, err)

		updated, err := testDB.GetWatch(watch.ID)
		require.NoError(t, err)
		assert.Equal(t, "Apple", updated.Name)
		assert.Equal(t, models.DirectionAbove, updated.Direction)
		assert.True(t, decimal.NewFromFloat(175.50).Equal(updated.Threshold))
	})

	t.Run("ListUserWatches joins the cached quote", func(t *testing.T) {
		testDB.TruncateAll(t)
		user := createTestUser(t, "a@example.com", true)

		require.NoError(t, testDB.CreateWatch(newWatch(user.ID, "AAPL", 150, models.DirectionBelow)))
		require.NoError(t, testDB.UpsertQuote(&models.Quote{
			Symbol:        "AAPL",
			Price:         decimal.NewFromFloat(189.43),
			ChangePercent: decimal.NewFromFloat(-1.2),
			Timestamp:     time.Now(),
		}))
		require.NoError(t, testDB.CreateWatch(newWatch(user.ID, "NOQUOTE", 10, models.DirectionAbove)))

		watches, err := testDB.ListUserWatches(user.ID)
		require.NoError(t, err)
		require.Len(t, watches, 2)

		bySymbol := map[string]*models.WatchWithQuote{}
		for _, w := range watches {
			bySymbol[w.Symbol] = w
		}
		require.NotNil(t, bySymbol["AAPL"].CurrentPrice)
		assert.True(t, decimal.NewFromFloat(189.43).Equal(*bySymbol["AAPL"].CurrentPrice))
		assert.Nil(t, bySymbol["NOQUOTE"].CurrentPrice)
	})

	t.Run("ListActiveWatchesWithContact excludes users without a destination", func(t *testing.T) {
		testDB.TruncateAll(t)
		withContact := createTestUser(t, "with@example.com", true)
		noContact := createTestUser(t, "without@example.com", false)

		require.NoError(t, testDB.CreateWatch(newWatch(withContact.ID, "AAPL", 150, models.DirectionBelow)))
		require.NoError(t, testDB.CreateWatch(newWatch(noContact.ID, "MSFT", 300, models.DirectionAbove)))

		inactive := newWatch(withContact.ID, "TSLA", 200, models.DirectionBelow)
		require.NoError(t, testDB.CreateWatch(inactive))
		require.NoError(t, testDB.DeactivateWatch(withContact.ID, inactive.ID))

		active, err := testDB.ListActiveWatchesWithContact()
		require.NoError(t, err)
		require.Len(t, active, 1)

		assert.Equal(t, "AAPL", active[0].Symbol)
		assert.Equal(t, withContact.ID, active[0].UserID)
		assert.Equal(t, "5551234567", active[0].Destination.PhoneNumber)
		assert.Equal(t, "verizon", active[0].Destination.Carrier)
		assert.Equal(t, "with@example.com", active[0].Destination.Email)
	})

	t.Run("ListActiveWatchesWithContact defaults name to symbol", func(t *testing.T) {
		testDB.TruncateAll(t)
		user := createTestUser(t, "a@example.com", true)

		require.NoError(t, testDB.CreateWatch(newWatch(user.ID, "AAPL", 150, models.DirectionBelow)))

		active, err := testDB.ListActiveWatchesWithContact()
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "AAPL", active[0].Name)
	})

	t.Run("CountActiveWatches ignores deactivated watches", func(t *testing.T) {
		testDB.TruncateAll(t)
		user := createTestUser(t, "a@example.com", true)

		first := newWatch(user.ID, "AAPL", 150, models.DirectionBelow)
		require.NoError(t, testDB.CreateWatch(first))
		require.NoError(t, testDB.CreateWatch(newWatch(user.ID, "MSFT", 300, models.DirectionAbove)))
		require.NoError(t, testDB.DeactivateWatch(user.ID, first.ID))

		count, err := testDB.CountActiveWatches()
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
