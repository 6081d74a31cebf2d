package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stockwatch/internal/models"
	"stockwatch/internal/notify"
)

// WatchSource loads the monitoring join: active watches whose owner has a
// usable destination
type WatchSource interface {
	ListActiveWatchesWithContact() ([]*models.ActiveWatch, error)
}

// QuoteSource produces the current price for a symbol
type QuoteSource interface {
	GetPrice(ctx context.Context, symbol string) (*models.Quote, error)
}

// Ledger is the durable record of alert attempts, one per watch per day
type Ledger interface {
	HasAlertedToday(watchID string, day time.Time) (bool, error)
	RecordAlert(r *models.AlertRecord) error
}

// EventPublisher publishes alert outcomes for downstream consumers
type EventPublisher interface {
	PublishAlert(ctx context.Context, r *models.AlertRecord) error
}

// Cycle runs one full monitoring pass: load watches, group by symbol, fetch
// each symbol once, evaluate every watch, send and record alerts.
type Cycle struct {
	watches      WatchSource
	quotes       QuoteSource
	ledger       Ledger
	sender       notify.Sender
	events       EventPublisher // optional
	pacer        Pacer
	chartBaseURL string
	sendTimeout  time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// NewCycle creates a monitoring cycle. events may be nil when no event
// stream is configured.
func NewCycle(
	watches WatchSource,
	quotes QuoteSource,
	ledger Ledger,
	sender notify.Sender,
	events EventPublisher,
	pacer Pacer,
	chartBaseURL string,
	sendTimeout time.Duration,
	logger *slog.Logger,
) *Cycle {
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}
	return &Cycle{
		watches:      watches,
		quotes:       quotes,
		ledger:       ledger,
		sender:       sender,
		events:       events,
		pacer:        pacer,
		chartBaseURL: chartBaseURL,
		sendTimeout:  sendTimeout,
		now:          time.Now,
		logger:       logger,
	}
}

// Run executes one monitoring pass. Failures inside a symbol group are
// logged and contained; only a failure to load the watch list aborts the
// cycle.
func (c *Cycle) Run(ctx context.Context) error {
	start := c.now()

	watches, err := c.watches.ListActiveWatchesWithContact()
	if err != nil {
		return fmt.Errorf("failed to load watches: %w", err)
	}

	if len(watches) == 0 {
		c.logger.Info("no watches to monitor")
		return nil
	}

	// A symbol watched by N users costs one provider call, not N.
	groups := make(map[string][]*models.ActiveWatch)
	var symbols []string
	for _, w := range watches {
		if _, seen := groups[w.Symbol]; !seen {
			symbols = append(symbols, w.Symbol)
		}
		groups[w.Symbol] = append(groups[w.Symbol], w)
	}

	c.logger.Info("starting monitoring cycle",
		"watches", len(watches), "symbols", len(symbols))

	for _, symbol := range symbols {
		if err := c.pacer.Wait(ctx); err != nil {
			return fmt.Errorf("cycle interrupted: %w", err)
		}
		c.checkSymbol(ctx, symbol, groups[symbol])
	}

	c.logger.Info("monitoring cycle completed", "duration", c.now().Sub(start))
	return nil
}

// checkSymbol fetches one symbol's quote and evaluates every watch in the
// group against it. An unavailable quote skips the whole group for this
// cycle; the watches stay eligible next cycle.
func (c *Cycle) checkSymbol(ctx context.Context, symbol string, group []*models.ActiveWatch) {
	q, err := c.quotes.GetPrice(ctx, symbol)
	if err != nil {
		c.logger.Warn("skipping symbol group, no price available",
			"symbol", symbol, "watches", len(group), "error", err)
		return
	}

	c.logger.Info("checked symbol", "symbol", symbol,
		"price", q.Price.StringFixed(2), "stale", q.Stale)

	for _, w := range group {
		c.checkWatch(ctx, w, q)
	}
}

// checkWatch evaluates the trigger predicate and daily dedup for one watch,
// then sends and records the alert. The record is written regardless of
// delivery outcome, so a failed send still consumes today's alert slot.
func (c *Cycle) checkWatch(ctx context.Context, w *models.ActiveWatch, q *models.Quote) {
	if !w.Triggered(q.Price) {
		return
	}

	now := c.now()

	alerted, err := c.ledger.HasAlertedToday(w.WatchID, now)
	if err != nil {
		c.logger.Error("failed to check alert history",
			"watch_id", w.WatchID, "symbol", w.Symbol, "error", err)
		return
	}
	if alerted {
		c.logger.Debug("already alerted today",
			"watch_id", w.WatchID, "symbol", w.Symbol)
		return
	}

	subject, body := notify.ComposeAlert(w, q, c.chartBaseURL)

	c.logger.Info("sending alert", "watch_id", w.WatchID,
		"symbol", w.Symbol, "user_id", w.UserID)

	sendCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	sendErr := c.sender.Send(sendCtx, w.Destination, subject, body)
	cancel()

	record := &models.AlertRecord{
		WatchID:          w.WatchID,
		UserID:           w.UserID,
		Symbol:           w.Symbol,
		Price:            q.Price,
		Threshold:        w.Threshold,
		Direction:        w.Direction,
		Message:          body,
		SentSuccessfully: sendErr == nil,
		SentAt:           now,
	}
	if sendErr != nil {
		record.ErrorMessage = sendErr.Error()
		c.logger.Error("alert delivery failed",
			"watch_id", w.WatchID, "symbol", w.Symbol, "error", sendErr)
	}

	// Favor over-alerting over silently losing a triggered condition: a
	// failed write is logged and the watch may alert again next cycle.
	if err := c.ledger.RecordAlert(record); err != nil {
		c.logger.Error("failed to record alert",
			"watch_id", w.WatchID, "symbol", w.Symbol, "error", err)
		return
	}

	if c.events != nil {
		if err := c.events.PublishAlert(ctx, record); err != nil {
			c.logger.Warn("failed to publish alert event",
				"watch_id", w.WatchID, "error", err)
		}
	}
}
