package cursor

import (
	"context"
	"fmt"
	"time"

	"news-sentiment-index/internal/interfaces"
	"news-sentiment-index/internal/logger"
	"news-sentiment-index/internal/types"
)

// Cursor tracks acquisition progress month by month and enforces the daily
// request quota. All durable state lives in the ResultStore; the cursor only
// caches it between calls. Months advance strictly chronologically, and a
// month becomes the high-water mark only via MarkComplete.
type Cursor struct {
	store      interfaces.ResultStore
	dailyLimit int
	start      types.Month
	now        func() time.Time

	state  types.AcquisitionState
	loaded bool
}

type Params struct {
	Store      interfaces.ResultStore
	DailyLimit int
	StartMonth types.Month
	Now        func() time.Time // defaults to time.Now
}

func New(p Params) *Cursor {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &Cursor{
		store:      p.Store,
		dailyLimit: p.DailyLimit,
		start:      p.StartMonth,
		now:        now,
	}
}

// Next returns the next month to fetch. It returns types.ErrUpToDate when
// every fully elapsed month up to (but excluding) the current wall-clock
// month has been committed, and types.ErrQuotaExhausted when months remain
// but the daily quota is spent. Up-to-date wins when both apply: a finished
// archive is not quota-blocked. The current month is never fetched: its data
// is still growing and committing it would freeze partial counts.
func (c *Cursor) Next(ctx context.Context) (types.Month, error) {
	if err := c.load(ctx); err != nil {
		return types.Month{}, err
	}
	if err := c.rollQuotaWindow(ctx); err != nil {
		return types.Month{}, err
	}

	next := c.start
	if !c.state.LastCompleted.IsZero() {
		next = c.state.LastCompleted.Next()
	}
	if !next.Before(types.MonthOf(c.now())) {
		return types.Month{}, types.ErrUpToDate
	}

	if c.state.RequestsUsed >= c.dailyLimit {
		return types.Month{}, types.ErrQuotaExhausted
	}
	return next, nil
}

// ConsumeQuota records one successful fetch against the daily quota and
// persists the counter immediately. Failed fetches consume nothing.
func (c *Cursor) ConsumeQuota(ctx context.Context) error {
	if err := c.load(ctx); err != nil {
		return err
	}
	c.state.RequestsUsed++
	if err := c.store.SaveState(ctx, c.state); err != nil {
		c.state.RequestsUsed--
		return fmt.Errorf("persist quota counter: %w", err)
	}
	return nil
}

// MarkComplete advances the persisted high-water mark to month. The caller
// must have committed the month's records to the ResultStore first; on crash
// between commit and advance the month is simply re-fetched, and the store's
// idempotent commit absorbs the replay.
func (c *Cursor) MarkComplete(ctx context.Context, month types.Month) error {
	if err := c.load(ctx); err != nil {
		return err
	}

	expected := c.start
	if !c.state.LastCompleted.IsZero() {
		expected = c.state.LastCompleted.Next()
	}
	if month != expected {
		return fmt.Errorf("out-of-order completion: expected %s, got %s", expected, month)
	}

	prev := c.state.LastCompleted
	c.state.LastCompleted = month
	if err := c.store.SaveState(ctx, c.state); err != nil {
		c.state.LastCompleted = prev
		return fmt.Errorf("persist high-water mark: %w", err)
	}
	logger.Info(ctx, "Month committed", "month", month.String(), "requests_used_today", c.state.RequestsUsed)
	return nil
}

// RequestsUsed returns the current quota counter, for reporting.
func (c *Cursor) RequestsUsed(ctx context.Context) (int, error) {
	if err := c.load(ctx); err != nil {
		return 0, err
	}
	if err := c.rollQuotaWindow(ctx); err != nil {
		return 0, err
	}
	return c.state.RequestsUsed, nil
}

func (c *Cursor) load(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	state, ok, err := c.store.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("load acquisition state: %w", err)
	}
	if !ok {
		state = types.AcquisitionState{QuotaResetDate: dateOnly(c.now())}
	}
	c.state = state
	c.loaded = true
	return nil
}

// rollQuotaWindow resets the counter when the wall-clock date has moved past
// the persisted quota window. The window rolls by date, not by timer.
func (c *Cursor) rollQuotaWindow(ctx context.Context) error {
	today := dateOnly(c.now())
	if !today.After(c.state.QuotaResetDate) {
		return nil
	}
	logger.Info(ctx, "Quota window rolled over",
		"previous_date", c.state.QuotaResetDate.Format("2006-01-02"),
		"requests_used", c.state.RequestsUsed,
	)
	c.state.RequestsUsed = 0
	c.state.QuotaResetDate = today
	if err := c.store.SaveState(ctx, c.state); err != nil {
		return fmt.Errorf("persist quota window: %w", err)
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
