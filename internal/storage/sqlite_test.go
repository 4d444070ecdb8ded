package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-sentiment-index/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func record(y int, m time.Month, d, pos, neg, neu int) types.DailyRecord {
	rec := types.DailyRecord{
		Date:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Positive: pos,
		Negative: neg,
		Neutral:  neu,
	}
	if denom := pos + neg; denom > 0 {
		rec.RawScore = float64(pos-neg) / float64(denom)
		rec.ScoreDefined = true
	}
	return rec
}

func TestCommitAndReadBack(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	month := types.Month{Year: 1950, Month: time.April}

	records := []types.DailyRecord{
		record(1950, time.April, 1, 7, 3, 5),
		record(1950, time.April, 2, 0, 0, 4), // undefined raw score
	}
	require.NoError(t, store.CommitMonth(ctx, month, records))

	got, err := store.AllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 7, got[0].Positive)
	assert.Equal(t, 3, got[0].Negative)
	assert.True(t, got[0].ScoreDefined)
	assert.InDelta(t, 0.4, got[0].RawScore, 1e-12)
	assert.False(t, got[0].SmoothedDefined)

	assert.False(t, got[1].ScoreDefined, "day without polar headlines stores NULL raw score")
	assert.Equal(t, 4, got[1].Neutral)
}

func TestCommitMonthIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	month := types.Month{Year: 1950, Month: time.April}

	records := []types.DailyRecord{record(1950, time.April, 1, 2, 1, 0)}
	require.NoError(t, store.CommitMonth(ctx, month, records))
	require.NoError(t, store.CommitMonth(ctx, month, records), "replaying a committed month must be a no-op")

	got, err := store.AllRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCommitMonthRejectsDivergentCounts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	month := types.Month{Year: 1950, Month: time.April}

	require.NoError(t, store.CommitMonth(ctx, month, []types.DailyRecord{record(1950, time.April, 1, 2, 1, 0)}))

	err := store.CommitMonth(ctx, month, []types.DailyRecord{record(1950, time.April, 1, 9, 1, 0)})
	var integrityErr *types.IntegrityError
	require.True(t, errors.As(err, &integrityErr), "expected IntegrityError, got %v", err)
	assert.Equal(t, 2, integrityErr.Existing.Positive)
	assert.Equal(t, 9, integrityErr.Incoming.Positive)

	// The failed transaction must not have altered the stored counts.
	got, err := store.AllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Positive)
}

func TestUpdateSmoothed(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	month := types.Month{Year: 1950, Month: time.April}

	require.NoError(t, store.CommitMonth(ctx, month, []types.DailyRecord{
		record(1950, time.April, 1, 2, 1, 0),
		record(1950, time.April, 2, 0, 0, 3),
	}))

	records, err := store.AllRecords(ctx)
	require.NoError(t, err)

	records[0].SmoothedIndex = 0.512
	records[0].SmoothedDefined = true
	records[0].LowConfidence = true
	require.NoError(t, store.UpdateSmoothed(ctx, records))

	got, err := store.AllRecords(ctx)
	require.NoError(t, err)
	assert.True(t, got[0].SmoothedDefined)
	assert.InDelta(t, 0.512, got[0].SmoothedIndex, 1e-12)
	assert.True(t, got[0].LowConfidence)
	assert.False(t, got[1].SmoothedDefined, "gap day keeps NULL smoothed value")

	// Raw counts survive the smoothed overwrite untouched.
	assert.Equal(t, 2, got[0].Positive)
}

func TestStateRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, ok, err := store.LoadState(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "fresh database has no state")

	state := types.AcquisitionState{
		LastCompleted:  types.Month{Year: 1923, Month: time.November},
		RequestsUsed:   42,
		QuotaResetDate: time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveState(ctx, state))

	got, ok, err := store.LoadState(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state, got)

	// Overwriting keeps the singleton row.
	state.RequestsUsed = 43
	require.NoError(t, store.SaveState(ctx, state))
	got, _, err = store.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, 43, got.RequestsUsed)
}

func TestStateZeroMonth(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	state := types.AcquisitionState{
		QuotaResetDate: time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveState(ctx, state))

	got, ok, err := store.LoadState(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.LastCompleted.IsZero(), "no completed month yet round-trips as zero")
}

func TestAllRecordsOrderedAcrossMonths(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CommitMonth(ctx, types.Month{Year: 1951, Month: time.January},
		[]types.DailyRecord{record(1951, time.January, 15, 1, 0, 0)}))
	require.NoError(t, store.CommitMonth(ctx, types.Month{Year: 1950, Month: time.December},
		[]types.DailyRecord{record(1950, time.December, 3, 0, 1, 0)}))

	got, err := store.AllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Date.Before(got[1].Date))
}
