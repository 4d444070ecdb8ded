package interfaces

import (
	"context"

	"news-sentiment-index/internal/types"
)

// ResultStore is the append-only persisted table of daily records plus the
// acquisition checkpoint. Counts are immutable once committed; the smoothed
// columns are overwritten wholesale by each recomputation pass.
type ResultStore interface {
	// CommitMonth writes the month's daily records in one transaction.
	// Re-committing identical counts is a no-op; divergent counts fail
	// with *types.IntegrityError.
	CommitMonth(ctx context.Context, month types.Month, records []types.DailyRecord) error

	// AllRecords returns the full history ordered by date ascending.
	AllRecords(ctx context.Context) ([]types.DailyRecord, error)

	// UpdateSmoothed overwrites the smoothed_index and low_confidence
	// columns for every given record.
	UpdateSmoothed(ctx context.Context, records []types.DailyRecord) error

	// LoadState reads the persisted acquisition state; ok is false before
	// the first run.
	LoadState(ctx context.Context) (state types.AcquisitionState, ok bool, err error)

	// SaveState persists the acquisition state.
	SaveState(ctx context.Context, state types.AcquisitionState) error
}
