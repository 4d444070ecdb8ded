package interfaces

import (
	"context"

	"news-sentiment-index/internal/types"
)

// ArchiveSource fetches one calendar month of headlines from the remote
// archive. Fetching is side-effect free and idempotent; failures are
// surfaced as *types.TransportError.
type ArchiveSource interface {
	FetchMonth(ctx context.Context, month types.Month) ([]types.Headline, error)
}
