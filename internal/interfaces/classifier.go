package interfaces

import (
	"context"

	"news-sentiment-index/internal/types"
)

// Classifier assigns a topic label and, for Economic headlines, a sentiment
// label to a single headline. Implementations are stateless from the
// caller's perspective; per-headline failures are *types.ClassificationError.
type Classifier interface {
	Classify(ctx context.Context, headline string) (types.Classification, error)
}
