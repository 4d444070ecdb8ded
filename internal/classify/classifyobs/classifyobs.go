package classifyobs

import (
	"context"

	"news-sentiment-index/internal/interfaces"
	"news-sentiment-index/internal/logger"
	"news-sentiment-index/internal/trace"
	"news-sentiment-index/internal/types"
)

// observableClassifier wraps a Classifier with observability (logging & tracing)
type observableClassifier struct {
	classifier interfaces.Classifier
}

// Compile-time interface check
var _ interfaces.Classifier = (*observableClassifier)(nil)

// Wrap wraps a classifier with observability middleware
func Wrap(classifier interfaces.Classifier) interfaces.Classifier {
	return &observableClassifier{
		classifier: classifier,
	}
}

// Classify labels a headline with observability
func (oc *observableClassifier) Classify(ctx context.Context, headline string) (types.Classification, error) {
	ctx, span := trace.StartSpan(ctx, "classify.Classify")
	defer span.End()

	result, err := oc.classifier.Classify(ctx, headline)
	if err != nil {
		// Use Skip(1) to report the actual caller, not this middleware wrapper
		logger.ErrorWithErrSkip(ctx, 1, "Headline classification failed", err)
		return types.Classification{}, err
	}

	logger.DebugSkip(ctx, 1, "Headline classified",
		"topic", string(result.Topic),
		"sentiment", string(result.Sentiment),
	)
	return result, nil
}
