package classify

import (
	"context"
	"strings"

	"news-sentiment-index/internal/types"
)

// ScriptedClassifier returns canned labels, for tests and offline runs. Exact
// headline matches win; otherwise a small keyword heuristic decides, so the
// mock archive source still produces a plausible index without a model.
type ScriptedClassifier struct {
	script map[string]types.Classification
}

func NewScriptedClassifier(script map[string]types.Classification) *ScriptedClassifier {
	if script == nil {
		script = map[string]types.Classification{}
	}
	return &ScriptedClassifier{script: script}
}

var positiveWords = []string{"rally", "rallies", "climbs", "gains", "surges", "cheer", "falls to lowest", "narrows", "strong"}
var negativeWords = []string{"slump", "collapse", "fears", "crunch", "stagnate", "rattling", "deficit widens", "failures", "weakening"}
var economicWords = []string{"stocks", "market", "unemployment", "inflation", "rates", "trade", "bank", "wages", "economy", "earnings", "housing", "factory", "consumer"}

func (s *ScriptedClassifier) Classify(ctx context.Context, headline string) (types.Classification, error) {
	if c, ok := s.script[headline]; ok {
		return c, nil
	}

	lower := strings.ToLower(headline)
	if !containsAny(lower, economicWords) {
		return types.Classification{Topic: types.TopicOther}, nil
	}

	sentiment := types.SentimentNeutral
	if containsAny(lower, negativeWords) {
		sentiment = types.SentimentNegative
	} else if containsAny(lower, positiveWords) {
		sentiment = types.SentimentPositive
	}
	return types.Classification{Topic: types.TopicEconomic, Sentiment: sentiment}, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
