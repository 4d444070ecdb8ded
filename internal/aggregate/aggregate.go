package aggregate

import (
	"context"
	"sort"
	"strings"
	"time"

	"news-sentiment-index/internal/logger"
	"news-sentiment-index/internal/types"
)

// Item is one classification attempt handed to the aggregator. Err set means
// the classifier failed for this headline; the skip-and-continue policy
// excludes it from every count while tracking it against the month's
// error-rate threshold.
type Item struct {
	Headline       types.Headline
	Classification types.Classification
	Err            error
}

// Aggregator reduces a month of classified headlines into one DailyRecord
// per calendar date. Aggregation is commutative over counts, so input order
// never changes the output.
type Aggregator struct {
	minWords     int
	maxErrorRate float64
}

func New(minWords int, maxErrorRate float64) *Aggregator {
	return &Aggregator{minWords: minWords, maxErrorRate: maxErrorRate}
}

// Aggregate produces the month's daily records sorted by date ascending.
// Only Economic headlines of at least minWords words are counted. It fails
// with *types.SystemicClassificationError when too many headlines could not
// be classified, so the caller never commits a month built on a degraded
// classifier.
func (a *Aggregator) Aggregate(ctx context.Context, month types.Month, items []Item) ([]types.DailyRecord, error) {
	failed := 0
	byDate := map[time.Time]*types.DailyRecord{}

	for _, item := range items {
		if item.Err != nil {
			failed++
			logger.Warn(ctx, "Excluding headline after classification failure",
				"month", month.String(),
				"date", item.Headline.Date.Format("2006-01-02"),
				"error", item.Err,
			)
			continue
		}
		if item.Classification.Topic != types.TopicEconomic {
			continue
		}
		if wordCount(item.Headline.Text) < a.minWords {
			continue
		}

		date := dateOnly(item.Headline.Date)
		rec := byDate[date]
		if rec == nil {
			rec = &types.DailyRecord{Date: date}
			byDate[date] = rec
		}
		switch item.Classification.Sentiment {
		case types.SentimentPositive:
			rec.Positive++
		case types.SentimentNegative:
			rec.Negative++
		case types.SentimentNeutral:
			rec.Neutral++
		}
	}

	if len(items) > 0 {
		rate := float64(failed) / float64(len(items))
		if rate > a.maxErrorRate {
			return nil, &types.SystemicClassificationError{
				Month:     month,
				Failed:    failed,
				Total:     len(items),
				Threshold: a.maxErrorRate,
			}
		}
		if failed > 0 {
			logger.Info(ctx, "Headlines excluded for classification failures",
				"month", month.String(), "failed", failed, "total", len(items))
		}
	}

	records := make([]types.DailyRecord, 0, len(byDate))
	for _, rec := range byDate {
		if denom := rec.Positive + rec.Negative; denom > 0 {
			rec.RawScore = float64(rec.Positive-rec.Negative) / float64(denom)
			rec.ScoreDefined = true
		}
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
