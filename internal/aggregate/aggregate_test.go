package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"news-sentiment-index/internal/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func economic(date time.Time, text string, s types.Sentiment) Item {
	return Item{
		Headline:       types.Headline{Date: date, Text: text},
		Classification: types.Classification{Topic: types.TopicEconomic, Sentiment: s},
	}
}

func TestAggregateRawScore(t *testing.T) {
	agg := New(3, 0.05)
	month := types.Month{Year: 1990, Month: time.March}
	date := day(1990, time.March, 5)

	var items []Item
	for i := 0; i < 7; i++ {
		items = append(items, economic(date, "stocks climb on strong earnings", types.SentimentPositive))
	}
	for i := 0; i < 3; i++ {
		items = append(items, economic(date, "bank failures rattle the market", types.SentimentNegative))
	}
	for i := 0; i < 5; i++ {
		items = append(items, economic(date, "trade talks continue this week", types.SentimentNeutral))
	}

	records, err := agg.Aggregate(context.Background(), month, items)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Positive != 7 || rec.Negative != 3 || rec.Neutral != 5 {
		t.Errorf("Expected counts 7/3/5, got %d/%d/%d", rec.Positive, rec.Negative, rec.Neutral)
	}
	if !rec.ScoreDefined {
		t.Fatal("Expected raw score to be defined")
	}
	// (7-3)/(7+3) = 0.4; neutrals never enter the score.
	if rec.RawScore != 0.4 {
		t.Errorf("Expected raw score 0.4, got %f", rec.RawScore)
	}
}

func TestAggregateScoreUndefinedWithoutPolarHeadlines(t *testing.T) {
	agg := New(3, 0.05)
	month := types.Month{Year: 1990, Month: time.March}
	date := day(1990, time.March, 5)

	items := []Item{
		economic(date, "trade talks continue this week", types.SentimentNeutral),
		economic(date, "consumer survey results published today", types.SentimentNeutral),
	}

	records, err := agg.Aggregate(context.Background(), month, items)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].ScoreDefined {
		t.Error("Expected undefined raw score when pos+neg is zero")
	}
	if records[0].Neutral != 2 {
		t.Errorf("Expected 2 neutral headlines, got %d", records[0].Neutral)
	}
}

func TestAggregateOrderInvariance(t *testing.T) {
	agg := New(3, 0.05)
	month := types.Month{Year: 1990, Month: time.March}

	items := []Item{
		economic(day(1990, time.March, 2), "bank failures rattle the market", types.SentimentNegative),
		economic(day(1990, time.March, 1), "stocks climb on strong earnings", types.SentimentPositive),
		economic(day(1990, time.March, 2), "stocks climb on strong earnings", types.SentimentPositive),
		economic(day(1990, time.March, 1), "trade talks continue this week", types.SentimentNeutral),
	}
	reversed := make([]Item, len(items))
	for i, item := range items {
		reversed[len(items)-1-i] = item
	}

	a, err := agg.Aggregate(context.Background(), month, items)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	b, err := agg.Aggregate(context.Background(), month, reversed)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("Expected equal record counts, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Date.Equal(b[i].Date) || a[i].RawScore != b[i].RawScore ||
			a[i].Positive != b[i].Positive || a[i].Negative != b[i].Negative {
			t.Errorf("Record %d differs between orderings: %+v vs %+v", i, a[i], b[i])
		}
	}
	if !a[0].Date.Before(a[1].Date) {
		t.Error("Expected records sorted by date ascending")
	}
}

func TestAggregateFiltersNonEconomicAndShortHeadlines(t *testing.T) {
	agg := New(3, 0.05)
	month := types.Month{Year: 1990, Month: time.March}
	date := day(1990, time.March, 5)

	items := []Item{
		economic(date, "stocks climb on strong earnings", types.SentimentPositive),
		// Non-economic headlines never count, whatever their sentiment.
		{
			Headline:       types.Headline{Date: date, Text: "local team wins championship game"},
			Classification: types.Classification{Topic: types.TopicOther, Sentiment: types.SentimentPositive},
		},
		// Two words: below the minimum length filter.
		economic(date, "Stocks Up", types.SentimentPositive),
	}

	records, err := agg.Aggregate(context.Background(), month, items)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Positive != 1 {
		t.Errorf("Expected 1 positive headline after filtering, got %d", records[0].Positive)
	}
}

func TestAggregateErrorRateThreshold(t *testing.T) {
	agg := New(3, 0.05)
	month := types.Month{Year: 1990, Month: time.March}
	date := day(1990, time.March, 5)

	// 2 failures out of 10 is 20%, well past the 5% threshold.
	var items []Item
	for i := 0; i < 8; i++ {
		items = append(items, economic(date, "stocks climb on strong earnings", types.SentimentPositive))
	}
	for i := 0; i < 2; i++ {
		items = append(items, Item{
			Headline: types.Headline{Date: date, Text: "unreachable model endpoint"},
			Err:      errors.New("model timeout"),
		})
	}

	_, err := agg.Aggregate(context.Background(), month, items)
	var sysErr *types.SystemicClassificationError
	if !errors.As(err, &sysErr) {
		t.Fatalf("Expected SystemicClassificationError, got %v", err)
	}
	if sysErr.Failed != 2 || sysErr.Total != 10 {
		t.Errorf("Expected 2/10 failures reported, got %d/%d", sysErr.Failed, sysErr.Total)
	}
}

func TestAggregateToleratesFailuresBelowThreshold(t *testing.T) {
	agg := New(3, 0.10)
	month := types.Month{Year: 1990, Month: time.March}
	date := day(1990, time.March, 5)

	var items []Item
	for i := 0; i < 19; i++ {
		items = append(items, economic(date, "stocks climb on strong earnings", types.SentimentPositive))
	}
	items = append(items, Item{
		Headline: types.Headline{Date: date, Text: "one transient failure"},
		Err:      errors.New("model timeout"),
	})

	records, err := agg.Aggregate(context.Background(), month, items)
	if err != nil {
		t.Fatalf("Expected failures below threshold to be tolerated, got %v", err)
	}
	if records[0].Positive != 19 {
		t.Errorf("Expected 19 positives with the failed headline excluded, got %d", records[0].Positive)
	}
}

func TestAggregateEmptyMonth(t *testing.T) {
	agg := New(3, 0.05)
	month := types.Month{Year: 1990, Month: time.March}

	records, err := agg.Aggregate(context.Background(), month, nil)
	if err != nil {
		t.Fatalf("Expected no error for empty month, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records for empty month, got %d", len(records))
	}
}
