package types

import (
	"fmt"
	"time"
)

// Topic is the topic label assigned by the external topic classifier.
type Topic string

const (
	TopicEconomic Topic = "Economic"
	TopicOther    Topic = "Other"
)

// Sentiment is the label assigned by the external sentiment classifier.
// Only Economic headlines carry a sentiment.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// Headline is one (date, text) pair pulled from the archive. Never persisted.
type Headline struct {
	Date time.Time
	Text string
}

// Classification is the output of the classifier adapter for one headline.
// Sentiment is empty unless Topic == TopicEconomic.
type Classification struct {
	Topic     Topic
	Sentiment Sentiment
}

// ClassifiedHeadline pairs a headline with its labels.
type ClassifiedHeadline struct {
	Headline
	Classification
}

// DailyRecord is one row of the published index table. Counts are immutable
// once committed; the smoothed columns are a recomputable projection.
type DailyRecord struct {
	Date     time.Time
	Positive int
	Negative int
	Neutral  int

	// RawScore = (pos-neg)/(pos+neg); undefined (ScoreDefined=false) when pos+neg = 0.
	RawScore     float64
	ScoreDefined bool

	SmoothedIndex   float64
	SmoothedDefined bool
	LowConfidence   bool
}

// Total returns the number of Economic headlines counted for the day.
func (r DailyRecord) Total() int { return r.Positive + r.Negative + r.Neutral }

// Month identifies one calendar month of the archive.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the Month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses "2006-01" into a Month.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Start returns midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	return MonthOf(m.Start().AddDate(0, 1, 0))
}

// Before reports whether m precedes other.
func (m Month) Before(other Month) bool {
	return m.Year < other.Year || (m.Year == other.Year && m.Month < other.Month)
}

// IsZero reports whether m is the "no month yet" sentinel.
func (m Month) IsZero() bool { return m.Year == 0 && m.Month == 0 }

// AcquisitionState is the persisted acquisition checkpoint. LastCompleted is
// the zero Month before the first month has ever been committed.
type AcquisitionState struct {
	LastCompleted  Month
	RequestsUsed   int
	QuotaResetDate time.Time // wall-clock date the counter belongs to
}
