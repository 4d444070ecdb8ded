package types

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel outcomes of cursor.Next. Both are expected, non-fatal conditions.
var (
	// ErrQuotaExhausted means the daily request quota is spent; acquisition
	// resumes after the quota window rolls over to the next calendar day.
	ErrQuotaExhausted = errors.New("daily request quota exhausted")

	// ErrUpToDate means no fully elapsed months remain to fetch.
	ErrUpToDate = errors.New("archive up to date")
)

// TransportError wraps a network or remote-archive failure for one month.
// The month is not marked complete; a retry re-attempts the same month.
type TransportError struct {
	Month Month
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("archive fetch failed for %s: %v", e.Month, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ClassificationError is a failure classifying a single headline. The
// aggregator excludes the headline and counts the error toward the
// per-month threshold.
type ClassificationError struct {
	Headline string
	Err      error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed for %q: %v", e.Headline, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// SystemicClassificationError means the per-month classification error rate
// exceeded the configured threshold. The month's commit is aborted.
type SystemicClassificationError struct {
	Month     Month
	Failed    int
	Total     int
	Threshold float64
}

func (e *SystemicClassificationError) Error() string {
	return fmt.Sprintf("classification error rate %.2f%% (%d/%d) for %s exceeds threshold %.2f%%",
		100*float64(e.Failed)/float64(e.Total), e.Failed, e.Total, e.Month, 100*e.Threshold)
}

// IntegrityError means a date was re-committed with counts that differ from
// the already persisted row. Fatal: the acquired-history invariant is broken
// and overwriting would silently corrupt the index.
type IntegrityError struct {
	Date     time.Time
	Existing DailyRecord
	Incoming DailyRecord
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("daily counts for %s changed on reprocessing: have %d/%d/%d, got %d/%d/%d",
		e.Date.Format("2006-01-02"),
		e.Existing.Positive, e.Existing.Negative, e.Existing.Neutral,
		e.Incoming.Positive, e.Incoming.Negative, e.Incoming.Neutral)
}
