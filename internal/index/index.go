package index

import (
	"sort"
	"time"

	"news-sentiment-index/internal/types"
)

// Engine transforms the ordered raw-score series into the published index:
// an exponential moving average over defined observations followed by
// long-window detrending against a trailing simple moving average of the
// EMA, recentered by a fixed offset.
//
// Days with an undefined raw score are gaps: the EMA accumulator does not
// advance on them and they publish no smoothed value. The engine always
// recomputes the whole series from complete history; a pure function of its
// input, so repeated runs are bit-identical.
type Engine struct {
	emaSpan    int
	windowDays int
	offset     float64
}

// New creates an engine. span is the EMA span in defined observations,
// trendYears the detrending window in calendar years, offset the recenter
// constant added after detrending.
func New(span, trendYears int, offset float64) *Engine {
	return &Engine{
		emaSpan:    span,
		windowDays: trendYears * 365,
		offset:     offset,
	}
}

// Recompute returns a copy of records with the smoothed columns rebuilt.
// Input records may arrive in any order; output is ordered by date.
func (e *Engine) Recompute(records []types.DailyRecord) []types.DailyRecord {
	out := make([]types.DailyRecord, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	alpha := 2.0 / float64(e.emaSpan+1)
	window := time.Duration(e.windowDays) * 24 * time.Hour

	// Trailing window over the EMA series of defined observations only.
	type emaPoint struct {
		date time.Time
		ema  float64
	}
	var (
		points    []emaPoint
		windowSum float64
		windowLow int // index of the oldest point still inside the window
		ema       float64
		defined   int
		firstDate time.Time
		haveFirst bool
	)

	for i := range out {
		rec := &out[i]
		rec.SmoothedIndex = 0
		rec.SmoothedDefined = false
		rec.LowConfidence = false

		if !rec.ScoreDefined {
			continue
		}

		if defined == 0 {
			ema = rec.RawScore
		} else {
			ema = alpha*rec.RawScore + (1-alpha)*ema
		}
		defined++
		if !haveFirst {
			firstDate = rec.Date
			haveFirst = true
		}

		points = append(points, emaPoint{date: rec.Date, ema: ema})
		windowSum += ema
		// Evict points older than the trailing window (t-window, t].
		cutoff := rec.Date.Add(-window)
		for windowLow < len(points) && !points[windowLow].date.After(cutoff) {
			windowSum -= points[windowLow].ema
			windowLow++
		}

		sma := windowSum / float64(len(points)-windowLow)
		rec.SmoothedIndex = ema - sma + e.offset
		rec.SmoothedDefined = true
		rec.LowConfidence = defined < e.emaSpan || rec.Date.Sub(firstDate) < window
	}

	return out
}
