package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"news-sentiment-index/internal/aggregate"
	"news-sentiment-index/internal/cursor"
	"news-sentiment-index/internal/index"
	"news-sentiment-index/internal/interfaces"
	"news-sentiment-index/internal/logger"
	"news-sentiment-index/internal/trace"
	"news-sentiment-index/internal/types"
)

// Pipeline wires the acquisition loop: cursor → archive fetch → parallel
// classification → daily aggregation → store commit → cursor advance, plus
// the full-history recomputation pass. Fetches stay sequential because the
// remote quota is global; only classification fans out.
type Pipeline struct {
	cursor     *cursor.Cursor
	source     interfaces.ArchiveSource
	classifier interfaces.Classifier
	aggregator *aggregate.Aggregator
	engine     *index.Engine
	store      interfaces.ResultStore
	workers    int

	// The cursor and quota counter are single-writer; overlapping passes
	// (the daemon's startup run vs a cron fire) queue here instead of
	// racing.
	runMu sync.Mutex
}

type Params struct {
	Cursor     *cursor.Cursor
	Source     interfaces.ArchiveSource
	Classifier interfaces.Classifier
	Aggregator *aggregate.Aggregator
	Engine     *index.Engine
	Store      interfaces.ResultStore
	Workers    int
}

func New(p Params) *Pipeline {
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		cursor:     p.Cursor,
		source:     p.Source,
		classifier: p.Classifier,
		aggregator: p.Aggregator,
		engine:     p.Engine,
		store:      p.Store,
		workers:    workers,
	}
}

// RunOnce drains months until the archive is up to date or the daily quota
// runs out, then recomputes the smoothed index over the full history. Both
// stop conditions are clean exits; the next invocation resumes exactly where
// this one stopped.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	ctx, span := trace.StartSpan(ctx, "pipeline.RunOnce")
	defer span.End()

	months := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		month, err := p.cursor.Next(ctx)
		if errors.Is(err, types.ErrUpToDate) {
			logger.Info(ctx, "Archive up to date", "months_processed", months)
			break
		}
		if errors.Is(err, types.ErrQuotaExhausted) {
			logger.Info(ctx, "Daily quota exhausted, stopping until the window rolls over",
				"months_processed", months)
			break
		}
		if err != nil {
			return err
		}

		if err := p.processMonth(ctx, month); err != nil {
			return err
		}
		months++
	}

	if months == 0 {
		return nil
	}
	return p.recompute(ctx)
}

// processMonth runs one month through the full fetch-classify-aggregate-commit
// sequence. The store commit happens-before the cursor advance: a crash
// between the two replays the month, and the idempotent commit absorbs it.
func (p *Pipeline) processMonth(ctx context.Context, month types.Month) error {
	ctx, span := trace.StartSpan(ctx, "pipeline.processMonth")
	defer span.End()

	logger.Info(ctx, "Processing month", "month", month.String())

	headlines, err := p.source.FetchMonth(ctx, month)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", month, err)
	}
	// Quota counts successful fetches only; a transport failure above
	// leaves the counter untouched for the retry.
	if err := p.cursor.ConsumeQuota(ctx); err != nil {
		return err
	}

	items := p.classifyAll(ctx, headlines)

	records, err := p.aggregator.Aggregate(ctx, month, items)
	if err != nil {
		return fmt.Errorf("aggregate %s: %w", month, err)
	}

	if err := p.store.CommitMonth(ctx, month, records); err != nil {
		return fmt.Errorf("commit %s: %w", month, err)
	}
	return p.cursor.MarkComplete(ctx, month)
}

// classifyAll labels a month of headlines with a bounded worker pool. The
// classifier is stateless and per-headline, so order within the pool does
// not matter; results land at their input index to keep the merge
// deterministic.
func (p *Pipeline) classifyAll(ctx context.Context, headlines []types.Headline) []aggregate.Item {
	ctx, span := trace.StartSpan(ctx, "pipeline.classifyAll")
	defer span.End()

	items := make([]aggregate.Item, len(headlines))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				h := headlines[i]
				classification, err := p.classifier.Classify(ctx, h.Text)
				items[i] = aggregate.Item{Headline: h, Classification: classification, Err: err}
			}
		}()
	}

	for i := range headlines {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return items
}

// Recompute rebuilds the smoothed index columns from the complete stored
// raw-score history and overwrites them wholesale.
func (p *Pipeline) Recompute(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.recompute(ctx)
}

func (p *Pipeline) recompute(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "pipeline.Recompute")
	defer span.End()

	records, err := p.store.AllRecords(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		logger.Info(ctx, "No history yet, nothing to recompute")
		return nil
	}

	smoothed := p.engine.Recompute(records)
	if err := p.store.UpdateSmoothed(ctx, smoothed); err != nil {
		return err
	}

	last := smoothed[len(smoothed)-1]
	logger.Info(ctx, "Smoothed index recomputed",
		"records", len(smoothed),
		"through", last.Date.Format("2006-01-02"),
		"low_confidence_tail", last.LowConfidence,
	)
	return nil
}
