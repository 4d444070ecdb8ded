package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"news-sentiment-index/internal/aggregate"
	"news-sentiment-index/internal/archive"
	"news-sentiment-index/internal/classify"
	"news-sentiment-index/internal/classify/classifyobs"
	"news-sentiment-index/internal/cursor"
	"news-sentiment-index/internal/index"
	"news-sentiment-index/internal/interfaces"
	"news-sentiment-index/internal/logger"
	"news-sentiment-index/internal/pipeline"
	"news-sentiment-index/internal/storage"
	"news-sentiment-index/internal/store"
	"news-sentiment-index/internal/trace"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// buildPipeline wires every component from configuration. The returned
// storage handle must be closed by the caller.
func buildPipeline(ctx context.Context, cfg *store.Config) (interfaces.Pipeline, *storage.Store, error) {
	db, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, nil, err
	}

	pipe := pipeline.New(pipeline.Params{
		Cursor: cursor.New(cursor.Params{
			Store:      db,
			DailyLimit: cfg.Quota.DailyLimit,
			StartMonth: cfg.StartMonth(),
		}),
		Source:     initializeSource(ctx, cfg),
		Classifier: initializeClassifier(ctx, cfg),
		Aggregator: aggregate.New(cfg.Aggregator.MinHeadlineWords, cfg.Classifier.MaxErrorRate),
		Engine:     index.New(cfg.Index.EMASpan, cfg.Index.TrendWindowYears, cfg.Index.RecenterOffset),
		Store:      db,
		Workers:    cfg.Workers,
	})
	return pipe, db, nil
}

// initializeSource initializes the archive source from config
func initializeSource(ctx context.Context, cfg *store.Config) interfaces.ArchiveSource {
	switch cfg.Archive.Source {
	case "HTTP":
		logger.Info(ctx, "Using HTTP archive source", "base_url", cfg.Archive.BaseURL)
		return archive.NewClient(archive.ClientParams{
			BaseURL:   cfg.Archive.BaseURL,
			APIKeyEnv: cfg.Archive.APIKeyEnv,
			Timeout:   cfg.ArchiveTimeout(),
		})
	case "SCRAPE":
		logger.Info(ctx, "Using HTML scraper archive source", "base_url", cfg.Archive.BaseURL)
		return archive.NewScraper(cfg.Archive.BaseURL, cfg.ArchiveTimeout())
	default:
		logger.Warn(ctx, "Using MOCK archive source - synthetic headlines only")
		return archive.NewMockSource()
	}
}

// initializeClassifier initializes the classifier adapter with observability
func initializeClassifier(ctx context.Context, cfg *store.Config) interfaces.Classifier {
	var classifier interfaces.Classifier

	switch cfg.Classifier.Provider {
	case "HTTP":
		classifier = classify.NewHTTPClassifier(classify.HTTPParams{
			TopicURL:     cfg.Classifier.TopicURL,
			SentimentURL: cfg.Classifier.SentimentURL,
			Timeout:      cfg.ClassifierTimeout(),
		})
	default:
		classifier = classify.NewScriptedClassifier(nil)
		logger.Warn(ctx, "No model endpoints configured - using scripted classifier")
	}

	// Wrap with observability middleware
	return classifyobs.Wrap(classifier)
}
