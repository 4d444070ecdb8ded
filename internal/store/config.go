package store

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"news-sentiment-index/internal/types"
)

type Config struct {
	Mode    string `yaml:"mode"`    // RUN, DAEMON or RECOMPUTE
	Workers int    `yaml:"workers"` // classification workers per month

	Archive struct {
		Source         string `yaml:"source"` // HTTP, SCRAPE or MOCK
		BaseURL        string `yaml:"base_url"`
		APIKeyEnv      string `yaml:"api_key_env"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		StartMonth     string `yaml:"start_month"` // "1852-01"
	} `yaml:"archive"`

	Quota struct {
		DailyLimit int `yaml:"daily_limit"`
	} `yaml:"quota"`

	Classifier struct {
		Provider       string  `yaml:"provider"` // HTTP or SCRIPTED
		TopicURL       string  `yaml:"topic_url"`
		SentimentURL   string  `yaml:"sentiment_url"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		MaxErrorRate   float64 `yaml:"max_error_rate"` // per-month abort threshold
	} `yaml:"classifier"`

	Aggregator struct {
		MinHeadlineWords int `yaml:"min_headline_words"`
	} `yaml:"aggregator"`

	Index struct {
		EMASpan          int     `yaml:"ema_span"`
		TrendWindowYears int     `yaml:"trend_window_years"`
		RecenterOffset   float64 `yaml:"recenter_offset"`
	} `yaml:"index"`

	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`

	Schedule struct {
		DailyTime string `yaml:"daily_time"` // HH:MM
		Timezone  string `yaml:"timezone"`
	} `yaml:"schedule"`
}

func (c *Config) Validate() error {
	switch c.Mode {
	case "RUN", "DAEMON", "RECOMPUTE":
	default:
		return fmt.Errorf("invalid mode '%s': must be 'RUN', 'DAEMON' or 'RECOMPUTE'", c.Mode)
	}
	switch c.Archive.Source {
	case "HTTP", "SCRAPE", "MOCK":
	default:
		return fmt.Errorf("invalid archive.source '%s': must be 'HTTP', 'SCRAPE' or 'MOCK'", c.Archive.Source)
	}
	if c.Archive.Source == "HTTP" && c.Archive.BaseURL == "" {
		return fmt.Errorf("archive.base_url is required for HTTP source")
	}
	if _, err := types.ParseMonth(c.Archive.StartMonth); err != nil {
		return fmt.Errorf("invalid archive.start_month: %w", err)
	}
	if c.Quota.DailyLimit <= 0 {
		return fmt.Errorf("quota.daily_limit must be positive, got %d", c.Quota.DailyLimit)
	}
	switch c.Classifier.Provider {
	case "HTTP", "SCRIPTED":
	default:
		return fmt.Errorf("invalid classifier.provider '%s': must be 'HTTP' or 'SCRIPTED'", c.Classifier.Provider)
	}
	if c.Classifier.Provider == "HTTP" && (c.Classifier.TopicURL == "" || c.Classifier.SentimentURL == "") {
		return fmt.Errorf("classifier.topic_url and classifier.sentiment_url are required for HTTP provider")
	}
	if c.Classifier.MaxErrorRate < 0 || c.Classifier.MaxErrorRate > 1 {
		return fmt.Errorf("classifier.max_error_rate must be between 0 and 1, got %.2f", c.Classifier.MaxErrorRate)
	}
	if c.Index.EMASpan < 2 {
		return fmt.Errorf("index.ema_span must be at least 2, got %d", c.Index.EMASpan)
	}
	if c.Index.TrendWindowYears <= 0 {
		return fmt.Errorf("index.trend_window_years must be positive, got %d", c.Index.TrendWindowYears)
	}
	if c.Mode == "DAEMON" {
		if _, err := time.Parse("15:04", c.Schedule.DailyTime); err != nil {
			return fmt.Errorf("invalid schedule.daily_time '%s': must be HH:MM", c.Schedule.DailyTime)
		}
	}
	return nil
}

// StartMonth returns the parsed acquisition start month. Validate must have
// been called first.
func (c *Config) StartMonth() types.Month {
	m, _ := types.ParseMonth(c.Archive.StartMonth)
	return m
}

func (c *Config) ArchiveTimeout() time.Duration {
	return time.Duration(c.Archive.TimeoutSeconds) * time.Second
}

func (c *Config) ClassifierTimeout() time.Duration {
	return time.Duration(c.Classifier.TimeoutSeconds) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Mode == "" {
		c.Mode = "RUN"
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.Archive.Source == "" {
		c.Archive.Source = "MOCK"
	}
	if c.Archive.TimeoutSeconds == 0 {
		c.Archive.TimeoutSeconds = 30
	}
	if c.Archive.StartMonth == "" {
		c.Archive.StartMonth = "1852-01"
	}
	if c.Archive.APIKeyEnv == "" {
		c.Archive.APIKeyEnv = "ARCHIVE_API_KEY"
	}
	if c.Quota.DailyLimit == 0 {
		c.Quota.DailyLimit = 500
	}
	if c.Classifier.Provider == "" {
		c.Classifier.Provider = "SCRIPTED"
	}
	if c.Classifier.TimeoutSeconds == 0 {
		c.Classifier.TimeoutSeconds = 30
	}
	if c.Classifier.MaxErrorRate == 0 {
		c.Classifier.MaxErrorRate = 0.05
	}
	if c.Aggregator.MinHeadlineWords == 0 {
		c.Aggregator.MinHeadlineWords = 3
	}
	if c.Index.EMASpan == 0 {
		c.Index.EMASpan = 100
	}
	if c.Index.TrendWindowYears == 0 {
		c.Index.TrendWindowYears = 7
	}
	if c.Index.RecenterOffset == 0 {
		c.Index.RecenterOffset = 0.5
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = "newsindex.db"
	}
	if c.Schedule.DailyTime == "" {
		c.Schedule.DailyTime = "06:30"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "UTC"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
