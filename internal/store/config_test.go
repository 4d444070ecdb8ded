package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"news-sentiment-index/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "mode: RUN\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Workers != 4 {
		t.Errorf("Expected 4 workers by default, got %d", cfg.Workers)
	}
	if cfg.Archive.Source != "MOCK" {
		t.Errorf("Expected MOCK source by default, got %s", cfg.Archive.Source)
	}
	if cfg.Quota.DailyLimit != 500 {
		t.Errorf("Expected daily limit 500, got %d", cfg.Quota.DailyLimit)
	}
	if cfg.Classifier.MaxErrorRate != 0.05 {
		t.Errorf("Expected max error rate 0.05, got %f", cfg.Classifier.MaxErrorRate)
	}
	if cfg.Aggregator.MinHeadlineWords != 3 {
		t.Errorf("Expected min headline words 3, got %d", cfg.Aggregator.MinHeadlineWords)
	}
	if cfg.Index.EMASpan != 100 {
		t.Errorf("Expected EMA span 100, got %d", cfg.Index.EMASpan)
	}
	if cfg.Index.TrendWindowYears != 7 {
		t.Errorf("Expected trend window 7 years, got %d", cfg.Index.TrendWindowYears)
	}
	if cfg.Index.RecenterOffset != 0.5 {
		t.Errorf("Expected recenter offset 0.5, got %f", cfg.Index.RecenterOffset)
	}
	if cfg.Storage.DBPath != "newsindex.db" {
		t.Errorf("Expected default db path, got %s", cfg.Storage.DBPath)
	}

	want := types.Month{Year: 1852, Month: time.January}
	if cfg.StartMonth() != want {
		t.Errorf("Expected start month %s, got %s", want, cfg.StartMonth())
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
mode: DAEMON
workers: 8
archive:
  source: HTTP
  base_url: https://archive.example.com
  start_month: "1920-06"
quota:
  daily_limit: 100
index:
  ema_span: 50
  trend_window_years: 3
schedule:
  daily_time: "04:15"
  timezone: America/New_York
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Mode != "DAEMON" {
		t.Errorf("Expected DAEMON mode, got %s", cfg.Mode)
	}
	if cfg.Quota.DailyLimit != 100 {
		t.Errorf("Expected daily limit 100, got %d", cfg.Quota.DailyLimit)
	}
	if cfg.Index.EMASpan != 50 {
		t.Errorf("Expected EMA span 50, got %d", cfg.Index.EMASpan)
	}
	want := types.Month{Year: 1920, Month: time.June}
	if cfg.StartMonth() != want {
		t.Errorf("Expected start month %s, got %s", want, cfg.StartMonth())
	}
	if cfg.Schedule.Timezone != "America/New_York" {
		t.Errorf("Expected configured timezone, got %s", cfg.Schedule.Timezone)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bad mode",
			content: "mode: SOMETIMES\n",
			wantErr: "invalid mode",
		},
		{
			name:    "http source without base url",
			content: "mode: RUN\narchive:\n  source: HTTP\n",
			wantErr: "base_url is required",
		},
		{
			name:    "bad start month",
			content: "mode: RUN\narchive:\n  start_month: \"June 1920\"\n",
			wantErr: "start_month",
		},
		{
			name:    "http classifier without endpoints",
			content: "mode: RUN\nclassifier:\n  provider: HTTP\n",
			wantErr: "topic_url",
		},
		{
			name:    "error rate out of range",
			content: "mode: RUN\nclassifier:\n  max_error_rate: 1.5\n",
			wantErr: "max_error_rate",
		},
		{
			name:    "ema span too small",
			content: "mode: RUN\nindex:\n  ema_span: 1\n",
			wantErr: "ema_span",
		},
		{
			name:    "daemon with bad time",
			content: "mode: DAEMON\nschedule:\n  daily_time: \"6:3pm\"\n",
			wantErr: "daily_time",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("Expected error for missing file")
	}
}
