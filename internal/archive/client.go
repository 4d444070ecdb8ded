package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"context"

	"news-sentiment-index/internal/logger"
	"news-sentiment-index/internal/trace"
	"news-sentiment-index/internal/types"
)

// Client fetches monthly headline batches from an archive HTTP endpoint of
// the form {base}/{year}/{month}.json?api-key={key}. Only the publication
// date and the main headline are extracted from the response.
type Client struct {
	baseURL   string
	apiKeyEnv string
	http      *http.Client
	limiter   *RateLimiter
}

type ClientParams struct {
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

// NewClient creates an archive client with a bounded request timeout and a
// token bucket spacing requests at the remote's per-minute limit.
func NewClient(p ClientParams) *Client {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   p.BaseURL,
		apiKeyEnv: p.APIKeyEnv,
		http:      &http.Client{Timeout: timeout},
		limiter:   NewRateLimiter(10, 6*time.Second),
	}
}

type archiveResponse struct {
	Response struct {
		Docs []struct {
			PubDate  string `json:"pub_date"`
			Headline struct {
				Main string `json:"main"`
			} `json:"headline"`
		} `json:"docs"`
	} `json:"response"`
}

// FetchMonth retrieves every headline published in the given month. Any
// transport or decode failure is wrapped in *types.TransportError so the
// caller retries the same month without advancing state.
func (c *Client) FetchMonth(ctx context.Context, month types.Month) ([]types.Headline, error) {
	ctx, span := trace.StartSpan(ctx, "archive.FetchMonth")
	defer span.End()

	apiKey := os.Getenv(c.apiKeyEnv)
	if apiKey == "" {
		return nil, &types.TransportError{Month: month, Err: fmt.Errorf("%s environment variable not set", c.apiKeyEnv)}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &types.TransportError{Month: month, Err: err}
	}

	u := fmt.Sprintf("%s/%d/%d.json?api-key=%s", c.baseURL, month.Year, int(month.Month), url.QueryEscape(apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &types.TransportError{Month: month, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &types.TransportError{Month: month, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &types.TransportError{
			Month: month,
			Err:   fmt.Errorf("archive http %d: %s", resp.StatusCode, string(body)),
		}
	}

	var parsed archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &types.TransportError{Month: month, Err: fmt.Errorf("decode archive response: %w", err)}
	}

	headlines := make([]types.Headline, 0, len(parsed.Response.Docs))
	for _, doc := range parsed.Response.Docs {
		if doc.Headline.Main == "" {
			continue
		}
		pub, err := parsePubDate(doc.PubDate)
		if err != nil {
			logger.Warn(ctx, "Skipping headline with unparseable date", "pub_date", doc.PubDate, "month", month.String())
			continue
		}
		headlines = append(headlines, types.Headline{Date: pub, Text: doc.Headline.Main})
	}

	logger.Info(ctx, "Fetched archive month",
		"month", month.String(),
		"headlines", len(headlines),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return headlines, nil
}

// parsePubDate accepts the timestamp formats the archive has used over the
// years and normalizes to a UTC calendar date.
func parsePubDate(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05-0700",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized pub_date format %q", s)
}
