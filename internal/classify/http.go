package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"news-sentiment-index/internal/logger"
	"news-sentiment-index/internal/types"
)

// HTTPClassifier calls two external text-classification model endpoints: one
// for topic, one for sentiment. The sentiment model is only consulted for
// Economic headlines; everything else is returned with topic Other and no
// sentiment. Per-headline failures come back as *types.ClassificationError.
type HTTPClassifier struct {
	topicURL     string
	sentimentURL string
	http         *http.Client
}

type HTTPParams struct {
	TopicURL     string
	SentimentURL string
	Timeout      time.Duration
}

func NewHTTPClassifier(p HTTPParams) *HTTPClassifier {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClassifier{
		topicURL:     p.TopicURL,
		sentimentURL: p.SentimentURL,
		http:         &http.Client{Timeout: timeout},
	}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type inferencePrediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify labels one headline. The adapter is stateless; any batching the
// serving side does must not change the per-input output.
func (c *HTTPClassifier) Classify(ctx context.Context, headline string) (types.Classification, error) {
	topicLabel, err := c.predict(ctx, c.topicURL, headline)
	if err != nil {
		return types.Classification{}, &types.ClassificationError{Headline: headline, Err: err}
	}

	topic := normalizeTopic(topicLabel)
	if topic != types.TopicEconomic {
		return types.Classification{Topic: types.TopicOther}, nil
	}

	sentimentLabel, err := c.predict(ctx, c.sentimentURL, headline)
	if err != nil {
		return types.Classification{}, &types.ClassificationError{Headline: headline, Err: err}
	}
	sentiment, err := normalizeSentiment(sentimentLabel)
	if err != nil {
		return types.Classification{}, &types.ClassificationError{Headline: headline, Err: err}
	}

	return types.Classification{Topic: types.TopicEconomic, Sentiment: sentiment}, nil
}

// predict posts one input to a model endpoint and returns the top label.
func (c *HTTPClassifier) predict(ctx context.Context, endpoint, input string) (string, error) {
	body, _ := json.Marshal(inferenceRequest{Inputs: input})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("inference http %d: %s", resp.StatusCode, string(b))
	}

	var preds []inferencePrediction
	if err := json.NewDecoder(resp.Body).Decode(&preds); err != nil {
		return "", fmt.Errorf("decode inference response: %w", err)
	}
	if len(preds) == 0 {
		return "", fmt.Errorf("inference returned no predictions")
	}

	top := preds[0]
	for _, p := range preds[1:] {
		if p.Score > top.Score {
			top = p
		}
	}
	logger.Debug(ctx, "Model prediction received",
		"endpoint", endpoint,
		"label", top.Label,
		"score", top.Score,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return top.Label, nil
}

// normalizeTopic maps model output to the core topic labels. The topic model
// reports "Economics"; anything else counts as Other.
func normalizeTopic(label string) types.Topic {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "economics", "economic":
		return types.TopicEconomic
	default:
		return types.TopicOther
	}
}

func normalizeSentiment(label string) (types.Sentiment, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive":
		return types.SentimentPositive, nil
	case "neutral":
		return types.SentimentNeutral, nil
	case "negative":
		return types.SentimentNegative, nil
	default:
		return "", fmt.Errorf("unknown sentiment label %q", label)
	}
}
