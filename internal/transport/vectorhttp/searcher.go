// Package vectorhttp provides a client for a managed vector index speaking
// the plain query contract: POST {"vector", "topK", "returnMetadata"}
// returns {"matches": [{"id", "score", "metadata"?}]}.
package vectorhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mcpgw/internal/domain"
	"github.com/kailas-cloud/mcpgw/internal/domain/match"
	"github.com/kailas-cloud/mcpgw/internal/metrics"
)

// Searcher queries a remote vector index over HTTP.
type Searcher struct {
	url    string
	apiKey string
	client *http.Client
	logger *zap.Logger
}

// Config holds the vector index endpoint settings.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewSearcher creates a vector index client.
func NewSearcher(cfg *Config) *Searcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type queryRequest struct {
	Vector         []float32 `json:"vector"`
	TopK           int       `json:"topK"`
	ReturnMetadata bool      `json:"returnMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// Query implements the dispatcher's Searcher contract.
func (s *Searcher) Query(ctx context.Context, vector []float32, topK int) ([]match.Result, error) {
	body, err := json.Marshal(queryRequest{Vector: vector, TopK: topK, ReturnMetadata: true})
	if err != nil {
		return nil, fmt.Errorf("marshal query request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	start := time.Now()

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("vector index request failed", zap.String("url", s.url), zap.Error(err))
		return nil, fmt.Errorf("vector index request failed: %w: %w", domain.ErrSearchProviderError, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read vector index response: %w", domain.ErrSearchProviderError)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("vector index error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(data, 256)),
		)
		return nil, fmt.Errorf("vector index error %d: %s: %w",
			resp.StatusCode, truncate(data, 256), domain.ErrSearchProviderError)
	}

	var parsed queryResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("unexpected vector index response shape: %w", domain.ErrSearchProviderError)
	}

	metrics.SearchRequestDuration.WithLabelValues("http").Observe(time.Since(start).Seconds())

	matches := make([]match.Result, 0, len(parsed.Matches))
	for _, m := range parsed.Matches {
		matches = append(matches, match.New(
			m.ID, m.Score,
			metadataString(m.Metadata, "content"),
			metadataString(m.Metadata, "category"),
		))
	}
	return matches, nil
}

func metadataString(md map[string]any, key string) string {
	if md == nil {
		return ""
	}
	if v, ok := md[key].(string); ok {
		return v
	}
	return ""
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
