// Package embedhttp provides an embedding provider speaking the plain
// single-endpoint contract: POST {"text": ...} returns either a bare vector
// or {"data": [vector, ...]}. Both shapes are normalized to a bare vector.
package embedhttp

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
	"github.com/kailas-cloud/mcpgw/internal/metrics"
)

const providerLabel = "http"

// Embedder calls a plain HTTP embedding endpoint.
type Embedder struct {
	url    string
	apiKey string
	model  string
	client *http.Client
	logger *zap.Logger
}

// Config holds the embedding endpoint settings.
type Config struct {
	URL     string
	APIKey  string
	Model   string // label only, the endpoint owns model selection
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewEmbedder creates a plain HTTP embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type embedRequest struct {
	Text string `json:"text"`
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	body, err := json.Marshal(embedRequest{Text: text})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	start := time.Now()

	resp, err := e.client.Do(req)
	if err != nil {
		e.countError("transport_error")
		e.logger.Warn("embedding request failed", zap.String("url", e.url), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("embedding request failed: %w: %w",
			domain.ErrEmbeddingProviderError, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		e.countError("read_error")
		return domain.EmbeddingResult{}, fmt.Errorf("read embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.countError("api_error")
		e.logger.Warn("embedding API error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(data, 256)),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embedding API error %d: %s: %w",
			resp.StatusCode, truncate(data, 256), domain.ErrEmbeddingProviderError)
	}

	vec, err := normalizeVector(data)
	if err != nil {
		e.countError("malformed_response")
		return domain.EmbeddingResult{}, fmt.Errorf("%s: %w", err.Error(), domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerLabel, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerLabel, e.model).Observe(time.Since(start).Seconds())

	return domain.EmbeddingResult{Embedding: vec}, nil
}

func (e *Embedder) countError(kind string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(providerLabel, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(providerLabel, e.model, kind).Inc()
}

// normalizeVector accepts a bare JSON vector or a {"data": [vector, ...]}
// wrapper and returns the vector at data[0].
func normalizeVector(body []byte) ([]float32, error) {
	var bare []float32
	if err := json.Unmarshal(body, &bare); err == nil {
		if len(bare) == 0 {
			return nil, fmt.Errorf("empty embedding response")
		}
		return bare, nil
	}

	var wrapped struct {
		Data [][]float32 `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected embedding response shape")
	}
	if len(wrapped.Data) == 0 || len(wrapped.Data[0]) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return wrapped.Data[0], nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
