package domain

import "context"

// KeyPrefix namespaces every key the gateway writes to its store.
const KeyPrefix = "mcpgw:"

// DefaultVectorDimensions matches the all-MiniLM class of embedding models
// the gateway is deployed against.
const DefaultVectorDimensions = 384

// EmbeddingResult holds a computed embedding with token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is optionally implemented by providers that can verify
// upstream availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
