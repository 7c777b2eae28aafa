package tools

import (
	"context"

	"github.com/kailas-cloud/mcpgw/internal/domain"
	"github.com/kailas-cloud/mcpgw/internal/domain/match"
)

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher runs a nearest-neighbor query against the vector index.
type Searcher interface {
	Query(ctx context.Context, vector []float32, topK int) ([]match.Result, error)
}
