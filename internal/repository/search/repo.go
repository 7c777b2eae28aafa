// Package search adapts the Redis FT.SEARCH backend to the dispatcher's
// Searcher contract.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/mcpgw/internal/db"
	"github.com/kailas-cloud/mcpgw/internal/domain"
	"github.com/kailas-cloud/mcpgw/internal/domain/match"
	"github.com/kailas-cloud/mcpgw/internal/metrics"
)

// docKeyPrefix is stripped from Redis keys to recover the item id.
var docKeyPrefix = domain.KeyPrefix + "doc:"

// Repo runs KNN queries against a Redis-backed vector index.
type Repo struct {
	store db.Searcher
	index string
}

// New creates a search repository over the given index.
func New(store db.Searcher, index string) *Repo {
	return &Repo{store: store, index: index}
}

// Query implements the dispatcher's Searcher contract.
func (r *Repo) Query(ctx context.Context, vector []float32, topK int) ([]match.Result, error) {
	start := time.Now()

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.index,
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"content", "category", "__vector_score"},
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w: %w", domain.ErrSearchProviderError, err)
	}

	metrics.SearchRequestDuration.WithLabelValues("redis").Observe(time.Since(start).Seconds())

	matches := make([]match.Result, 0, len(res.Entries))
	for _, e := range res.Entries {
		id := strings.TrimPrefix(e.Key, docKeyPrefix)
		matches = append(matches, match.New(id, e.Score, e.Fields["content"], e.Fields["category"]))
	}
	return matches, nil
}
