package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/mcpgw/internal/db"
	"github.com/kailas-cloud/mcpgw/internal/domain"
)

type fakeSearcher struct {
	result    *db.SearchResult
	err       error
	lastQuery *db.KNNQuery
}

func (f *fakeSearcher) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestQuery_MapsEntries(t *testing.T) {
	store := &fakeSearcher{result: &db.SearchResult{
		Total: 2,
		Entries: []db.SearchEntry{
			{Key: "mcpgw:doc:a", Score: 0.91, Fields: map[string]string{"content": "X", "category": "Y"}},
			{Key: "b", Score: 0.5, Fields: map[string]string{}},
		},
	}}
	repo := New(store, "mcpgw:idx")

	matches, err := repo.Query(context.Background(), []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.lastQuery.IndexName != "mcpgw:idx" {
		t.Errorf("unexpected index: %q", store.lastQuery.IndexName)
	}
	if store.lastQuery.K != 5 {
		t.Errorf("unexpected k: %d", store.lastQuery.K)
	}

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID() != "a" {
		t.Errorf("expected doc key prefix stripped, got %q", matches[0].ID())
	}
	if matches[0].Content() != "X" || matches[0].Category() != "Y" {
		t.Errorf("unexpected metadata mapping: %+v", matches[0])
	}
	// Keys without the doc prefix are passed through
	if matches[1].ID() != "b" {
		t.Errorf("unexpected id: %q", matches[1].ID())
	}
	if matches[1].Content() != "" {
		t.Errorf("expected empty content for missing field, got %q", matches[1].Content())
	}
}

func TestQuery_WrapsBackendError(t *testing.T) {
	store := &fakeSearcher{err: errors.New("connection reset")}
	repo := New(store, "mcpgw:idx")

	_, err := repo.Query(context.Background(), []float32{0.1}, 5)
	if !errors.Is(err, domain.ErrSearchProviderError) {
		t.Fatalf("expected search provider error, got %v", err)
	}
}
