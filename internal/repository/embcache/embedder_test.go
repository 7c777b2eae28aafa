package embcache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mcpgw/internal/db"
	"github.com/kailas-cloud/mcpgw/internal/domain"
)

type memStore struct {
	data    map[string][]byte
	getErr  error
	lastTTL time.Duration
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	m.lastTTL = ttl
	return nil
}

type countingEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	c.calls++
	if c.err != nil {
		return domain.EmbeddingResult{}, c.err
	}
	return domain.EmbeddingResult{Embedding: c.vec, TotalTokens: 12}, nil
}

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	store := newMemStore()
	cached := New(inner, store, time.Hour, nil, zap.NewNop())

	ctx := context.Background()

	first, err := cached.Embed(ctx, "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", inner.calls)
	}
	if first.TotalTokens != 12 {
		t.Errorf("miss must report real token usage, got %d", first.TotalTokens)
	}
	if store.lastTTL != time.Hour {
		t.Errorf("expected configured TTL, got %v", store.lastTTL)
	}

	second, err := cached.Embed(ctx, "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("hit must not call the provider, got %d calls", inner.calls)
	}
	if !reflect.DeepEqual(second.Embedding, first.Embedding) {
		t.Errorf("cached vector differs: %v vs %v", second.Embedding, first.Embedding)
	}
	if second.TotalTokens != 0 {
		t.Errorf("hit must report zero token usage, got %d", second.TotalTokens)
	}
}

func TestEmbed_DistinctQueriesDistinctKeys(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1}}
	store := newMemStore()
	cached := New(inner, store, time.Hour, nil, zap.NewNop())

	ctx := context.Background()
	_, _ = cached.Embed(ctx, "one")
	_, _ = cached.Embed(ctx, "two")

	if inner.calls != 2 {
		t.Errorf("expected 2 provider calls, got %d", inner.calls)
	}
	if len(store.data) != 2 {
		t.Errorf("expected 2 cache entries, got %d", len(store.data))
	}
}

func TestEmbed_StoreFailureFallsThrough(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1}}
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	cached := New(inner, store, time.Hour, nil, zap.NewNop())

	res, err := cached.Embed(context.Background(), "query")
	if err != nil {
		t.Fatalf("store failure must not fail the embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected fall-through to provider, got %d calls", inner.calls)
	}
	if len(res.Embedding) != 1 {
		t.Errorf("unexpected vector: %v", res.Embedding)
	}
}

func TestEmbed_CorruptCacheEntryIgnored(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1}}
	store := newMemStore()
	cached := New(inner, store, time.Hour, nil, zap.NewNop())

	// Seed a corrupt value under the real key
	key := cached.cacheKey("query")
	store.data[key] = []byte{1, 2, 3} // not a multiple of 4

	if _, err := cached.Embed(context.Background(), "query"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("corrupt entry must fall through to the provider, got %d calls", inner.calls)
	}
}

func TestEmbed_InnerErrorPropagates(t *testing.T) {
	inner := &countingEmbedder{err: domain.ErrEmbeddingProviderError}
	cached := New(inner, newMemStore(), time.Hour, nil, zap.NewNop())

	_, err := cached.Embed(context.Background(), "query")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	vec := []float32{0.1, -2.5, 3.75, 0}
	got, err := bytesToVector(vectorToCacheBytes(vec))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, vec) {
		t.Errorf("round trip mismatch: %v vs %v", got, vec)
	}
}
