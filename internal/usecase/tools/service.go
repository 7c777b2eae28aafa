// Package tools implements the dispatcher core: two search tools over a
// shared embed-then-query pipeline.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mcpgw/internal/domain"
	"github.com/kailas-cloud/mcpgw/internal/domain/match"
	"github.com/kailas-cloud/mcpgw/internal/logger"
	"github.com/kailas-cloud/mcpgw/internal/metrics"
)

// Content is a single content block in a tool call result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the externally visible tool call envelope.
type Result struct {
	Content []Content `json:"content"`
}

// Service dispatches tool calls to the embed-then-search pipeline.
type Service struct {
	embed  Embedder
	search Searcher
}

// New creates a tool dispatch service.
func New(embed Embedder, search Searcher) *Service {
	return &Service{embed: embed, search: search}
}

// Call executes the named tool. The error messages for missing queries and
// unknown tools are part of the wire contract.
func (s *Service) Call(ctx context.Context, name string, args map[string]any) (Result, error) {
	var (
		res Result
		err error
	)

	switch name {
	case ToolSemanticSearch:
		res, err = s.semanticSearch(ctx, args)
	case ToolIntelligentSearch:
		res, err = s.intelligentSearch(ctx, args)
	default:
		metrics.ToolCallsTotal.WithLabelValues("unknown", "error").Inc()
		return Result{}, domain.NewUnknownTool(name)
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ToolCallsTotal.WithLabelValues(name, status).Inc()

	return res, err
}

// formattedMatch is a match shaped for the machine-readable payload.
// Scores are serialized as 4-decimal strings for wire compatibility.
type formattedMatch struct {
	ID       string `json:"id"`
	Score    string `json:"score"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type semanticPayload struct {
	Query        string           `json:"query"`
	ResultsCount int              `json:"resultsCount"`
	Results      []formattedMatch `json:"results"`
}

type intelligentPayload struct {
	Query            string           `json:"query"`
	ResultsCount     int              `json:"resultsCount"`
	SearchResults    []formattedMatch `json:"searchResults"`
	SynthesisContext string           `json:"synthesisContext"`
}

func (s *Service) semanticSearch(ctx context.Context, args map[string]any) (Result, error) {
	query, err := queryArg(args)
	if err != nil {
		return Result{}, err
	}

	matches, err := s.pipeline(ctx, query, effectiveTopK(args, defaultSemanticTopK))
	if err != nil {
		return Result{}, err
	}

	return textResult(semanticPayload{
		Query:        query,
		ResultsCount: len(matches),
		Results:      formatMatches(matches),
	})
}

func (s *Service) intelligentSearch(ctx context.Context, args map[string]any) (Result, error) {
	query, err := queryArg(args)
	if err != nil {
		return Result{}, err
	}

	matches, err := s.pipeline(ctx, query, effectiveTopK(args, defaultIntelligentTopK))
	if err != nil {
		return Result{}, err
	}

	return textResult(intelligentPayload{
		Query:            query,
		ResultsCount:     len(matches),
		SearchResults:    formatMatches(matches),
		SynthesisContext: synthesisContext(query, matches),
	})
}

// pipeline embeds the query, then runs the KNN search. The two calls are
// strictly sequential and never retried.
func (s *Service) pipeline(ctx context.Context, query string, topK int) ([]match.Result, error) {
	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	logger.FromContext(ctx).Debug("query embedded",
		zap.Int("dimensions", len(embResult.Embedding)),
		zap.Int("top_k", topK),
	)

	matches, err := s.search.Query(ctx, embResult.Embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("query vector index: %w", err)
	}
	return matches, nil
}

func queryArg(args map[string]any) (string, error) {
	q, _ := args["query"].(string)
	if q == "" {
		return "", domain.ErrQueryRequired
	}
	return q, nil
}

// effectiveTopK clamps the requested size at maxTopK. Values below 1 pass
// through unchanged: the index decides what to do with them. Current
// behavior, not a guaranteed contract.
func effectiveTopK(args map[string]any, def int) int {
	k := def
	if v, ok := args["topK"].(float64); ok {
		k = int(v)
	}
	if k > maxTopK {
		k = maxTopK
	}
	return k
}

func formatMatches(matches []match.Result) []formattedMatch {
	out := make([]formattedMatch, len(matches))
	for i := range matches {
		m := &matches[i]
		out[i] = formattedMatch{
			ID:       m.ID(),
			Score:    fmt.Sprintf("%.4f", m.Score()),
			Content:  m.Content(),
			Category: m.Category(),
		}
	}
	return out
}

// synthesisContext builds the prompt block fed to a downstream model by the
// caller. Relevance here is rendered at 2 decimals while searchResults keeps
// 4; the asymmetry is a wire-compatibility requirement.
func synthesisContext(query string, matches []match.Result) string {
	blocks := make([]string, len(matches))
	for i := range matches {
		m := &matches[i]
		blocks[i] = fmt.Sprintf("[%d] Relevance: %.2f\nContent: %s\nCategory: %s",
			i+1, m.Score(), m.Content(), m.Category())
	}

	return fmt.Sprintf(
		"Answer the following question using the search results below.\n\n"+
			"Question: %s\n\n"+
			"Search results:\n%s\n\n"+
			"Provide a direct, concise answer using only the information above.",
		query, strings.Join(blocks, "\n\n"))
}

func textResult(payload any) (Result, error) {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("marshal tool payload: %w", err)
	}
	return Result{Content: []Content{{Type: "text", Text: string(b)}}}, nil
}
