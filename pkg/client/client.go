// Package client provides a small Go client for the mcpgw HTTP surface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a running gateway.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// New creates a gateway client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Error is a gateway error response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("mcpgw: %s (status %d)", e.Message, e.StatusCode)
}

// Health is the /health response.
type Health struct {
	Status  string `json:"status"`
	Server  string `json:"server"`
	Version string `json:"version"`
}

// Tool is a tool descriptor from tools/list.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Content is a single content block in a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the tool call envelope.
type ToolResult struct {
	Content []Content `json:"content"`
}

// GetHealth reports the gateway's liveness.
func (c *Client) GetHealth(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return Health{}, fmt.Errorf("build request: %w", err)
	}

	var h Health
	if err := c.do(req, &h); err != nil {
		return Health{}, err
	}
	return h, nil
}

type mcpRequest struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// ListTools returns the gateway's static tool descriptors.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	var resp struct {
		Tools []Tool `json:"tools"`
	}
	if err := c.dispatch(ctx, mcpRequest{Method: "tools/list"}, &resp); err != nil {
		return nil, err
	}
	return resp.Tools, nil
}

// CallTool executes a named tool with raw arguments.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (ToolResult, error) {
	var result ToolResult
	err := c.dispatch(ctx, mcpRequest{
		Method: "tools/call",
		Params: map[string]any{"name": name, "arguments": args},
	}, &result)
	return result, err
}

// SearchResult is a single formatted match from semantic_search.
type SearchResult struct {
	ID       string `json:"id"`
	Score    string `json:"score"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// SemanticSearchResponse is the decoded semantic_search payload.
type SemanticSearchResponse struct {
	Query        string         `json:"query"`
	ResultsCount int            `json:"resultsCount"`
	Results      []SearchResult `json:"results"`
}

// SemanticSearch runs the semantic_search tool and decodes its payload.
// topK <= 0 keeps the server default.
func (c *Client) SemanticSearch(ctx context.Context, query string, topK int) (SemanticSearchResponse, error) {
	args := map[string]any{"query": query}
	if topK > 0 {
		args["topK"] = topK
	}

	result, err := c.CallTool(ctx, "semantic_search", args)
	if err != nil {
		return SemanticSearchResponse{}, err
	}

	var resp SemanticSearchResponse
	if err := decodeTextPayload(result, &resp); err != nil {
		return SemanticSearchResponse{}, err
	}
	return resp, nil
}

// IntelligentSearchResponse is the decoded intelligent_search payload.
type IntelligentSearchResponse struct {
	Query            string         `json:"query"`
	ResultsCount     int            `json:"resultsCount"`
	SearchResults    []SearchResult `json:"searchResults"`
	SynthesisContext string         `json:"synthesisContext"`
}

// IntelligentSearch runs the intelligent_search tool and decodes its payload.
// topK <= 0 keeps the server default.
func (c *Client) IntelligentSearch(ctx context.Context, query string, topK int) (IntelligentSearchResponse, error) {
	args := map[string]any{"query": query}
	if topK > 0 {
		args["topK"] = topK
	}

	result, err := c.CallTool(ctx, "intelligent_search", args)
	if err != nil {
		return IntelligentSearchResponse{}, err
	}

	var resp IntelligentSearchResponse
	if err := decodeTextPayload(result, &resp); err != nil {
		return IntelligentSearchResponse{}, err
	}
	return resp, nil
}

func decodeTextPayload(result ToolResult, v any) error {
	if len(result.Content) == 0 {
		return fmt.Errorf("mcpgw: empty tool result")
	}
	if err := json.Unmarshal([]byte(result.Content[0].Text), v); err != nil {
		return fmt.Errorf("mcpgw: decode tool payload: %w", err)
	}
	return nil
}

func (c *Client) dispatch(ctx context.Context, req mcpRequest, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mcp", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("mcpgw: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("mcpgw: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return &Error{StatusCode: resp.StatusCode, Message: e.Error}
		}
		return &Error{StatusCode: resp.StatusCode, Message: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("mcpgw: decode response: %w", err)
	}
	return nil
}
