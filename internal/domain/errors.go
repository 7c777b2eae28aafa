package domain

import "errors"

var (
	// ErrQueryRequired signals a missing or empty query argument.
	// The message text is part of the wire contract.
	ErrQueryRequired = errors.New("Query parameter is required")
	// ErrUnknownTool signals a tool name outside the supported set.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrUnsupportedMethod signals an MCP method outside the supported set.
	ErrUnsupportedMethod = errors.New("unsupported MCP method")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrSearchProviderError signals a vector index failure.
	ErrSearchProviderError = errors.New("vector search provider error")
)

// UnknownToolError wraps ErrUnknownTool with the offending tool name.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string { return "Unknown tool: " + e.Name }

func (e *UnknownToolError) Unwrap() error { return ErrUnknownTool }

// NewUnknownTool creates an unknown tool error.
func NewUnknownTool(name string) error {
	return &UnknownToolError{Name: name}
}

// UnsupportedMethodError wraps ErrUnsupportedMethod with the offending method.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string { return "Unsupported MCP method: " + e.Method }

func (e *UnsupportedMethodError) Unwrap() error { return ErrUnsupportedMethod }

// NewUnsupportedMethod creates an unsupported method error.
func NewUnsupportedMethod(method string) error {
	return &UnsupportedMethodError{Method: method}
}
