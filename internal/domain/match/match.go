// Package match holds the search hit value type returned by vector index
// backends. Matches are read-only, request-scoped values.
package match

// Result is a single nearest-neighbor hit.
type Result struct {
	id       string
	score    float64
	content  string
	category string
}

// New creates a search match.
func New(id string, score float64, content, category string) Result {
	return Result{id: id, score: score, content: content, category: category}
}

// ID returns the indexed item identifier.
func (r *Result) ID() string { return r.id }

// Score returns the similarity score, typically in [0,1].
func (r *Result) Score() float64 { return r.score }

// Content returns the "content" metadata field, empty when absent.
func (r *Result) Content() string { return r.content }

// Category returns the "category" metadata field, empty when absent.
func (r *Result) Category() string { return r.category }
