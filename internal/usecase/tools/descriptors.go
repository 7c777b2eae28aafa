package tools

// Tool names exposed by the dispatcher.
const (
	ToolSemanticSearch    = "semantic_search"
	ToolIntelligentSearch = "intelligent_search"
)

const (
	defaultSemanticTopK    = 5
	defaultIntelligentTopK = 3
	maxTopK                = 10
)

// Tool is a static tool descriptor with a JSON-schema-shaped input contract.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// descriptors is the fixed tool listing. It never varies at runtime.
var descriptors = []Tool{
	{
		Name:        ToolSemanticSearch,
		Description: "Search the knowledge base by meaning. Embeds the query and returns the most similar indexed items with their metadata.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Natural-language search query",
				},
				"topK": map[string]any{
					"type":        "number",
					"description": "Number of results to return (max 10)",
					"default":     defaultSemanticTopK,
				},
			},
			"required": []string{"query"},
		},
	},
	{
		Name:        ToolIntelligentSearch,
		Description: "Search the knowledge base and package the results into a synthesis prompt for a downstream language model.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Natural-language question to answer",
				},
				"topK": map[string]any{
					"type":        "number",
					"description": "Number of results to ground the answer on (max 10)",
					"default":     defaultIntelligentTopK,
				},
			},
			"required": []string{"query"},
		},
	},
}

// List returns the static tool descriptors.
func (s *Service) List() []Tool {
	return descriptors
}
