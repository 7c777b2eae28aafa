package metrics

import "github.com/prometheus/client_golang/prometheus"

// Tool dispatch Prometheus metrics.
var (
	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcpgw",
			Name:      "tool_calls_total",
			Help:      "Total number of tool call dispatches",
		},
		[]string{"tool", "status"},
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mcpgw",
			Name:      "search_request_duration_seconds",
			Help:      "Vector index query duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"driver"},
	)
)

var toolMetricsRegistered bool

// RegisterToolMetrics registers Prometheus tool dispatch metrics. Must be called once from main.
func RegisterToolMetrics() {
	if toolMetricsRegistered {
		return
	}
	prometheus.MustRegister(ToolCallsTotal)
	prometheus.MustRegister(SearchRequestDuration)
	toolMetricsRegistered = true
}
