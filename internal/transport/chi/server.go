// Package chi wires the MCP dispatch surface onto a chi router.
package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mcpgw/internal/domain"
	healthuc "github.com/kailas-cloud/mcpgw/internal/usecase/health"
	toolsuc "github.com/kailas-cloud/mcpgw/internal/usecase/tools"
	"github.com/kailas-cloud/mcpgw/internal/version"
)

// MCP methods understood by the dispatcher.
const (
	MethodToolsList = "tools/list"
	MethodToolsCall = "tools/call"
)

// Server handles the gateway's HTTP surface.
type Server struct {
	tools      *toolsuc.Service
	health     *healthuc.Service
	serverName string
	logger     *zap.Logger
}

// NewServer creates an HTTP server.
func NewServer(tools *toolsuc.Service, health *healthuc.Service, serverName string, logger *zap.Logger) *Server {
	return &Server{
		tools:      tools,
		health:     health,
		serverName: serverName,
		logger:     logger,
	}
}

// Routes registers all handlers on the router. Unknown paths and methods get
// the plain-text usage banner with status 200.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Get("/readyz", s.handleReadiness)
	r.Post("/mcp", s.handleMCP)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.NotFound(s.handleBanner)
	r.MethodNotAllowed(s.handleBanner)
}

// mcpRequest is the inbound dispatch envelope.
type mcpRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// toolCallParams is the params shape for tools/call.
type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type toolListResponse struct {
	Tools []toolsuc.Tool `json:"tools"`
}

// handleMCP classifies and executes one dispatch request. Every failure,
// from a malformed body to an upstream error, maps uniformly to
// 500 {"error": message}.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	var req mcpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDispatchError(w, fmt.Errorf("Invalid request body: %w", err))
		return
	}

	switch req.Method {
	case MethodToolsList:
		writeJSON(w, http.StatusOK, toolListResponse{Tools: s.tools.List()})

	case MethodToolsCall:
		var params toolCallParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				writeDispatchError(w, fmt.Errorf("Invalid tool call params: %w", err))
				return
			}
		}

		result, err := s.tools.Call(r.Context(), params.Name, params.Arguments)
		if err != nil {
			s.logger.Warn("tool call failed",
				zap.String("tool", params.Name),
				zap.Error(err),
			)
			writeDispatchError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	default:
		writeDispatchError(w, domain.NewUnsupportedMethod(req.Method))
	}
}

// handleHealth reports liveness with a fixed shape.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"server":  s.serverName,
		"version": version.Version,
	})
}

// handleReadiness runs collaborator checks; degraded backends yield 503.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": string(report.Status),
		"checks": checks,
	})
}

// handleBanner answers anything outside the API surface with usage text.
func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s %s\n\nUsage:\n  GET  /health   liveness\n  GET  /readyz   readiness\n  POST /mcp      MCP dispatch (tools/list, tools/call)\n  GET  /metrics  Prometheus metrics\n",
		s.serverName, version.Version)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDispatchError emits the uniform 500 {"error": message} envelope.
func writeDispatchError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": err.Error(),
	})
}
