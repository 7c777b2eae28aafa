package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mcpgw/internal/config"
	"github.com/kailas-cloud/mcpgw/internal/db"
	dbRedis "github.com/kailas-cloud/mcpgw/internal/db/redis"
	"github.com/kailas-cloud/mcpgw/internal/domain"
	logpkg "github.com/kailas-cloud/mcpgw/internal/logger"
	"github.com/kailas-cloud/mcpgw/internal/metrics"
	"github.com/kailas-cloud/mcpgw/internal/repository/embcache"
	searchrepo "github.com/kailas-cloud/mcpgw/internal/repository/search"
	chiTransport "github.com/kailas-cloud/mcpgw/internal/transport/chi"
	"github.com/kailas-cloud/mcpgw/internal/transport/embedhttp"
	openaiEmb "github.com/kailas-cloud/mcpgw/internal/transport/openai"
	"github.com/kailas-cloud/mcpgw/internal/transport/vectorhttp"
	healthuc "github.com/kailas-cloud/mcpgw/internal/usecase/health"
	toolsuc "github.com/kailas-cloud/mcpgw/internal/usecase/tools"
	"github.com/kailas-cloud/mcpgw/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting mcpgw",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("search_driver", cfg.Search.Driver),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterToolMetrics()

	ctx := context.Background()

	// Vector index backend
	var (
		searcher     toolsuc.Searcher
		searchPinger healthuc.SearchPinger
		searchStore  db.Store
	)
	switch cfg.Search.Driver {
	case "redis":
		searchStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Search.Addrs,
			Password: cfg.Search.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create search store", zap.Error(err))
		}
		defer searchStore.Close()

		readiness := time.Duration(cfg.Search.ReadinessTimeout) * time.Second
		if err := searchStore.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Search store not ready", zap.Error(err))
		}
		logger.Info("Connected to search store", zap.Strings("addrs", cfg.Search.Addrs))

		searcher = searchrepo.New(searchStore, cfg.Search.Index)
		searchPinger = searchStore
	case "http":
		searcher = vectorhttp.NewSearcher(&vectorhttp.Config{
			URL:     cfg.Search.BaseURL,
			APIKey:  cfg.Search.APIKey,
			Timeout: time.Duration(cfg.Search.TimeoutSec) * time.Second,
			Logger:  logger,
		})
	default:
		logger.Fatal("Unknown search driver", zap.String("driver", cfg.Search.Driver))
	}

	// Embedding provider
	embedder := buildEmbedder(cfg, logger)

	// Query embedding cache
	if cfg.Cache.Enabled {
		cacheStore := searchStore
		if len(cfg.Cache.Addrs) > 0 {
			cacheStore, err = dbRedis.NewStore(dbRedis.Config{
				Addrs:    cfg.Cache.Addrs,
				Password: cfg.Cache.Password,
			})
			if err != nil {
				logger.Fatal("Failed to create cache store", zap.Error(err))
			}
			defer cacheStore.Close()
		}
		ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
		embedder = embcache.New(embedder, cacheStore, ttl, metrics.EmbeddingCacheTotal, logger)
		logger.Info("Query embedding cache enabled", zap.Duration("ttl", ttl))
	}

	// Services
	toolsSvc := toolsuc.New(embedder, searcher)
	healthSvc := healthuc.New(searchPinger, newEmbeddingHealthChecker(embedder))

	server := chiTransport.NewServer(toolsSvc, healthSvc, cfg.Server.Name, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware())
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder selects the embedding provider from config.
func buildEmbedder(cfg config.Config, logger *zap.Logger) domain.Embedder {
	timeout := time.Duration(cfg.Embedding.TimeoutSec) * time.Second

	switch cfg.Embedding.Provider {
	case "http":
		return embedhttp.NewEmbedder(&embedhttp.Config{
			URL:     cfg.Embedding.BaseURL,
			APIKey:  cfg.Embedding.APIKey,
			Model:   cfg.Embedding.Model,
			Timeout: timeout,
			Logger:  logger,
		})
	default:
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})
	}
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
