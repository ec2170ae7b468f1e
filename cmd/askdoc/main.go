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
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/askdoc/askdoc/internal/chunker"
	"github.com/askdoc/askdoc/internal/config"
	"github.com/askdoc/askdoc/internal/domain"
	"github.com/askdoc/askdoc/internal/extract"
	"github.com/askdoc/askdoc/internal/kv"
	logpkg "github.com/askdoc/askdoc/internal/logger"
	"github.com/askdoc/askdoc/internal/metrics"
	"github.com/askdoc/askdoc/internal/repository/embcache"
	chiTransport "github.com/askdoc/askdoc/internal/transport/chi"
	openaiTransport "github.com/askdoc/askdoc/internal/transport/openai"
	answeruc "github.com/askdoc/askdoc/internal/usecase/answer"
	healthuc "github.com/askdoc/askdoc/internal/usecase/health"
	"github.com/askdoc/askdoc/internal/usecase/pipeline"
	qauc "github.com/askdoc/askdoc/internal/usecase/qa"
	"github.com/askdoc/askdoc/internal/version"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting askdoc API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_model", cfg.LLM.Embedding.Model),
		zap.String("generation_model", cfg.LLM.Generation.Model),
	)

	// Register LLM metrics explicitly (no init())
	metrics.RegisterLLMMetrics()

	// Optional embedding cache. The service works without it; every
	// embedding call just goes to the provider.
	var store *kv.RedisStore
	if cfg.Cache.Enabled {
		store, err = kv.NewRedis(kv.RedisConfig{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := store.Ping(pingCtx); err != nil {
			logger.Warn("Cache not reachable at startup", zap.Error(err))
		}
		cancel()
	}

	// Embedder chain: OpenAI provider, optionally wrapped in the cache.
	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.LLM.Provider.APIKey,
		BaseURL:    cfg.LLM.Provider.BaseURL,
		Model:      cfg.LLM.Embedding.Model,
		Dimensions: cfg.LLM.Embedding.Dimensions,
		Logger:     logger,
	})
	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store,
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.EmbeddingCacheTotal, logger)
	}
	logger.Info("Embedder created",
		zap.String("model", cfg.LLM.Embedding.Model),
		zap.Int("dimensions", cfg.LLM.Embedding.Dimensions),
		zap.Bool("cached", store != nil),
	)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:  cfg.LLM.Provider.APIKey,
		BaseURL: cfg.LLM.Provider.BaseURL,
		Model:   cfg.LLM.Generation.Model,
		Timeout: time.Duration(cfg.LLM.Generation.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	chk, err := chunker.New(chunker.Config{
		ChunkSize: cfg.Chunking.Size,
		Overlap:   cfg.Chunking.Overlap,
		Separator: cfg.Chunking.Separator,
	})
	if err != nil {
		logger.Fatal("Invalid chunking config", zap.Error(err))
	}

	// Use case services — composition root
	answerSvc := answeruc.New(generator, cfg.Retrieval.ContextBudget, cfg.LLM.Generation.MaxTokens, logger)
	factory := func() qauc.DocumentPipeline {
		return pipeline.New(chk, embedder, answerSvc, logger)
	}
	qaSvc := qauc.New(factory, embedder.Model(), cfg.Retrieval.TopK, logger)

	// Pass nil interface (not typed nil pointer!) if no cache is configured.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(base, cachePinger)

	extractor := extract.NewPDF(logger)

	server := chiTransport.NewServer(qaSvc, extractor, healthSvc, logger).
		WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
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
						"code":    "internal_error",
						"message": "internal error",
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
			ctx := logpkg.WithContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
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
