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

	"github.com/kailas-cloud/crmfind/internal/config"
	dbRedis "github.com/kailas-cloud/crmfind/internal/db/redis"
	logpkg "github.com/kailas-cloud/crmfind/internal/logger"
	"github.com/kailas-cloud/crmfind/internal/metrics"
	"github.com/kailas-cloud/crmfind/internal/repository/records"
	"github.com/kailas-cloud/crmfind/internal/repository/searchcache"
	chiTransport "github.com/kailas-cloud/crmfind/internal/transport/chi"
	openaiClient "github.com/kailas-cloud/crmfind/internal/transport/openai"
	healthuc "github.com/kailas-cloud/crmfind/internal/usecase/health"
	parseuc "github.com/kailas-cloud/crmfind/internal/usecase/parse"
	promptuc "github.com/kailas-cloud/crmfind/internal/usecase/prompt"
	resultsuc "github.com/kailas-cloud/crmfind/internal/usecase/results"
	searchuc "github.com/kailas-cloud/crmfind/internal/usecase/search"
	serializeuc "github.com/kailas-cloud/crmfind/internal/usecase/serialize"
	"github.com/kailas-cloud/crmfind/internal/version"
)

func main() {
	// .env is optional; real config comes from YAML + env expansion
	_ = godotenv.Load()

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

	logger.Info("Starting crmfind API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Repositories
	recordsRepo := records.New(store, cfg.Storage.KeyPrefix)

	cache := searchcache.New(
		time.Duration(cfg.Search.CacheTTLSec)*time.Second,
		metrics.SearchCacheTotal,
		logger,
	)
	cache.StartSweeper(time.Duration(cfg.Search.SweepIntervalSec) * time.Second)
	defer cache.Stop()

	// Completion provider
	provName := cfg.LLM.Completion.Provider
	provCfg := cfg.LLM.Providers[provName]
	model, err := openaiClient.NewClient(&openaiClient.Config{
		APIKey:      provCfg.APIKey,
		BaseURL:     provCfg.BaseURL,
		Model:       cfg.LLM.Completion.Model,
		Temperature: cfg.LLM.Completion.Temperature,
		MaxTokens:   cfg.LLM.Completion.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.Completion.TimeoutSec) * time.Second,
		Provider:    provName,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("Failed to create completion client", zap.Error(err))
	}
	logger.Info("Completion client created",
		zap.String("provider", provName),
		zap.String("model", cfg.LLM.Completion.Model),
	)

	// Use case services — composition root
	serializer := serializeuc.New(recordsRepo, recordsRepo, recordsRepo).
		WithLimits(serializeuc.Limits{
			Deals:    cfg.Search.DealLimit,
			Contacts: cfg.Search.ContactLimit,
			Events:   cfg.Search.EventLimit,
		})
	prompts := promptuc.New(cfg.Search.Thresholds())
	parser := parseuc.New()
	assembler := resultsuc.New(recordsRepo, recordsRepo, recordsRepo, logger)
	searchSvc := searchuc.New(cache, serializer, prompts, model, parser, assembler, logger)
	healthSvc := healthuc.New(store, model)

	server := chiTransport.NewServer(searchSvc, recordsRepo, cache, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
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
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

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
