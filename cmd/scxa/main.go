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

	"github.com/kailas-cloud/scxa/internal/config"
	"github.com/kailas-cloud/scxa/internal/db/backend"
	dbRedis "github.com/kailas-cloud/scxa/internal/db/redis"
	logpkg "github.com/kailas-cloud/scxa/internal/logger"
	"github.com/kailas-cloud/scxa/internal/metrics"
	"github.com/kailas-cloud/scxa/internal/repository/analytics"
	cellmetadatarepo "github.com/kailas-cloud/scxa/internal/repository/cellmetadata"
	celltyperepo "github.com/kailas-cloud/scxa/internal/repository/celltype"
	"github.com/kailas-cloud/scxa/internal/repository/geneid"
	"github.com/kailas-cloud/scxa/internal/repository/resultcache"
	"github.com/kailas-cloud/scxa/internal/repository/species"
	chiTransport "github.com/kailas-cloud/scxa/internal/transport/chi"
	cacheuc "github.com/kailas-cloud/scxa/internal/usecase/cache"
	cellmetadatauc "github.com/kailas-cloud/scxa/internal/usecase/cellmetadata"
	celltypeuc "github.com/kailas-cloud/scxa/internal/usecase/celltype"
	genesearchuc "github.com/kailas-cloud/scxa/internal/usecase/genesearch"
	healthuc "github.com/kailas-cloud/scxa/internal/usecase/health"
	"github.com/kailas-cloud/scxa/internal/version"
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

	logger.Info("Starting scxa API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("search_driver", cfg.Search.Driver),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	metrics.RegisterSearchMetrics()

	ctx := context.Background()
	store, err := backend.Open(ctx, cfg.Search, logger)
	if err != nil {
		logger.Fatal("Search backend not ready", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to search backend")

	// Pass nil interfaces (not typed nil pointers) when the cache is off:
	// (*resultcache.Cache)(nil) wrapped in an interface != nil.
	var (
		cache       *resultcache.Cache
		genesCache  genesearchuc.Cache
		typesCache  celltypeuc.Cache
		metaOpts    []cellmetadatauc.Option
		invalidator cacheuc.Invalidator
		cachePinger healthuc.Pinger
	)
	if cfg.Cache.Enabled {
		kv, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer kv.Close()
		if err := kv.WaitForReady(ctx, time.Duration(cfg.Search.ReadinessTimeout)*time.Second); err != nil {
			// The cache is optional: keep serving, lookups fall through to the backend.
			logger.Warn("Result cache not ready", zap.Error(err))
		}

		cache = resultcache.New(kv, time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.ResultCacheTotal, logger)
		genesCache, typesCache, invalidator, cachePinger = cache, cache, cache, kv
		metaOpts = append(metaOpts, cellmetadatauc.WithCache(cache))
	}
	metaOpts = append(metaOpts, cellmetadatauc.WithConcurrency(cfg.Metadata.Concurrency))

	// Repositories
	geneRepo := geneid.New(store)
	speciesRepo := species.New(store)
	analyticsRepo := analytics.New(store)
	cellTypeRepo := celltyperepo.New(store)
	metadataRepo := cellmetadatarepo.New(store)

	// Use case services
	genesSvc := genesearchuc.New(geneRepo, speciesRepo, genesCache)
	cellTypesSvc := celltypeuc.New(analyticsRepo, cellTypeRepo, typesCache)
	metadataSvc := cellmetadatauc.New(metadataRepo,
		cellmetadatauc.StaticFields(cfg.Metadata.FieldsOfInterest), metaOpts...)
	cacheSvc := cacheuc.New(invalidator)
	healthSvc := healthuc.New(store, cachePinger)

	server := chiTransport.NewServer(
		genesSvc, cellTypesSvc, metadataSvc, cacheSvc, healthSvc, cfg.Auth.AdminKeys, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
			Code:    chiTransport.ErrorCodeNotFound,
			Message: "route not found",
		})
	})
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
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
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
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line. The route pattern keeps accessions and cell
			// IDs out of the path field; the raw path goes to uri.
			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.String("uri", r.URL.RequestURI()),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
