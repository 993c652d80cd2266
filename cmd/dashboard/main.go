package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"churn-dashboard/cmd"
	"churn-dashboard/internal/api"
	"churn-dashboard/internal/config"
	"churn-dashboard/internal/core"
	"churn-dashboard/internal/geo"
	"churn-dashboard/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func loadFrame(cfg *config.Config, provider storage.Provider) *geo.Frame {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	frame, err := geo.LoadDataset(ctx, provider, cfg.DataBucket, cfg.DataKey)
	if err != nil {
		slog.Error("churn map disabled, could not load dataset", "bucket", cfg.DataBucket, "key", cfg.DataKey, "error", err)
		return nil
	}
	return frame
}

func createServer(cfg *config.Config, evaluator *core.Evaluator, frame *geo.Frame) *http.Server {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		api.NewBackendService(evaluator).AddRoutes(r)
		api.NewGeoService(frame).AddRoutes(r)
	})

	return &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}
}

func main() {
	cmd.LoadEnvFile()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	logFile := cmd.SetupLogging(cfg, "dashboard")
	defer logFile.Close()

	slog.Info("starting dashboard", "addr", cfg.Addr(), "model_dir", cfg.ModelDir, "model_cache_size", cfg.ModelCacheSize, "debug", cfg.DebugEnabled())

	formats, destroyFormats := cmd.CreateModelFormats(cfg)
	defer destroyFormats()

	registry := core.NewRegistry()
	predictors, err := core.NewPredictorCache(core.NewLoader(cfg.ModelDir, formats...), cfg.ModelCacheSize, registry.Len())
	if err != nil {
		log.Fatalf("failed to create model cache: %v", err)
	}
	defer predictors.Close()

	provider := cmd.CreateStorageProvider(cfg)
	frame := loadFrame(cfg, provider)

	server := createServer(cfg, core.NewEvaluator(registry, predictors), frame)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.Addr(), err)
	}

	slog.Info("server stopped")
}
