package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"churn-dashboard/cmd"
	"churn-dashboard/internal/config"
	"churn-dashboard/internal/core"
	"churn-dashboard/internal/storage"

	"github.com/schollz/progressbar/v3"
)

// Downloads MODEL_BUCKET/MODEL_PREFIX into MODEL_DIR and reports which
// registered models are ready to serve.
func main() {
	cmd.LoadEnvFile()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	logFile := cmd.SetupLogging(cfg, "sync_models")
	defer logFile.Close()

	if cfg.ModelBucket == "" {
		log.Fatalf("MODEL_BUCKET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := cmd.CreateStorageProvider(cfg)

	objects, err := provider.ListObjects(ctx, cfg.ModelBucket, cfg.ModelPrefix)
	if err != nil {
		log.Fatalf("failed to list model artifacts: %v", err)
	}

	bar := progressbar.Default(int64(len(objects)), "syncing models")
	count, err := storage.SyncDir(ctx, provider, cfg.ModelBucket, cfg.ModelPrefix, cfg.ModelDir, func(obj storage.Object) {
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	if err != nil {
		log.Fatalf("failed to sync model artifacts after %d objects: %v", count, err)
	}

	slog.Info("synced model artifacts", "bucket", cfg.ModelBucket, "prefix", cfg.ModelPrefix, "dest", cfg.ModelDir, "objects", count)

	loader := core.NewLoader(cfg.ModelDir)
	for _, desc := range core.NewRegistry().Models() {
		path := loader.ArtifactPath(desc)
		if _, err := os.Stat(path); err != nil {
			slog.Warn("model artifact missing after sync", "model_id", desc.ID, "path", path)
			continue
		}
		slog.Info("model artifact ready", "model_id", desc.ID, "name", desc.DisplayName, "path", path)
	}
}
