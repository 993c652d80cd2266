package cmd

import (
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"churn-dashboard/internal/config"
	"churn-dashboard/internal/core"
	"churn-dashboard/internal/storage"

	"github.com/joho/godotenv"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	err := godotenv.Load(configPath)
	if err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

// SetupLogging sends log and slog output to stderr and LOG_DIR/<name>.log. The
// returned file must be closed on exit.
func SetupLogging(cfg *config.Config, name string) *os.File {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := os.MkdirAll(cfg.LogDir, os.ModePerm); err != nil {
		log.Fatalf("error creating directory for log file: %v", err)
	}

	f, err := os.OpenFile(filepath.Join(cfg.LogDir, name+".log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}

	level := slog.LevelInfo
	if cfg.DebugEnabled() {
		level = slog.LevelDebug
	}

	out := io.MultiWriter(f, os.Stderr)
	log.SetOutput(out)
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))

	return f
}

func CreateStorageProvider(cfg *config.Config) storage.Provider {
	if cfg.UseS3() {
		provider, err := storage.NewS3Provider(storage.S3ProviderConfig{
			S3EndpointURL:     cfg.S3EndpointURL,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			S3Region:          cfg.S3Region,
		})
		if err != nil {
			log.Fatalf("failed to create S3 storage provider: %v", err)
		}
		return provider
	}

	provider, err := storage.NewLocalProvider(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to create local storage provider: %v", err)
	}
	return provider
}

// CreateModelFormats returns the artifact formats this process can load and a
// cleanup function. ONNX models are only available when the runtime library is
// configured.
func CreateModelFormats(cfg *config.Config) ([]core.ModelFormat, func()) {
	formats := []core.ModelFormat{core.ForestFormat{}}

	if cfg.OnnxRuntimeDylib == "" {
		slog.Warn("ONNX_RUNTIME_DYLIB not set, neural network models are disabled")
		return formats, func() {}
	}

	destroy, err := core.InitOnnxRuntime(cfg.OnnxRuntimeDylib)
	if err != nil {
		log.Fatalf("%v", err)
	}

	formats = append(formats, core.OnnxFormat{InputName: cfg.OnnxInputName, OutputName: cfg.OnnxOutputName})
	return formats, func() {
		if err := destroy(); err != nil {
			slog.Error("error destroying onnx env", "error", err)
		}
	}
}
