package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Host  string `env:"HOST" envDefault:"0.0.0.0"`
	Port  int    `env:"PORT" envDefault:"8050"`
	Debug bool   `env:"DEBUG" envDefault:"true"`

	// Render sets RENDER=true on its hosts; debug output is turned off there.
	Render bool `env:"RENDER" envDefault:"false"`

	LogDir         string        `env:"LOG_DIR" envDefault:"./logs"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`

	ModelDir       string `env:"MODEL_DIR" envDefault:"./models"`
	ModelCacheSize int    `env:"MODEL_CACHE_SIZE" envDefault:"0"`
	ModelBucket    string `env:"MODEL_BUCKET" envDefault:""`
	ModelPrefix    string `env:"MODEL_PREFIX" envDefault:""`

	OnnxRuntimeDylib string `env:"ONNX_RUNTIME_DYLIB"`
	OnnxInputName    string `env:"ONNX_INPUT_NAME" envDefault:"input"`
	OnnxOutputName   string `env:"ONNX_OUTPUT_NAME" envDefault:"logits"`

	DataDir    string `env:"DATA_DIR" envDefault:"./data"`
	DataBucket string `env:"DATA_BUCKET" envDefault:"datasets"`
	DataKey    string `env:"DATA_KEY" envDefault:"churn.csv"`

	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.ModelCacheSize < 0 {
		return nil, fmt.Errorf("invalid MODEL_CACHE_SIZE %d", cfg.ModelCacheSize)
	}

	if cfg.S3EndpointURL != "" && (cfg.S3AccessKeyID == "" || cfg.S3SecretAccessKey == "") {
		slog.Warn("S3_ENDPOINT_URL is set, but AWS_ACCESS_KEY_ID or AWS_SECRET_ACCESS_KEY are missing")
	}

	return &cfg, nil
}

func (c *Config) DebugEnabled() bool {
	return c.Debug && !c.Render
}

func (c *Config) UseS3() bool {
	return c.S3EndpointURL != "" || c.S3AccessKeyID != ""
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
