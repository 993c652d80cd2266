package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ModelFormat deserializes one family of model artifacts.
type ModelFormat interface {
	Name() string

	// Extensions lists the file suffixes handled by the format, including the
	// leading dot.
	Extensions() []string

	Load(path string) (Predictor, error)
}

type Loader struct {
	modelDir string
	formats  []ModelFormat
}

func NewLoader(modelDir string, formats ...ModelFormat) *Loader {
	return &Loader{modelDir: modelDir, formats: formats}
}

func (l *Loader) ArtifactPath(desc ModelDescriptor) string {
	return filepath.Join(l.modelDir, desc.Artifact)
}

func (l *Loader) formatFor(path string) (ModelFormat, bool) {
	name := strings.ToLower(filepath.Base(path))

	var (
		best    ModelFormat
		bestLen int
	)
	for _, f := range l.formats {
		for _, ext := range f.Extensions() {
			ext = strings.ToLower(ext)
			if strings.HasSuffix(name, ext) && len(ext) > bestLen {
				best, bestLen = f, len(ext)
			}
		}
	}
	return best, best != nil
}

// Load reads the artifact of desc from disk. A missing file is reported as
// ErrArtifactNotFound and an extension with no registered format as
// ErrUnsupportedFormat; a nil Predictor is never returned without an error.
func (l *Loader) Load(ctx context.Context, desc ModelDescriptor) (Predictor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := l.ArtifactPath(desc)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: model %s at %s", ErrArtifactNotFound, desc.ID, path)
		}
		return nil, fmt.Errorf("error checking model artifact %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: model %s at %s is a directory", ErrArtifactNotFound, desc.ID, path)
	}

	format, ok := l.formatFor(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s (model %s)", ErrUnsupportedFormat, filepath.Ext(path), desc.ID)
	}

	start := time.Now()
	predictor, err := format.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error loading %s model %s: %w", format.Name(), desc.ID, err)
	}
	if predictor == nil {
		return nil, fmt.Errorf("%s loader returned no model for %s", format.Name(), desc.ID)
	}

	slog.Debug("loaded model artifact", "model_id", desc.ID, "format", format.Name(), "path", path, "duration", time.Since(start))

	return predictor, nil
}
