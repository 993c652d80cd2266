package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// SyncDir downloads every object under prefix into dest, keeping the key path
// below the prefix. onObject, if set, is called after each download.
func SyncDir(ctx context.Context, provider Provider, bucket, prefix, dest string, onObject func(Object)) (int, error) {
	count := 0
	for obj, err := range provider.IterObjects(ctx, bucket, prefix) {
		if err != nil {
			return count, fmt.Errorf("error listing %s/%s: %w", bucket, prefix, err)
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(obj.Name, prefix), "/")
		if rel == "" || strings.HasSuffix(obj.Name, "/") {
			continue
		}

		target := filepath.Join(dest, filepath.FromSlash(rel))
		if r, err := filepath.Rel(dest, target); err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			return count, fmt.Errorf("object key %q escapes destination %s", obj.Name, dest)
		}

		if err := provider.DownloadObject(ctx, bucket, obj.Name, target); err != nil {
			return count, err
		}
		slog.Debug("synced object", "bucket", bucket, "key", obj.Name, "dest", target)

		count++
		if onObject != nil {
			onObject(obj)
		}
	}
	return count, nil
}
