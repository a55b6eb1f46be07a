package model

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/career-path/internal/storage"
)

// readArtifact loads raw artifact bytes from a local path or an s3:// URI.
func readArtifact(ctx context.Context, store storage.ObjectStore, path string) ([]byte, error) {
	if bucket, key, ok := storage.ParseURI(path); ok {
		if store == nil {
			return nil, fmt.Errorf("artifact %s is remote but no object store is configured", path)
		}
		return store.Get(ctx, bucket, key)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}
