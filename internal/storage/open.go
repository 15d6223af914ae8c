package storage

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"reelgen/internal/config"
)

// Open builds the Store selected by cfg. Relative local roots resolve
// against workspaceRoot.
func Open(ctx context.Context, cfg config.StorageConfig, workspaceRoot string, logger *log.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendS3, "":
		return NewS3(ctx, S3Config{
			Region:       cfg.Region,
			Profile:      cfg.Profile,
			UsePathStyle: cfg.PathStyle,
		}, logger)
	case config.BackendLocal:
		root := cfg.LocalRoot
		if !filepath.IsAbs(root) {
			root = filepath.Join(workspaceRoot, root)
		}
		return NewLocal(root, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
