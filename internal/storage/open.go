package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dgallion1/resumeparse/internal/config"
)

// Open builds the Store selected by cfg.StorageBackend. Local uploads land in
// <StaticDir>/uploads.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case config.StorageLocal, "":
		return NewLocal(filepath.Join(cfg.StaticDir, "uploads"))
	case config.StorageMinIO:
		return NewMinIO(ctx, MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
	case config.StorageNone:
		return Noop{}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
