package filestorage

import (
	"context"
	"fmt"

	"github.com/yigit/offerdesk/internal/config"
)

// DocumentsRoute is where the API serves local documents
const DocumentsRoute = "/documents"

// New builds the storage driver selected in the config
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverLocal:
		baseURL := cfg.Storage.PublicBaseURL
		if baseURL == "" {
			baseURL = cfg.APIBaseURL() + DocumentsRoute
		}
		return NewLocalStorage(cfg.Storage.LocalPath, baseURL)
	case config.StorageDriverS3:
		return NewS3Storage(ctx, S3Config{
			Bucket:        cfg.Storage.Bucket,
			Region:        cfg.Storage.S3Region,
			Endpoint:      cfg.Storage.S3Endpoint,
			AccessKey:     cfg.Storage.S3AccessKey,
			SecretKey:     cfg.Storage.S3SecretKey,
			PathStyle:     cfg.Storage.S3PathStyle,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
