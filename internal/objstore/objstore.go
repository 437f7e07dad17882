// Package objstore provides object storage backends implementing
// domain.ObjectStore for GCS, S3-compatible, and Azure Blob storage.
package objstore

import (
	"context"
	"fmt"

	"lakeflow/internal/config"
	"lakeflow/internal/domain"
)

// New builds the object store backend selected by cfg.ObjectStore.
func New(ctx context.Context, cfg *config.Config) (domain.ObjectStore, error) {
	switch cfg.ObjectStore {
	case config.StoreGCS:
		return NewGCSStore(ctx, cfg.GCSCredentials)
	case config.StoreS3:
		return NewS3Store(cfg)
	case config.StoreAzure:
		return NewAzureStore(cfg.AzureAccountName, cfg.AzureAccountKey)
	default:
		return nil, fmt.Errorf("unknown object store backend %q", cfg.ObjectStore)
	}
}
