package contentstore

import (
	"context"
	"fmt"

	"heirloom-go/internal/config"
	"heirloom-go/internal/heirloom"
)

// NewStoreFromConfig creates a ContentStore implementation based on the store config type.
func NewStoreFromConfig(ctx context.Context, cfg config.StoreConfig) (heirloom.ContentStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "pinata":
		return NewPinataStore(cfg.PinataAPIKey, cfg.PinataSecretKey, cfg.GatewayURL)
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown content store type: %s", cfg.Type)
	}
}
