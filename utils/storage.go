package utils

import (
	"context"
	"fmt"

	"skillbridge/config"
	"skillbridge/services/storage"
)

// NewStorageService builds the document store selected by STORAGE_BACKEND.
func NewStorageService(ctx context.Context) (storage.StorageService, error) {
	cfg := config.AppConfig
	switch cfg.StorageBackend {
	case "cloudinary":
		return storage.NewCloudinaryStorageService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	case "firebase", "":
		if cfg.FirebaseBucket == "" {
			return nil, fmt.Errorf("FIREBASE_BUCKET is required for the firebase storage backend")
		}
		return storage.NewFirebaseStorageService(ctx, cfg.FirebaseCredentials, cfg.FirebaseBucket)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
