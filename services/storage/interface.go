package storage

import (
	"context"
	"time"

	"skillbridge/models"
)

// StorageService places engagement documents in object storage. The returned
// locator is opaque to callers and only meaningful to the same backend.
type StorageService interface {
	Upload(ctx context.Context, path string, file models.FileMeta) (string, error)
	ResolveDownloadURL(ctx context.Context, locator string) (string, error)
	Delete(ctx context.Context, locator string) error
}

// DefaultURLTTL is how long a resolved download URL stays valid.
const DefaultURLTTL = 15 * time.Minute
