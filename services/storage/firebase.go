package storage

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"skillbridge/models"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// FirebaseStorageService implements StorageService on a Firebase (GCS) bucket.
// Objects are private; downloads go through V4 signed URLs.
type FirebaseStorageService struct {
	client     *gcs.Client
	bucketName string
	urlTTL     time.Duration
}

// NewFirebaseStorageService creates a new FirebaseStorageService.
func NewFirebaseStorageService(ctx context.Context, credentialsPath, bucketName string) (*FirebaseStorageService, error) {
	client, err := gcs.NewClient(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &FirebaseStorageService{
		client:     client,
		bucketName: bucketName,
		urlTTL:     DefaultURLTTL,
	}, nil
}

func (s *FirebaseStorageService) Upload(ctx context.Context, path string, file models.FileMeta) (string, error) {
	w := s.client.Bucket(s.bucketName).Object(path).NewWriter(ctx)
	w.ObjectAttrs.ContentType = file.ContentType
	if w.ObjectAttrs.ContentType == "" {
		w.ObjectAttrs.ContentType = mime.TypeByExtension(filepath.Ext(file.Name))
	}
	w.ObjectAttrs.ContentDisposition = fmt.Sprintf("attachment; filename=%q", file.Name)

	if _, err := w.Write(file.Data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}
	return path, nil
}

func (s *FirebaseStorageService) ResolveDownloadURL(ctx context.Context, locator string) (string, error) {
	url, err := s.client.Bucket(s.bucketName).SignedURL(locator, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(s.urlTTL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return url, nil
}

func (s *FirebaseStorageService) Delete(ctx context.Context, locator string) error {
	if err := s.client.Bucket(s.bucketName).Object(locator).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *FirebaseStorageService) Close() error {
	return s.client.Close()
}
