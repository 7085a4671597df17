package storage

import (
	"bytes"
	"context"
	"fmt"

	"skillbridge/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorageService implements StorageService with authenticated raw uploads.
type CloudinaryStorageService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStorageService(cloudName, apiKey, apiSecret string) (*CloudinaryStorageService, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStorageService{cld: cld}, nil
}

func (s *CloudinaryStorageService) Upload(ctx context.Context, path string, file models.FileMeta) (string, error) {
	params := uploader.UploadParams{
		PublicID:       path,
		ResourceType:   "raw",
		Type:           api.Authenticated,
		Overwrite:      api.Bool(false),
		UniqueFilename: api.Bool(false),
	}
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(file.Data), params)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}
	if result.PublicID == "" {
		return "", fmt.Errorf("no public ID returned")
	}
	return result.PublicID, nil
}

// ResolveDownloadURL builds a signed delivery URL for the authenticated asset.
func (s *CloudinaryStorageService) ResolveDownloadURL(ctx context.Context, locator string) (string, error) {
	a, err := s.cld.File(locator)
	if err != nil {
		return "", fmt.Errorf("failed to get asset: %w", err)
	}
	a.DeliveryType = api.Authenticated
	a.Config.URL.SignURL = true
	url, err := a.String()
	if err != nil {
		return "", fmt.Errorf("failed to get URL string: %w", err)
	}
	return url, nil
}

func (s *CloudinaryStorageService) Delete(ctx context.Context, locator string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     locator,
		ResourceType: "raw",
		Type:         string(api.Authenticated),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
