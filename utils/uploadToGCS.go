package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// getGoogleClient initializes a Google Cloud Storage client
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC. Set GCS_CREDENTIALS_JSON to provide explicit credentials.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

// GCSStorage writes objects into one bucket.
type GCSStorage struct {
	Bucket        string
	PublicBaseURL string
}

func NewGCSStorage(bucket, publicBaseURL string) (*GCSStorage, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}
	return &GCSStorage{Bucket: bucket, PublicBaseURL: publicBaseURL}, nil
}

// Upload stores data at objectName and returns its access URL.
func (g *GCSStorage) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	wc := client.Bucket(g.Bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to upload bytes to Google Cloud Storage: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}
	return g.URL(objectName), nil
}

// Delete removes objectName; a missing object is not an error.
func (g *GCSStorage) Delete(ctx context.Context, objectName string) error {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.Bucket(g.Bucket).Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}

func (g *GCSStorage) URL(objectName string) string {
	return BuildObjectAccessURL(g.PublicBaseURL, g.Bucket, objectName)
}
