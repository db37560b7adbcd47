package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// MediaStorage uploads auction images to an S3-compatible host and
// hands back their public URL. The endpoint and bucket are injected
// through configuration.
type MediaStorage struct {
	client         *minio.Client
	bucket         string
	publicEndpoint string
	log            zerolog.Logger
}

// NewMediaStorage creates a MediaStorage client. The bucket must
// already exist; existence is verified lazily by HealthCheck so a
// temporarily unreachable host does not block startup.
func NewMediaStorage(endpoint, publicEndpoint, accessKey, secretKey, bucket string, useSSL bool, log zerolog.Logger) (*MediaStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create media client: %w", err)
	}

	if publicEndpoint == "" {
		publicEndpoint = endpoint
	}
	publicEndpoint = strings.TrimSuffix(strings.TrimSpace(publicEndpoint), "/")

	return &MediaStorage{
		client:         client,
		bucket:         bucket,
		publicEndpoint: publicEndpoint,
		log:            log,
	}, nil
}

// Upload stores the image under a unique key and returns its public
// URL.
func (s *MediaStorage) Upload(ctx context.Context, content *bytes.Reader, filename, contentType string) (string, error) {
	key := fmt.Sprintf("auctions/%s%s", uuid.New().String(), filepath.Ext(filename))

	_, err := s.client.PutObject(ctx, s.bucket, key, content, content.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	url := s.objectURL(key)
	s.log.Info().Str("filename", filename).Str("key", key).Str("url", url).Msg("image uploaded")
	return url, nil
}

// HealthCheck verifies the media host is reachable and the bucket
// exists.
func (s *MediaStorage) HealthCheck(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("media health check: %w", err)
	}
	if !exists {
		return fmt.Errorf("media bucket %q does not exist", s.bucket)
	}
	return nil
}

func (s *MediaStorage) objectURL(key string) string {
	if strings.Contains(s.publicEndpoint, "://") {
		return fmt.Sprintf("%s/%s/%s", s.publicEndpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s/%s/%s", s.publicEndpoint, s.bucket, key)
}
