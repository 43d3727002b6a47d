package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"

	"catalog_admin/internal/productform"
)

// MinioStaging garde les uploads en attente dans un bucket MinIO et les
// prévisualise via des URLs présignées.
type MinioStaging struct {
	client     *minio.Client
	bucket     string
	previewTTL time.Duration
}

func NewMinioStaging(client *minio.Client, bucket string, previewTTL time.Duration) *MinioStaging {
	return &MinioStaging{client: client, bucket: bucket, previewTTL: previewTTL}
}

func (m *MinioStaging) Stage(ctx context.Context, key string, f productform.FileInput) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	_, err = m.client.PutObject(ctx, m.bucket, key, rc, f.Size, minio.PutObjectOptions{
		ContentType: f.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return m.signedURL(ctx, key)
}

// signedURL renvoie une URL GET temporaire pour un objet stocké.
func (m *MinioStaging) signedURL(ctx context.Context, key string) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.previewTTL, make(url.Values))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func (m *MinioStaging) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	return obj, nil
}

func (m *MinioStaging) Release(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}
