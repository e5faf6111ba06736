package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is the bucket archived documents are written to
type ObjectStore interface {
	Put(ctx context.Context, objectName string, reader io.Reader, size int64, opts PutOptions) error
	SignedURL(ctx context.Context, objectName, downloadName string, expiry time.Duration) (string, error)
	EnsureBucket(ctx context.Context) error
	BucketExists(ctx context.Context) (bool, error)
	Bucket() string
}

// PutOptions describes an archived object. Metadata is stored as user metadata on the object.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

type minioStore struct {
	client *minio.Client
	bucket string
}

// MinioConfig is the connection to the document bucket
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// NewObjectStore connects to MinIO. No request is made until the first call.
func NewObjectStore(cfg MinioConfig) (ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioStore{client: client, bucket: cfg.Bucket}, nil
}

func (m *minioStore) Bucket() string {
	return m.bucket
}

func (m *minioStore) Put(ctx context.Context, objectName string, reader io.Reader, size int64, opts PutOptions) error {
	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: opts.Metadata,
	})
	return err
}

// SignedURL presigns a GET. A non-empty downloadName makes browsers save the object under that name.
func (m *minioStore) SignedURL(ctx context.Context, objectName, downloadName string, expiry time.Duration) (string, error) {
	params := make(url.Values)
	if downloadName != "" {
		params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	}
	signed, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, expiry, params)
	if err != nil {
		return "", err
	}
	return signed.String(), nil
}

func (m *minioStore) BucketExists(ctx context.Context) (bool, error) {
	return m.client.BucketExists(ctx, m.bucket)
}

func (m *minioStore) EnsureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
}
