package storage

import (
	"context"
	"fmt"
	"io"

	minioSDK "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// MinioConfig locates the bucket attachments are written to.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Minio is a BlobStore backed by an S3-compatible bucket.
type Minio struct {
	client *minioSDK.Client
	bucket string
}

// NewMinio connects and creates the bucket if it does not exist.
func NewMinio(ctx context.Context, cfg MinioConfig, log logrus.FieldLogger) (*Minio, error) {
	client, err := minioSDK.New(cfg.Endpoint, &minioSDK.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: connect to minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minioSDK.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: create bucket %s: %w", cfg.Bucket, err)
		}
		log.WithField("bucket", cfg.Bucket).Info("bucket created")
	} else {
		log.WithField("bucket", cfg.Bucket).Info("bucket already exists")
	}
	return &Minio{client: client, bucket: cfg.Bucket}, nil
}

func (m *Minio) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minioSDK.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("storage: put %s: %w", key, err)
	}
	return nil
}

func (m *Minio) Get(ctx context.Context, key string) (*Object, error) {
	info, err := m.client.StatObject(ctx, m.bucket, key, minioSDK.StatObjectOptions{})
	if err != nil {
		if minioSDK.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: stat %s: %w", key, err)
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minioSDK.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return &Object{Body: obj, Size: info.Size, ContentType: info.ContentType}, nil
}

func (m *Minio) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minioSDK.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: remove %s: %w", key, err)
	}
	return nil
}
