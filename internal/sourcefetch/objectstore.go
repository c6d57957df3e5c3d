// Package sourcefetch materializes a project's source tree on local disk
// before the orchestrator's discovery phase walks it, for a process with no
// local checkout that fetches one from object storage first. No command in
// this repository imports it.
package sourcefetch

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/polyglotdex/polyglotdex/internal/config"
)

// ObjectStore wraps a MinIO (or any S3-compatible) bucket used as the
// archive store for uploaded project zips, per SPEC_FULL.md §6's minio-go
// wiring.
type ObjectStore struct {
	mc     *minio.Client
	bucket string
}

func NewObjectStore(cfg config.MinIOConfig) (*ObjectStore, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &ObjectStore{mc: mc, bucket: cfg.Bucket}, nil
}

func (o *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := o.mc.BucketExists(ctx, o.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := o.mc.MakeBucket(ctx, o.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

func (o *ObjectStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64) error {
	if _, err := o.mc.PutObject(ctx, o.bucket, objectName, reader, size, minio.PutObjectOptions{}); err != nil {
		return fmt.Errorf("upload %s: %w", objectName, err)
	}
	return nil
}

func (o *ObjectStore) Download(ctx context.Context, objectName string) (io.ReadCloser, error) {
	obj, err := o.mc.GetObject(ctx, o.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", objectName, err)
	}
	return obj, nil
}

func (o *ObjectStore) Bucket() string { return o.bucket }
