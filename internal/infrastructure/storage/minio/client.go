// Package minio transfers the catalog collections to and from S3-compatible
// object storage.  The survey workflows keep the compiled catalogs and the
// pairing outputs under a shared bucket prefix; local runs bypass this
// package entirely.
package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
	"github.com/aerialops/missionpair/pkg/errors"
)

// connectTimeout bounds the initial reachability probe.
const connectTimeout = 10 * time.Second

// ObjectAPI is the subset of object-storage operations the catalog store
// uses.  GetObject is narrowed to an io.ReadCloser so the store can be
// exercised against a mock.
type ObjectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// Config holds the connection parameters for one bucket.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

// clientAPI adapts *minio.Client to ObjectAPI.
type clientAPI struct {
	c *minio.Client
}

func (a clientAPI) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return a.c.BucketExists(ctx, bucket)
}

func (a clientAPI) GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return a.c.GetObject(ctx, bucket, object, opts)
}

func (a clientAPI) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return a.c.PutObject(ctx, bucket, object, reader, size, opts)
}

func (a clientAPI) StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return a.c.StatObject(ctx, bucket, object, opts)
}

// Connect creates an object-storage client and verifies that the configured
// bucket is reachable before any transfer is attempted.
func Connect(ctx context.Context, cfg Config, log logging.Logger) (ObjectAPI, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorageUnavailable, "failed to create object-storage client")
	}

	probeCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	exists, err := client.BucketExists(probeCtx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorageUnavailable, "failed to reach object storage").
			WithDetail("endpoint=" + cfg.Endpoint)
	}
	if !exists {
		return nil, errors.Newf(errors.CodeStorageUnavailable, "bucket %q does not exist", cfg.Bucket)
	}

	log.Info("object storage connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return clientAPI{c: client}, nil
}
