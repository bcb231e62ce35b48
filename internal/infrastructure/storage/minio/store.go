package minio

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
	"github.com/aerialops/missionpair/pkg/errors"
)

const geoJSONContentType = "application/geo+json"

// CatalogStore fetches input catalogs from, and uploads pipeline outputs to,
// one bucket prefix.
type CatalogStore struct {
	api    ObjectAPI
	bucket string
	prefix string
	log    logging.Logger
}

// NewCatalogStore wraps an ObjectAPI for one bucket and prefix.
func NewCatalogStore(api ObjectAPI, bucket, prefix string, log logging.Logger) *CatalogStore {
	return &CatalogStore{api: api, bucket: bucket, prefix: prefix, log: log.Named("catalog-store")}
}

// key resolves an object name under the store's prefix.
func (s *CatalogStore) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return strings.TrimSuffix(s.prefix, "/") + "/" + name
}

// Fetch downloads one object under the prefix and returns its content.  A
// missing object is reported as such, distinct from transfer failures.
func (s *CatalogStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	key := s.key(name)

	if _, err := s.api.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, errors.Newf(errors.CodeStorageObjectMissing, "object %q not found in bucket %q", key, s.bucket)
		}
		return nil, errors.Wrap(err, errors.CodeStorageTransferFailed, "failed to stat object").
			WithDetail("key=" + key)
	}

	obj, err := s.api.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorageTransferFailed, "failed to open object").
			WithDetail("key=" + key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorageTransferFailed, "failed to read object").
			WithDetail("key=" + key)
	}

	s.log.Info("fetched object",
		logging.String("key", key),
		logging.Int("bytes", len(data)))
	return data, nil
}

// Upload writes one object under the prefix.
func (s *CatalogStore) Upload(ctx context.Context, name string, data []byte) error {
	key := s.key(name)

	_, err := s.api.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: geoJSONContentType})
	if err != nil {
		return errors.Wrap(err, errors.CodeStorageTransferFailed, "failed to upload object").
			WithDetail("key=" + key)
	}

	s.log.Info("uploaded object",
		logging.String("key", key),
		logging.Int("bytes", len(data)))
	return nil
}
