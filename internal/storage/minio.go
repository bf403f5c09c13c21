package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Compile-time check to ensure MinioStorage implements Storage.
var _ Storage = (*MinioStorage)(nil)

const defaultPartSize = 16 << 20

// MinioConfig holds the settings for an S3-compatible MinIO backend.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PartSize  uint64 // multipart chunk size for unknown-length uploads; default 16 MiB
}

// MinioStorage implements Storage using a MinIO (or any S3-compatible) backend.
type MinioStorage struct {
	client   *minio.Client
	bucket   string
	region   string
	partSize uint64
}

// NewMinioStorage creates a MinIO client. It does not touch the network;
// call EnsureNamespace to verify connectivity and create the bucket.
func NewMinioStorage(cfg MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	partSize := cfg.PartSize
	if partSize == 0 {
		partSize = defaultPartSize
	}

	return &MinioStorage{
		client:   client,
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		partSize: partSize,
	}, nil
}

// EnsureNamespace creates the bucket when it is missing.
func (s *MinioStorage) EnsureNamespace(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return minioError("check bucket", s.bucket, err)
	}
	if exists {
		return nil
	}

	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	if err != nil {
		// Lost a creation race with another caller; the bucket is there now.
		if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			return nil
		}
		return minioError("create bucket", s.bucket, err)
	}
	return nil
}

// Put streams content to MinIO under key. With size == SizeUnknown the client
// uploads in PartSize chunks, so at most one chunk is held in memory.
func (s *MinioStorage) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, content, size, minio.PutObjectOptions{
		ContentType: contentTypeFor(key, contentType),
		PartSize:    s.partSize,
	})
	if err != nil {
		return minioError("put object", key, err)
	}
	return nil
}

// Get returns a reader for the object at key. MinIO's GetObject is lazy, so the
// object is stat'ed first to surface a missing key before any bytes are written.
func (s *MinioStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, minioError("get object", key, err)
	}

	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, minioError("get object", key, err)
	}

	return obj, ObjectInfo{Key: key, Size: st.Size, ContentType: st.ContentType}, nil
}

// Delete removes the object at key. RemoveObject succeeds for absent keys,
// so existence is checked first.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		return minioError("delete object", key, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return minioError("delete object", key, err)
	}
	return nil
}

// List returns every key in the bucket in the order MinIO streams them.
func (s *MinioStorage) List(ctx context.Context) ([]string, error) {
	keys := []string{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, minioError("list objects", s.bucket, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// rejectedCodes are S3 error codes that mean the provider refused the request
// rather than failed to serve it.
var rejectedCodes = map[string]bool{
	"AccessDenied":          true,
	"AccountProblem":        true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"QuotaExceeded":         true,
	"EntityTooLarge":        true,
	"XMinioStorageFull":     true,
	"InvalidBucketName":     true,
}

// minioError classifies a minio-go error into the package taxonomy.
func minioError(op, key string, err error) error {
	resp := minio.ToErrorResponse(err)
	return classified(op, key, classifyS3(resp.Code, resp.StatusCode), err)
}

// classifyS3 maps an S3-style error code and HTTP status to a sentinel.
func classifyS3(code string, status int) error {
	switch {
	case code == "NoSuchKey" || code == "NoSuchBucket" || code == "NotFound" || status == http.StatusNotFound:
		return ErrNotFound
	case rejectedCodes[code],
		status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		status == http.StatusRequestEntityTooLarge:
		return ErrRejected
	default:
		return ErrTransport
	}
}

// classified wraps both the sentinel and the provider cause.
func classified(op, key string, kind, err error) error {
	return fmt.Errorf("%s %q: %w: %w", op, key, kind, err)
}
