package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Compile-time check to ensure S3Storage implements Storage.
var _ Storage = (*S3Storage)(nil)

// S3Config holds options for the AWS SDK backend.
type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string // optional; empty uses the AWS default resolver
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	PartSizeMB   int64 // default 16
	Concurrency  int   // default 4
}

// S3Storage implements Storage with aws-sdk-go-v2. Uploads go through the
// multipart upload manager so bodies of unknown length are streamed part by part.
type S3Storage struct {
	client      *s3.Client
	bucket      string
	region      string
	partSizeMB  int64
	concurrency int
}

// NewS3Storage builds a client from the default AWS config chain, overridden by
// any static credentials, region and endpoint in cfg.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.PartSizeMB <= 0 {
		cfg.PartSizeMB = 16
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(cfg.Endpoint))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) { o.UsePathStyle = cfg.UsePathStyle })

	return &S3Storage{
		client:      client,
		bucket:      cfg.Bucket,
		region:      cfg.Region,
		partSizeMB:  cfg.PartSizeMB,
		concurrency: cfg.Concurrency,
	}, nil
}

// EnsureNamespace creates the bucket when HeadBucket reports it missing.
func (s *S3Storage) EnsureNamespace(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if herr := s3Error("check bucket", s.bucket, err); !errors.Is(herr, ErrNotFound) {
		return herr
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	_, err = s.client.CreateBucket(ctx, input)
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return s3Error("create bucket", s.bucket, err)
	}
	return nil
}

// Put uploads content under key using the multipart upload manager.
func (s *S3Storage) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	uploader := manager.NewUploader(s.client, func(u *manager.Uploader) {
		u.PartSize = s.partSizeMB * 1024 * 1024
		u.Concurrency = s.concurrency
	})

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(contentTypeFor(key, contentType)),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := uploader.Upload(ctx, input); err != nil {
		return s3Error("put object", key, err)
	}
	return nil
}

// Get opens the object body for streaming.
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ObjectInfo{}, s3Error("get object", key, err)
	}

	info := ObjectInfo{Key: key, Size: SizeUnknown, ContentType: aws.ToString(out.ContentType)}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	return out.Body, info, nil
}

// Delete removes the object at key. S3 deletes are idempotent, so the key is
// checked with HeadObject first.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s3Error("delete object", key, err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s3Error("delete object", key, err)
	}
	return nil
}

// List pages through ListObjectsV2 and returns every key.
func (s *S3Storage) List(ctx context.Context) ([]string, error) {
	keys := []string{}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s3Error("list objects", s.bucket, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// s3Error classifies an SDK error into the package taxonomy.
func s3Error(op, key string, err error) error {
	var (
		noSuchKey *types.NoSuchKey
		notFound  *types.NotFound
		noBucket  *types.NoSuchBucket
	)
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) || errors.As(err, &noBucket) {
		return classified(op, key, ErrNotFound, err)
	}

	var (
		code   string
		status int
	)
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		status = respErr.HTTPStatusCode()
	}
	return classified(op, key, classifyS3(code, status), err)
}
