package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sharkusmanch/s3sb/internal/domain"
)

// S3Store implements domain.ObjectStore for AWS S3 or S3-compatible storage.
type S3Store struct {
	client *s3.Client
	logger *slog.Logger
}

// NewS3Store creates an S3Store using the static credentials in cfg.
// Requests are sent once; the SDK retryer is disabled.
func NewS3Store(ctx context.Context, cfg Config, logger *slog.Logger) (*S3Store, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"", // session token
		)),
		config.WithRetryer(func() aws.Retryer {
			return aws.NopRetryer{}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Debug("S3 client initialized",
		"region", region,
		"custom_endpoint", cfg.Endpoint != "",
	)

	return &S3Store{
		client: client,
		logger: logger,
	}, nil
}

// Upload implements domain.ObjectStore.Upload with a single PutObject.
func (s *S3Store) Upload(ctx context.Context, localPath, bucket, key string) (int64, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return 0, &domain.UploadError{Bucket: bucket, Key: key, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, &domain.UploadError{Bucket: bucket, Key: key, Err: err}
	}

	s.logger.Debug("uploading object", "bucket", bucket, "key", key, "bytes", info.Size())

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return 0, &domain.UploadError{Bucket: bucket, Key: key, Err: err}
	}

	return info.Size(), nil
}

// Validate checks that the bucket exists and is accessible.
func (s *S3Store) Validate(ctx context.Context, bucket string) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", bucket, err)
	}
	return nil
}

// Ensure S3Store implements domain.ObjectStore.
var _ domain.ObjectStore = (*S3Store)(nil)
