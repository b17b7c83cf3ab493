package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
)

func TestObjectStores_MinIOContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcminio.Run(ctx, "minio/minio:RELEASE.2024-01-16T16-07-38Z",
		tcminio.WithUsername("s3sbtest"),
		tcminio.WithPassword("s3sbtest-secret"),
	)
	t.Cleanup(func() {
		if container != nil {
			require.NoError(t, container.Terminate(context.Background()))
		}
	})
	require.NoError(t, err)

	endpoint, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := Config{
		Region:    "us-east-1",
		Endpoint:  "http://" + endpoint,
		AccessKey: "s3sbtest",
		SecretKey: "s3sbtest-secret",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s3Store, err := NewS3Store(ctx, cfg, logger)
	require.NoError(t, err)
	_, err = s3Store.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String("backups")})
	require.NoError(t, err)

	minioStore, err := NewMinIOStore(cfg, logger)
	require.NoError(t, err)

	stores := map[string]interface {
		Upload(ctx context.Context, localPath, bucket, key string) (int64, error)
		Validate(ctx context.Context, bucket string) error
	}{
		"s3":    s3Store,
		"minio": minioStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Validate(ctx, "backups"))

			path := writeArtifact(t, "payload from "+name)
			key := name + "/blog.db.20240102.030405.sql.gz"

			n, err := store.Upload(ctx, path, "backups", key)
			require.NoError(t, err)
			assert.Equal(t, int64(len("payload from "+name)), n)

			head, err := s3Store.client.HeadObject(ctx, &s3.HeadObjectInput{
				Bucket: aws.String("backups"),
				Key:    aws.String(key),
			})
			require.NoError(t, err)
			assert.Equal(t, n, aws.ToInt64(head.ContentLength))
		})
	}

	assert.Error(t, s3Store.Validate(ctx, "missing-bucket"))
	assert.Error(t, minioStore.Validate(ctx, "missing-bucket"))
}
