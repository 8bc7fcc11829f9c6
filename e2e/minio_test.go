package e2e_test

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sagarc03/bucketfront"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	minioImage    = "minio/minio:RELEASE.2025-04-22T22-12-26Z"
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
)

var (
	minioOnce      sync.Once
	minioEndpoint  string
	minioErr       error
	minioContainer testcontainers.Container
)

// getSharedMinio returns the endpoint of a MinIO container shared by all tests.
func getSharedMinio(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping MinIO end-to-end test in short mode")
	}

	minioOnce.Do(func() {
		ctx := context.Background()

		minioContainer, minioErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        minioImage,
				ExposedPorts: []string{"9000/tcp"},
				Env: map[string]string{
					"MINIO_ROOT_USER":     minioUser,
					"MINIO_ROOT_PASSWORD": minioPassword,
				},
				Cmd:        []string{"server", "/data"},
				WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
			},
			Started: true,
		})
		if minioErr != nil {
			return
		}

		minioEndpoint, minioErr = minioContainer.PortEndpoint(ctx, "9000/tcp", "http")
	})

	if minioErr != nil {
		t.Fatalf("failed to start minio container: %v", minioErr)
	}

	return minioEndpoint
}

func stopSharedMinio() {
	if minioContainer != nil {
		_ = testcontainers.TerminateContainer(minioContainer)
	}
}

// seedBucket creates bucket and uploads objects keyed by object key.
func seedBucket(t *testing.T, endpoint, bucket string, objects map[string]string) {
	t.Helper()
	ctx := context.Background()

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider(minioUser, minioPassword, ""),
	})

	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		t.Fatalf("create bucket %s: %v", bucket, err)
	}

	for key, body := range objects {
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader([]byte(body)),
			ContentType: aws.String(bucketfront.ContentType(bucketfront.ObjectKey(key))),
		})
		if err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
}
