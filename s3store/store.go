package s3store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sagarc03/bucketfront"
)

// Config holds the connection settings for a bucket.
type Config struct {
	Bucket       string
	Region       string
	Endpoint     string // Custom endpoint for S3-compatible stores (empty: AWS)
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// Store implements bucketfront.Storage on top of an S3 bucket.
type Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// New creates a Store for cfg.Bucket. optFns are applied to the S3 client
// options after the ones derived from cfg.
func New(ctx context.Context, cfg Config, optFns ...func(*s3.Options)) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("new s3 store: bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("new s3 store: load config: %w", err)
	}

	opts := append([]func(*s3.Options){func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}}, optFns...)

	client := s3.NewFromConfig(awsCfg, opts...)

	return &Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

func (s *Store) Bucket() string {
	return s.bucket
}

// Exists issues a HeadObject for key. Not-found responses, and the 403 S3
// returns for missing keys when the caller lacks ListBucket, report false.
func (s *Store) Exists(ctx context.Context, key bucketfront.ObjectKey) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key.String()),
	})
	if err == nil {
		return true, nil
	}

	if isNotFound(err) {
		return false, nil
	}
	if httpStatus(err) == http.StatusForbidden {
		slog.Debug("head object forbidden, treating as missing", "key", key)
		return false, nil
	}

	return false, fmt.Errorf("head object %s: %w", key, err)
}

// Sign presigns a GET or HEAD request for key.
func (s *Store) Sign(ctx context.Context, method string, key bucketfront.ObjectKey, expires time.Duration) (bucketfront.SignedURL, error) {
	var (
		url string
		err error
	)

	switch method {
	case "", http.MethodGet:
		req, presignErr := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key.String()),
		}, s3.WithPresignExpires(expires))
		if presignErr == nil {
			url = req.URL
		}
		err = presignErr
	case http.MethodHead:
		req, presignErr := s.presign.PresignHeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key.String()),
		}, s3.WithPresignExpires(expires))
		if presignErr == nil {
			url = req.URL
		}
		err = presignErr
	default:
		return "", fmt.Errorf("presign %s: unsupported method %s: %w", key, method, bucketfront.ErrInvalidInput)
	}

	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return bucketfront.SignedURL(url), nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nsk) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}

	return httpStatus(err) == http.StatusNotFound
}

func httpStatus(err error) int {
	var re interface{ HTTPStatusCode() int }
	if errors.As(err, &re) {
		return re.HTTPStatusCode()
	}
	return 0
}
