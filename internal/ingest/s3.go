package ingest

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures access to the feed bucket.
type S3Options struct {
	Region string
	Bucket string
	Prefix string

	// Endpoint overrides the AWS endpoint, for MinIO and the like.
	Endpoint  string
	PathStyle bool

	// Static credentials. Empty values fall back to the default chain.
	AccessKeyID     string
	SecretAccessKey string
}

// S3Fetcher retrieves feed objects from an S3 bucket.
type S3Fetcher struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Fetcher creates an S3Fetcher for the given bucket.
func NewS3Fetcher(ctx context.Context, opts S3Options) (*S3Fetcher, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				opts.AccessKeyID,
				opts.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})

	return &S3Fetcher{client: client, bucket: opts.Bucket, prefix: opts.Prefix}, nil
}

// Compile-time interface check.
var _ ObjectFetcher = (*S3Fetcher)(nil)

// Fetch downloads one object from the bucket.
func (f *S3Fetcher) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	full := key
	if f.prefix != "" {
		full = path.Join(f.prefix, key)
	}

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(full),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", full, err)
	}
	return out.Body, nil
}
