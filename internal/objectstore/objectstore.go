// Package objectstore wraps the S3-compatible bucket backing the records
// catalog, grounded on ILLUVRSE-Main's internal/audit.S3Archiver
// (client+manager.Uploader construction) and spec §4.4.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	xglog "github.com/radio-aktywne/datarecords/internal/log"
)

// Object is a single catalog entry's metadata.
type Object struct {
	Key          string
	SizeBytes    int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// Config describes how to reach the S3-compatible bucket (spec §6,
// datarecords.s3.* keys).
type Config struct {
	Secure   bool
	Host     string
	Port     int
	User     string
	Password string
	Bucket   string
	Region   string // optional, defaults to "us-east-1" for path-style MinIO-alikes
}

func (c Config) endpoint() string {
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// Client is an ObjectStoreClient backed by an S3-compatible bucket.
type Client struct {
	bucket   string
	s3       *s3.Client
	uploader *manager.Uploader
	log      zerolog.Logger
}

// New builds a Client against the configured bucket, using static
// credentials and path-style addressing (required by most self-hosted
// S3-compatible stores such as MinIO).
func New(ctx context.Context, cfg Config) (*Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.User, cfg.Password, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("objectstore: load aws config: %w", err)
	}

	endpoint := cfg.endpoint()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &Client{
		bucket:   cfg.Bucket,
		s3:       client,
		uploader: manager.NewUploader(client),
		log:      xglog.WithComponent("objectstore").With().Str("bucket", cfg.Bucket).Logger(),
	}, nil
}

// List enumerates every object whose key starts with prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object

	paginator := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Key:          aws.ToString(obj.Key),
				SizeBytes:    aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	return objects, nil
}

// Head returns metadata for key without fetching its body. Returns
// ErrNotFound if the key is absent.
func (c *Client) Head(ctx context.Context, key string) (Object, error) {
	out, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Object{}, classify(err)
	}
	return Object{
		Key:          key,
		SizeBytes:    aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		ETag:         aws.ToString(out.ETag),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// Exists is a convenience wrapper around Head used for conflict checks
// (spec §4.4's "head-before-put").
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.Head(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Get streams the body for key. The caller must close the returned
// ReadCloser.
func (c *Client) Get(ctx context.Context, key string) (io.ReadCloser, Object, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, Object{}, classify(err)
	}
	return out.Body, Object{
		Key:          key,
		SizeBytes:    aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		ETag:         aws.ToString(out.ETag),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// Put streams body to key via the multipart uploader, so callers can pipe a
// subprocess's stdout directly without buffering the whole recording in
// memory (the reason manager.Uploader, not a plain PutObject, is used here).
func (c *Client) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	_, err := c.uploader.Upload(ctx, input)
	if err != nil {
		return classify(err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error (matches S3
// semantics and spec §4.4's idempotent delete).
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if strings.Contains(err.Error(), "StatusCode: 404") || strings.Contains(err.Error(), "NotFound") {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
