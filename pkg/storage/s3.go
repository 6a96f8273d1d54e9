package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "go-resume-backend/config"
)

// ObjectStore uploads binary assets (avatars) to S3-compatible storage.
type ObjectStore struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
}

// NewObjectStore builds an S3 client for AWS or any S3-compatible provider
// (Wasabi, R2) when cfg.S3Endpoint is set. Returns nil when storage is not
// configured; callers treat a nil store as "uploads unavailable".
func NewObjectStore(ctx context.Context, cfg *appconfig.Config) (*ObjectStore, error) {
	if cfg.S3Bucket == "" || cfg.S3AccessKeyID == "" {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String("https://" + strings.TrimPrefix(cfg.S3Endpoint, "https://"))
			o.UsePathStyle = true
		}
	})

	return &ObjectStore{
		client:   client,
		bucket:   cfg.S3Bucket,
		region:   cfg.S3Region,
		endpoint: cfg.S3Endpoint,
	}, nil
}

// Upload stores the object and returns its public URL.
func (o *ObjectStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := o.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(o.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put object %s: %w", key, err)
	}
	return o.objectURL(key), nil
}

// Delete removes one object; missing keys are not an error.
func (o *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := o.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete object %s: %w", key, err)
	}
	return nil
}

func (o *ObjectStore) objectURL(key string) string {
	if o.endpoint != "" {
		return fmt.Sprintf("https://%s/%s/%s", strings.TrimPrefix(o.endpoint, "https://"), o.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", o.bucket, o.region, key)
}
