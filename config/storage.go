package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the object storage settings for recipe images
type S3Config struct {
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	// PublicURL overrides the base of returned object URLs, e.g. a CDN.
	PublicURL        string `koanf:"public_url"`
	UsePathStyle     bool   `koanf:"use_path_style"`
	PublicReadPolicy bool   `koanf:"public_read_policy"`
}

// NewS3Client builds an S3 client. Static credentials and a custom endpoint
// are used when configured (MinIO); otherwise the default AWS chain applies.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// ObjectURL returns the public URL for an object key
func (c S3Config) ObjectURL(key string) string {
	switch {
	case c.PublicURL != "":
		return fmt.Sprintf("%s/%s", strings.TrimRight(c.PublicURL, "/"), key)
	case c.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.Endpoint, "/"), c.Bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", c.Bucket, key)
	}
}

// PublicReadPolicyDocument returns a bucket policy allowing anonymous GetObject
func (c S3Config) PublicReadPolicyDocument() string {
	return `{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Sid": "PublicReadGetObject",
				"Effect": "Allow",
				"Principal": "*",
				"Action": "s3:GetObject",
				"Resource": "arn:aws:s3:::` + c.Bucket + `/*"
			}
		]
	}`
}
