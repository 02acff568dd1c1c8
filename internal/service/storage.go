package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pageza/recipeshare/backend/config"
)

// LocalStore writes images to a directory served under a public path
type LocalStore struct {
	dir        string
	publicPath string
}

// NewLocalStore creates the upload directory if needed
func NewLocalStore(dir, publicPath string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, publicPath: strings.TrimRight(publicPath, "/")}, nil
}

// Put writes data to dir/key and returns publicPath/key
func (l *LocalStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	if strings.Contains(key, "..") || strings.ContainsRune(key, filepath.Separator) {
		return "", fmt.Errorf("invalid image key %q", key)
	}
	if err := os.WriteFile(filepath.Join(l.dir, key), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return l.publicPath + "/" + key, nil
}

// Delete removes dir/key. A missing file is not an error.
func (l *LocalStore) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(l.dir, filepath.Base(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// S3API is the subset of the S3 client used by S3Store
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	PutBucketPolicy(ctx context.Context, params *s3.PutBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error)
}

// S3Store uploads images to an S3 compatible bucket under recipe-images/
type S3Store struct {
	client S3API
	cfg    config.S3Config
}

const s3KeyPrefix = "recipe-images/"

// NewS3Store creates a new S3Store
func NewS3Store(client S3API, cfg config.S3Config) *S3Store {
	return &S3Store{client: client, cfg: cfg}
}

// Put uploads data and returns the object's public URL
func (s *S3Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	objectKey := s3KeyPrefix + key
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.cfg.ObjectURL(objectKey), nil
}

// Delete removes the object for key
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s3KeyPrefix + key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// ApplyPublicReadPolicy grants anonymous read access to the bucket
func (s *S3Store) ApplyPublicReadPolicy(ctx context.Context) error {
	_, err := s.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(s.cfg.Bucket),
		Policy: aws.String(s.cfg.PublicReadPolicyDocument()),
	})
	if err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}
	return nil
}

// NewImageStore builds the store selected by cfg
func NewImageStore(ctx context.Context, cfg config.StorageConfig) (ImageStore, error) {
	if cfg.Backend == config.StorageS3 {
		client, err := config.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		store := NewS3Store(client, cfg.S3)
		if cfg.S3.PublicReadPolicy {
			if err := store.ApplyPublicReadPolicy(ctx); err != nil {
				return nil, err
			}
		}
		return store, nil
	}
	return NewLocalStore(cfg.UploadDir, cfg.PublicPath)
}
