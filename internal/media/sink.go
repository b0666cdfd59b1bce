package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/edgard/tgcollector/internal/config"
)

// LocalSink writes files below a root directory.
type LocalSink struct {
	root string
}

// NewLocalSink creates the root directory if needed.
func NewLocalSink(root string) (*LocalSink, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", root, err)
	}
	return &LocalSink{root: root}, nil
}

// Put writes body to root/key and returns the file path.
func (s *LocalSink) Put(ctx context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", target, err)
	}
	return target, nil
}

// S3Sink uploads files to a bucket, optionally below a key prefix.
type S3Sink struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Sink builds an S3 client with static credentials. A custom endpoint
// switches to path-style addressing for MinIO and similar servers.
func NewS3Sink(cfg config.S3Config) *S3Sink {
	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	awsCfg := aws.Config{Region: cfg.Region}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return &S3Sink{
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
	}
}

// Put uploads body and returns an s3://bucket/key URI.
func (s *S3Sink) Put(ctx context.Context, key string, body io.Reader, _ int64, contentType string) (string, error) {
	objectKey := path.Join(s.prefix, key)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}
	return "s3://" + s.bucket + "/" + objectKey, nil
}

// New wires a Downloader from configuration. It returns nil when media
// downloading is disabled.
func New(cfg config.MediaConfig, files FileAPI, logger *slog.Logger) (Downloader, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	var sink Sink
	switch cfg.Backend {
	case "s3":
		sink = NewS3Sink(cfg.S3)
	default:
		local, err := NewLocalSink(cfg.Dir)
		if err != nil {
			return nil, err
		}
		sink = local
	}
	return NewTelegramDownloader(files, sink, cfg, logger), nil
}
