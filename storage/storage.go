package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lexandro/bugreport-agent/config"
)

// Uploader copies report artifacts to an S3-compatible bucket.
type Uploader struct {
	client *minio.Client
	bucket string
	region string
	prefix string
	logger *slog.Logger
}

// NewUploader validates cfg and builds the minio client. No request is made until Upload.
func NewUploader(cfg config.ArtifactConfig, logger *slog.Logger) (*Uploader, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("%w: ARTIFACT_S3_ENDPOINT is required for upload", config.ErrInvalidConfig)
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("%w: ARTIFACT_S3_BUCKET is required for upload", config.ErrInvalidConfig)
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("%w: ARTIFACT_S3_ACCESS_KEY and ARTIFACT_S3_SECRET_KEY are required for upload", config.ErrMissingAPIKey)
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Uploader{
		client: client,
		bucket: bucket,
		region: region,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
	}, nil
}

// RunID names one upload: the UTC time of the run.
func RunID(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// ObjectKey returns <prefix>/<runID>/<name>, leaving out an empty prefix.
func ObjectKey(prefix, runID, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return path.Join(runID, name)
	}
	return path.Join(prefix, runID, name)
}

// Upload stores each file under <prefix>/<runID>/<base name>, creating the bucket if needed.
// It returns the object keys written.
func (u *Uploader) Upload(ctx context.Context, runID string, files ...string) ([]string, error) {
	if err := u.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", u.bucket, err)
	}

	keys := make([]string, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return keys, fmt.Errorf("reading %s: %w", file, err)
		}
		key := ObjectKey(u.prefix, runID, filepath.Base(file))
		_, err = u.client.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: contentType(file),
		})
		if err != nil {
			return keys, fmt.Errorf("uploading %s: %w", key, err)
		}
		u.logger.Debug("uploaded artifact", "bucket", u.bucket, "key", key, "bytes", len(data))
		keys = append(keys, key)
	}
	return keys, nil
}

func (u *Uploader) ensureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{Region: u.region})
}

func contentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return "application/json"
	case ".md":
		return "text/markdown; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
