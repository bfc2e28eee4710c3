package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	s3config "imagemeta/internal/config"
	"imagemeta/pkg/imagemeta"
)

var ErrInvalidHandle = errors.New("invalid object handle")

// ImageRepository stores uploaded images and resolves their s3:// handles.
type ImageRepository interface {
	imagemeta.Resolver

	UploadFile(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	ListFiles(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

type ObjectInfo struct {
	Key          string
	Handle       string
	Size         int64
	LastModified time.Time
}

// New builds the repository selected by cfg.Driver.
func New(cfg *s3config.S3Config, log *zap.Logger) (ImageRepository, error) {
	switch cfg.Driver {
	case s3config.DriverMinio:
		return NewMinioRepository(cfg, log)
	case s3config.DriverS3, "":
		return NewS3Repository(cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func ObjectHandle(bucket, key string) string {
	return "s3://" + bucket + "/" + strings.TrimPrefix(key, "/")
}

func ParseObjectHandle(handle string) (bucket, key string, err error) {
	u, err := url.Parse(handle)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidHandle, err)
	}
	if !strings.EqualFold(u.Scheme, "s3") || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("%w: %q has no key", ErrInvalidHandle, handle)
	}
	return u.Host, key, nil
}

// bucketKey parses handle and rejects objects outside bucket.
func bucketKey(handle, bucket string) (string, error) {
	b, key, err := ParseObjectHandle(handle)
	if err != nil {
		return "", err
	}
	if b != bucket {
		return "", fmt.Errorf("%w: bucket %q is not served", ErrInvalidHandle, b)
	}
	return key, nil
}
