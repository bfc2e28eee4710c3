package repository

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	s3config "imagemeta/internal/config"
	"imagemeta/pkg/imagemeta"
)

type minioRepository struct {
	client     *minio.Client
	bucketName string
	log        *zap.Logger
}

func NewMinioRepository(cfg *s3config.S3Config, log *zap.Logger) (ImageRepository, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		log.Warn("Failed to check bucket", zap.String("bucket", cfg.BucketName), zap.Error(err))
	} else if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, err
		}
		log.Info("Bucket created successfully", zap.String("bucket", cfg.BucketName))
	}

	return &minioRepository{
		client:     client,
		bucketName: cfg.BucketName,
		log:        log,
	}, nil
}

func (r *minioRepository) UploadFile(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	_, err := r.client.PutObject(ctx, r.bucketName, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		r.log.Error("Failed to upload file to MinIO",
			zap.String("key", key),
			zap.Error(err))
		return "", err
	}

	r.log.Info("File uploaded to MinIO",
		zap.String("key", key),
		zap.Int64("size", size))

	return ObjectHandle(r.bucketName, key), nil
}

func (r *minioRepository) ListFiles(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for obj := range r.client.ListObjects(ctx, r.bucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		objects = append(objects, ObjectInfo{
			Key:          obj.Key,
			Handle:       ObjectHandle(r.bucketName, obj.Key),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return objects, nil
}

func (r *minioRepository) Size(ctx context.Context, handle string) (int64, error) {
	key, err := bucketKey(handle, r.bucketName)
	if err != nil {
		return 0, err
	}

	info, err := r.client.StatObject(ctx, r.bucketName, key, minio.StatObjectOptions{})
	if err != nil {
		return 0, minioError(err)
	}
	if info.Size < 0 {
		return 0, imagemeta.ErrSizeUnknown
	}
	return info.Size, nil
}

func (r *minioRepository) Open(ctx context.Context, handle string) (io.ReadCloser, error) {
	key, err := bucketKey(handle, r.bucketName)
	if err != nil {
		return nil, err
	}

	obj, err := r.client.GetObject(ctx, r.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, minioError(err)
	}
	// GetObject is lazy; Stat surfaces a missing key before any read.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, minioError(err)
	}
	return obj, nil
}

func minioError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return imagemeta.ErrNotFound
	}
	return err
}
