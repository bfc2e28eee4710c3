package service

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"imagemeta/internal/config"
	"imagemeta/internal/domain"
	"imagemeta/internal/repository"
	"imagemeta/pkg/imagemeta"
)

const imagesPrefix = "images/"

type ImageService interface {
	UploadImage(ctx context.Context, fileBytes []byte, filename, contentType string) (*domain.Image, error)
	DescribeImage(ctx context.Context, handle string) (*domain.MetadataView, error)
	DescribeImages(ctx context.Context, handles []string) []domain.MetadataResult
	ListImages(ctx context.Context, withMetadata bool) ([]domain.Image, error)
}

type imageService struct {
	repo     repository.ImageRepository
	resolver imagemeta.Resolver
	cfg      *config.Config
	log      *zap.Logger
}

// NewImageService wires uploads to repo and metadata lookups to resolver.
// The resolver is expected to route s3:// handles back to repo.
func NewImageService(repo repository.ImageRepository, resolver imagemeta.Resolver, cfg *config.Config, log *zap.Logger) ImageService {
	return &imageService{
		repo:     repo,
		resolver: resolver,
		cfg:      cfg,
		log:      log,
	}
}

func (s *imageService) UploadImage(ctx context.Context, fileBytes []byte, filename, contentType string) (*domain.Image, error) {
	imageID := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(filename))
	key := imagesPrefix + imageID + ext

	handle, err := s.repo.UploadFile(ctx, key, bytes.NewReader(fileBytes), int64(len(fileBytes)), contentType)
	if err != nil {
		return nil, err
	}

	image := &domain.Image{
		ID:           imageID,
		OriginalName: filename,
		Handle:       handle,
		Size:         int64(len(fileBytes)),
		ContentType:  contentType,
		UploadedAt:   time.Now(),
	}

	if view, err := s.DescribeImage(ctx, handle); err != nil {
		s.log.Warn("Uploaded image has no metadata",
			zap.String("handle", handle),
			zap.Error(err))
	} else {
		image.Metadata = view
		if view.MimeType != imagemeta.MimeTypeUnknown {
			image.ContentType = view.MimeType
		}
	}

	s.log.Info("Image uploaded successfully",
		zap.String("id", imageID),
		zap.String("filename", filename),
		zap.Int64("size", image.Size))

	return image, nil
}

func (s *imageService) DescribeImage(ctx context.Context, handle string) (*domain.MetadataView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.App.ExtractTimeout)
	defer cancel()

	start := time.Now()
	m, err := imagemeta.Extract(ctx, s.resolver, handle)
	if err != nil {
		s.log.Error("Failed to extract metadata",
			zap.String("handle", handle),
			zap.Error(err))
		return nil, err
	}

	s.log.Debug("Metadata extracted",
		zap.String("handle", handle),
		zap.String("mime_type", m.MimeType),
		zap.Int("width", m.Width),
		zap.Int("height", m.Height),
		zap.Duration("took", time.Since(start)))

	return domain.NewMetadataView(m), nil
}

func (s *imageService) DescribeImages(ctx context.Context, handles []string) []domain.MetadataResult {
	results := make([]domain.MetadataResult, len(handles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.App.MaxConcurrency)

	for i, handle := range handles {
		g.Go(func() error {
			results[i].Handle = handle
			view, err := s.DescribeImage(gctx, handle)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Metadata = view
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *imageService) ListImages(ctx context.Context, withMetadata bool) ([]domain.Image, error) {
	objects, err := s.repo.ListFiles(ctx, imagesPrefix)
	if err != nil {
		return nil, err
	}

	images := make([]domain.Image, 0, len(objects))
	handles := make([]string, 0, len(objects))
	for _, obj := range objects {
		name := filepath.Base(obj.Key)
		images = append(images, domain.Image{
			ID:           strings.TrimSuffix(name, filepath.Ext(name)),
			OriginalName: name,
			Handle:       obj.Handle,
			Size:         obj.Size,
			ContentType:  contentTypeByExt(name),
			UploadedAt:   obj.LastModified,
		})
		handles = append(handles, obj.Handle)
	}

	if !withMetadata {
		return images, nil
	}

	for i, res := range s.DescribeImages(ctx, handles) {
		if res.Metadata == nil {
			continue
		}
		images[i].Metadata = res.Metadata
		if res.Metadata.MimeType != imagemeta.MimeTypeUnknown {
			images[i].ContentType = res.Metadata.MimeType
		}
	}

	return images, nil
}

func contentTypeByExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	default:
		return "image/jpeg"
	}
}
