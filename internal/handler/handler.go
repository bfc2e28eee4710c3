package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"imagemeta/internal/config"
	"imagemeta/internal/service"
	"imagemeta/pkg/imagemeta"
)

const maxBatchSize = 100

type Handler struct {
	service service.ImageService
	cfg     *config.Config
	log     *zap.Logger
}

func NewHandler(service service.ImageService, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
		log:     log,
	}
}

func (h *Handler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		h.log.Error("Failed to get file from form", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}

	if file.Size > h.cfg.App.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	ext := filepath.Ext(file.Filename)
	if !h.cfg.App.IsAllowedFormat(ext) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid file format",
			"allowed": h.cfg.App.AllowedFormats,
		})
		return
	}

	f, err := file.Open()
	if err != nil {
		h.log.Error("Failed to open file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process file"})
		return
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, h.cfg.App.MaxUploadSize))
	if err != nil {
		h.log.Error("Failed to read file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	image, err := h.service.UploadImage(c.Request.Context(), buf, file.Filename, contentType)
	if err != nil {
		h.log.Error("Failed to upload image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Image uploaded successfully",
		"image":   image,
	})
}

func (h *Handler) GetMetadata(c *gin.Context) {
	uri := c.Query("uri")
	if uri == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uri query parameter is required"})
		return
	}

	view, err := h.service.DescribeImage(c.Request.Context(), uri)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, imagemeta.ErrUnavailable) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": "metadata unavailable", "uri": uri})
		return
	}

	c.JSON(http.StatusOK, gin.H{"uri": uri, "metadata": view})
}

type batchRequest struct {
	URIs []string `json:"uris" binding:"required,min=1"`
}

func (h *Handler) BatchMetadata(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uris must be a non-empty list"})
		return
	}
	if len(req.URIs) > maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many uris", "max": maxBatchSize})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.App.RequestTimeout)
	defer cancel()

	results := h.service.DescribeImages(ctx, req.URIs)

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "failed": failed})
}

func (h *Handler) ListImages(c *gin.Context) {
	withMetadata, _ := strconv.ParseBool(c.DefaultQuery("metadata", "false"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.App.RequestTimeout)
	defer cancel()

	images, err := h.service.ListImages(ctx, withMetadata)
	if err != nil {
		h.log.Error("Failed to list images", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list images"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"images": images})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
