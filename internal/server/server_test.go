package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"imagemeta/internal/config"
	"imagemeta/internal/handler"
	"imagemeta/internal/repository"
	"imagemeta/internal/service"
	"imagemeta/pkg/imagemeta"
)

type emptyRepository struct{}

func (emptyRepository) UploadFile(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", nil
}

func (emptyRepository) ListFiles(context.Context, string) ([]repository.ObjectInfo, error) {
	return nil, nil
}

func (emptyRepository) Size(context.Context, string) (int64, error) {
	return 0, imagemeta.ErrNotFound
}

func (emptyRepository) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, imagemeta.ErrNotFound
}

func TestNewResolverSchemes(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, []string{"s3"}, NewResolver(cfg, emptyRepository{}).Schemes())

	cfg.App.LocalRoot = t.TempDir()
	cfg.App.AllowRemote = true
	assert.Equal(t, []string{"file", "http", "https", "s3"}, NewResolver(cfg, emptyRepository{}).Schemes())
}

func TestRouter(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{ExtractTimeout: time.Second, RequestTimeout: time.Second, MaxConcurrency: 1}}
	svc := service.NewImageService(emptyRepository{}, NewResolver(cfg, emptyRepository{}), cfg, zap.NewNop())
	router := NewRouter(handler.NewHandler(svc, cfg, zap.NewNop()))

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/images", http.StatusOK},
		{http.MethodGet, "/api/metadata?uri=s3://images/images/a.jpg", http.StatusOK},
		{http.MethodGet, "/api/metadata?uri=/etc/passwd", http.StatusUnprocessableEntity},
		{http.MethodGet, "/", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.want, rec.Code, tc.path)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/metadata?uri=s3://images/images/a.jpg", nil))
	assert.True(t, strings.Contains(rec.Body.String(), `"mime_type":"unknown"`))
}

func TestWriteTimeoutOutlastsRequests(t *testing.T) {
	app := config.AppConfig{ExtractTimeout: 15 * time.Second, RequestTimeout: time.Minute}
	assert.Greater(t, writeTimeout(app), app.RequestTimeout)

	app.RequestTimeout = 0
	assert.Greater(t, writeTimeout(app), app.ExtractTimeout)
}
