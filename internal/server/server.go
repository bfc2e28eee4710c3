package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"imagemeta/internal/config"
	"imagemeta/internal/handler"
	"imagemeta/internal/repository"
	"imagemeta/internal/service"
)

type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	log        *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	repo, err := repository.New(&cfg.S3, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s repository: %w", cfg.S3.Driver, err)
	}

	resolver := NewResolver(cfg, repo)
	imageService := service.NewImageService(repo, resolver, cfg, log)
	h := handler.NewHandler(imageService, cfg, log)

	server := &Server{
		httpServer: &http.Server{
			Addr:           cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:        NewRouter(h),
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   writeTimeout(cfg.App),
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		cfg: cfg,
		log: log,
	}

	log.Info("Server created successfully",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.Strings("schemes", resolver.Schemes()))

	return server, nil
}

// writeTimeout leaves room to encode a response after the handlers'
// request deadline has expired.
func writeTimeout(app config.AppConfig) time.Duration {
	return max(app.RequestTimeout, app.ExtractTimeout) + 10*time.Second
}

func NewRouter(h *handler.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/upload", h.UploadImage)
		api.GET("/images", h.ListImages)
		api.GET("/metadata", h.GetMetadata)
		api.POST("/metadata/batch", h.BatchMetadata)
	}

	return router
}

// NewResolver routes s3:// handles to the storage repository. Local files
// are served only below App.LocalRoot, remote URLs only with App.AllowRemote.
func NewResolver(cfg *config.Config, repo repository.ImageRepository) *repository.Mux {
	mux := repository.NewMux()
	mux.Handle("s3", repo)
	if cfg.App.LocalRoot != "" {
		mux.Handle("file", repository.FileResolver{Root: cfg.App.LocalRoot})
	}
	if cfg.App.AllowRemote {
		remote := repository.NewHTTPResolver(cfg.App.ExtractTimeout)
		mux.Handle("http", remote)
		mux.Handle("https", remote)
	}
	return mux
}

func (s *Server) Run() error {
	s.log.Info("Server is running",
		zap.String("host", s.cfg.Server.Host),
		zap.String("port", s.cfg.Server.Port),
		zap.String("address", s.httpServer.Addr))

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
