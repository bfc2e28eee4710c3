package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverS3    = "s3"
	DriverMinio = "minio"
)

type Config struct {
	Server ServerConfig
	S3     S3Config
	App    AppConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type S3Config struct {
	Driver          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
}

type AppConfig struct {
	LocalRoot      string
	AllowRemote    bool
	MaxUploadSize  int64
	AllowedFormats []string
	ExtractTimeout time.Duration
	RequestTimeout time.Duration
	MaxConcurrency int
}

type LogConfig struct {
	Level string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.SetDefault("SERVER_HOST", "localhost")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("STORAGE_DRIVER", DriverS3)
	viper.SetDefault("S3_ENDPOINT", "localhost:9000")
	viper.SetDefault("S3_ACCESS_KEY_ID", "minioadmin")
	viper.SetDefault("S3_SECRET_ACCESS_KEY", "minioadmin")
	viper.SetDefault("S3_USE_SSL", false)
	viper.SetDefault("S3_BUCKET_NAME", "images")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("APP_LOCAL_ROOT", "")
	viper.SetDefault("APP_ALLOW_REMOTE", false)
	viper.SetDefault("APP_MAX_UPLOAD_SIZE", 10*1024*1024) // 10MB
	viper.SetDefault("APP_ALLOWED_FORMATS", []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"})
	viper.SetDefault("APP_EXTRACT_TIMEOUT", 15*time.Second)
	viper.SetDefault("APP_REQUEST_TIMEOUT", 60*time.Second)
	viper.SetDefault("APP_MAX_CONCURRENCY", 4)
	viper.SetDefault("LOG_LEVEL", "info")

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("SERVER_HOST"),
			Port: viper.GetString("SERVER_PORT"),
		},
		S3: S3Config{
			Driver:          strings.ToLower(viper.GetString("STORAGE_DRIVER")),
			Endpoint:        viper.GetString("S3_ENDPOINT"),
			AccessKeyID:     viper.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: viper.GetString("S3_SECRET_ACCESS_KEY"),
			UseSSL:          viper.GetBool("S3_USE_SSL"),
			BucketName:      viper.GetString("S3_BUCKET_NAME"),
			Region:          viper.GetString("S3_REGION"),
		},
		App: AppConfig{
			LocalRoot:      viper.GetString("APP_LOCAL_ROOT"),
			AllowRemote:    viper.GetBool("APP_ALLOW_REMOTE"),
			MaxUploadSize:  viper.GetInt64("APP_MAX_UPLOAD_SIZE"),
			AllowedFormats: viper.GetStringSlice("APP_ALLOWED_FORMATS"),
			ExtractTimeout: viper.GetDuration("APP_EXTRACT_TIMEOUT"),
			RequestTimeout: viper.GetDuration("APP_REQUEST_TIMEOUT"),
			MaxConcurrency: viper.GetInt("APP_MAX_CONCURRENCY"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := createDirs(cfg); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.S3.Driver {
	case DriverS3, DriverMinio:
	default:
		return fmt.Errorf("unknown storage driver %q", c.S3.Driver)
	}
	if c.S3.BucketName == "" {
		return fmt.Errorf("S3_BUCKET_NAME is required")
	}
	if c.App.MaxUploadSize <= 0 {
		return fmt.Errorf("APP_MAX_UPLOAD_SIZE must be positive")
	}
	if c.App.ExtractTimeout <= 0 {
		return fmt.Errorf("APP_EXTRACT_TIMEOUT must be positive")
	}
	if c.App.RequestTimeout < c.App.ExtractTimeout {
		return fmt.Errorf("APP_REQUEST_TIMEOUT must not be shorter than APP_EXTRACT_TIMEOUT")
	}
	if c.App.MaxConcurrency <= 0 {
		return fmt.Errorf("APP_MAX_CONCURRENCY must be positive")
	}
	return nil
}

// IsAllowedFormat reports whether ext (with leading dot) may be uploaded.
func (a AppConfig) IsAllowedFormat(ext string) bool {
	ext = strings.ToLower(ext)
	for _, f := range a.AllowedFormats {
		if strings.ToLower(f) == ext {
			return true
		}
	}
	return false
}

func createDirs(cfg *Config) error {
	if cfg.App.LocalRoot == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.App.LocalRoot, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", cfg.App.LocalRoot, err)
	}
	return nil
}
