package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"imagemeta/internal/config"
	"imagemeta/internal/domain"
	"imagemeta/internal/repository"
	"imagemeta/pkg/imagemeta"
)

type extractOptions struct {
	format  string
	root    string
	remote  bool
	timeout time.Duration
}

func newExtractCommand(log *zap.Logger) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <handle>...",
		Short: "Print image metadata for files, URLs or s3:// objects",
		Long: `Reads dimensions, MIME type, size and EXIF orientation for each handle
without decoding pixel data.

Examples:
  imagemeta extract photo.jpg
  imagemeta extract --format yaml file:///srv/images/a.png https://example.com/b.webp
  imagemeta extract s3://images/images/3f2c.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := opts.resolver(args, log)
			if err != nil {
				return err
			}
			return runExtract(cmd.Context(), cmd.OutOrStdout(), resolver, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "output format (json, yaml)")
	cmd.Flags().StringVar(&opts.root, "root", "", "resolve file paths below this directory")
	cmd.Flags().BoolVar(&opts.remote, "remote", true, "allow http:// and https:// handles")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout per handle")

	return cmd
}

func (o *extractOptions) resolver(handles []string, log *zap.Logger) (*repository.Mux, error) {
	mux := repository.NewMux()
	mux.Handle("file", repository.FileResolver{Root: o.root})
	if o.remote {
		remote := repository.NewHTTPResolver(o.timeout)
		mux.Handle("http", remote)
		mux.Handle("https", remote)
	}

	if needsStorage(handles) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		repo, err := repository.New(&cfg.S3, log)
		if err != nil {
			return nil, fmt.Errorf("create %s repository: %w", cfg.S3.Driver, err)
		}
		mux.Handle("s3", repo)
	}

	return mux, nil
}

func needsStorage(handles []string) bool {
	for _, h := range handles {
		if u, err := url.Parse(h); err == nil && strings.EqualFold(u.Scheme, "s3") {
			return true
		}
	}
	return false
}

func runExtract(ctx context.Context, w io.Writer, resolver imagemeta.Resolver, handles []string, opts *extractOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]domain.MetadataResult, 0, len(handles))
	failed := 0
	for _, handle := range handles {
		res := domain.MetadataResult{Handle: handle}

		callCtx, cancel := context.WithTimeout(ctx, opts.timeout)
		m, err := imagemeta.Extract(callCtx, resolver, handle)
		cancel()

		if err != nil {
			res.Error = err.Error()
			failed++
		} else {
			res.Metadata = domain.NewMetadataView(m)
		}
		results = append(results, res)
	}

	if err := writeResults(w, results, opts.format); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d extractions failed", failed, len(handles))
	}
	return nil
}

func writeResults(w io.Writer, results []domain.MetadataResult, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
