package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"imagemeta/pkg/imagemeta"
)

const DefaultUserAgent = "imagemeta/1.0"

// HTTPResolver resolves http:// and https:// handles. Size comes from a HEAD
// request, streams from GET.
type HTTPResolver struct {
	Client    *http.Client
	UserAgent string
}

func NewHTTPResolver(timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: DefaultUserAgent,
	}
}

func (h *HTTPResolver) do(ctx context.Context, method, handle string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, handle, nil)
	if err != nil {
		return nil, err
	}
	ua := h.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "image/*, */*")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

func (h *HTTPResolver) Size(ctx context.Context, handle string) (int64, error) {
	resp, err := h.do(ctx, http.MethodHead, handle)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return 0, imagemeta.ErrNotFound
	case resp.StatusCode == http.StatusMethodNotAllowed:
		return 0, imagemeta.ErrSizeUnknown
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return 0, fmt.Errorf("HEAD %s: %s", handle, resp.Status)
	}

	if resp.ContentLength < 0 {
		return 0, imagemeta.ErrSizeUnknown
	}
	return resp.ContentLength, nil
}

func (h *HTTPResolver) Open(ctx context.Context, handle string) (io.ReadCloser, error) {
	resp, err := h.do(ctx, http.MethodGet, handle)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		resp.Body.Close()
		return nil, imagemeta.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", handle, resp.Status)
	}

	return resp.Body, nil
}
