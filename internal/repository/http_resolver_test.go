package repository

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagemeta/pkg/imagemeta"
)

func TestHTTPResolver(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/image.jpg", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", "5")
		if r.Method == http.MethodHead {
			return
		}
		w.Write([]byte("hello"))
	})
	mux.HandleFunc("/streamed", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Write([]byte("chunk"))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	r := NewHTTPResolver(5 * time.Second)

	t.Run("ok", func(t *testing.T) {
		size, err := r.Size(ctx, srv.URL+"/image.jpg")
		require.NoError(t, err)
		assert.Equal(t, int64(5), size)

		rc, err := r.Open(ctx, srv.URL+"/image.jpg")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("head not allowed", func(t *testing.T) {
		_, err := r.Size(ctx, srv.URL+"/streamed")
		assert.ErrorIs(t, err, imagemeta.ErrSizeUnknown)
	})

	t.Run("not found", func(t *testing.T) {
		for _, path := range []string{"/missing", "/gone"} {
			_, err := r.Size(ctx, srv.URL+path)
			assert.ErrorIs(t, err, imagemeta.ErrNotFound)
			_, err = r.Open(ctx, srv.URL+path)
			assert.ErrorIs(t, err, imagemeta.ErrNotFound)
		}
	})

	t.Run("server error is hard", func(t *testing.T) {
		_, err := r.Size(ctx, srv.URL+"/broken")
		require.Error(t, err)
		assert.False(t, imagemeta.IsSoftMiss(err))

		_, err = r.Open(ctx, srv.URL+"/broken")
		require.Error(t, err)
		assert.False(t, imagemeta.IsSoftMiss(err))
	})
}
