package repository

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagemeta/pkg/imagemeta"
)

func TestFileResolver(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "photo.jpg"), []byte("0123456789"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "album"), 0755))

	ctx := context.Background()
	r := FileResolver{Root: root}

	cases := []struct {
		name     string
		handle   string
		wantSize int64
		wantErr  error
	}{
		{name: "bare path", handle: "photo.jpg", wantSize: 10},
		{name: "file uri", handle: "file:///photo.jpg", wantSize: 10},
		{name: "escape is confined to root", handle: "../../photo.jpg", wantSize: 10},
		{name: "missing", handle: "missing.jpg", wantErr: imagemeta.ErrNotFound},
		{name: "directory", handle: "album", wantErr: imagemeta.ErrNotFound},
		{name: "empty", handle: "", wantErr: imagemeta.ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			size, err := r.Size(ctx, tc.handle)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)

				_, err = r.Open(ctx, tc.handle)
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantSize, size)

			rc, err := r.Open(ctx, tc.handle)
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, "0123456789", string(data))
		})
	}
}

func TestFileResolverWithoutRoot(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(p, []byte("abc"), 0644))

	size, err := FileResolver{}.Size(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)
}
