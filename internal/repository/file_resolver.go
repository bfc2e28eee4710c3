package repository

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"imagemeta/pkg/imagemeta"
)

// FileResolver resolves file:// handles and bare paths. With a Root set,
// every path is interpreted relative to it and cannot escape it.
type FileResolver struct {
	Root string
}

func (f FileResolver) path(handle string) (string, error) {
	p := handle
	if strings.HasPrefix(handle, "file:") {
		u, err := url.Parse(handle)
		if err != nil {
			return "", err
		}
		p = u.Path
	}
	if p == "" {
		return "", imagemeta.ErrNotFound
	}
	if f.Root == "" {
		return filepath.Clean(p), nil
	}
	return filepath.Join(f.Root, filepath.Clean("/"+filepath.ToSlash(p))), nil
}

func (f FileResolver) Size(_ context.Context, handle string) (int64, error) {
	p, err := f.path(handle)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(p)
	if err != nil {
		return 0, fileError(err)
	}
	if info.IsDir() {
		return 0, imagemeta.ErrNotFound
	}
	return info.Size(), nil
}

func (f FileResolver) Open(_ context.Context, handle string) (io.ReadCloser, error) {
	p, err := f.path(handle)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(p)
	if err != nil {
		return nil, fileError(err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, imagemeta.ErrNotFound
	}
	return file, nil
}

func fileError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return imagemeta.ErrNotFound
	}
	return err
}
