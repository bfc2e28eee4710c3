package imagemeta

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxExifScan bounds how many bytes the orientation probe reads from a stream.
const MaxExifScan = 4 << 20

var mimeTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
}

type bounds struct {
	width    int
	height   int
	mimeType string
}

// Extract reads the metadata of the image behind handle. Absent resources
// and fields yield zero values; any other error from r aborts the call with
// an error wrapping ErrUnavailable and no record.
//
// Extract blocks on r and keeps no state between calls.
func Extract(ctx context.Context, r Resolver, handle string) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, unavailable("context", err)
	}

	size, err := readSize(ctx, r, handle)
	if err != nil {
		return Metadata{}, unavailable("size", err)
	}

	b, err := readBounds(ctx, r, handle)
	if err != nil {
		return Metadata{}, unavailable("bounds", err)
	}

	orientation, err := readOrientation(ctx, r, handle)
	if err != nil {
		return Metadata{}, unavailable("orientation", err)
	}

	return Metadata{
		Width:           b.width,
		Height:          b.height,
		MimeType:        b.mimeType,
		SizeInBytes:     size,
		Orientation:     orientation,
		RotationDegrees: orientation.RotationDegrees(),
	}, nil
}

func unavailable(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, step, err)
}

func readSize(ctx context.Context, r Resolver, handle string) (int64, error) {
	size, err := r.Size(ctx, handle)
	if IsSoftMiss(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if size < 0 {
		return 0, nil
	}
	return size, nil
}

func readBounds(ctx context.Context, r Resolver, handle string) (bounds, error) {
	b := bounds{mimeType: MimeTypeUnknown}

	rc, err := open(ctx, r, handle)
	if errors.Is(err, ErrNotFound) {
		return b, nil
	}
	if err != nil {
		return b, err
	}
	defer rc.Close()

	src := &sourceReader{r: rc}
	cfg, format, err := image.DecodeConfig(src)
	if src.err != nil {
		if errors.Is(src.err, ErrNotFound) {
			return b, nil
		}
		return b, src.err
	}
	if err != nil {
		// Readable but not a format we can parse.
		return b, nil
	}

	b.width, b.height = max(cfg.Width, 0), max(cfg.Height, 0)
	if mt, ok := mimeTypes[format]; ok {
		b.mimeType = mt
	}
	return b, nil
}

func readOrientation(ctx context.Context, r Resolver, handle string) (Orientation, error) {
	rc, err := open(ctx, r, handle)
	if errors.Is(err, ErrNotFound) {
		return OrientationUndefined, nil
	}
	if err != nil {
		return OrientationUndefined, err
	}
	defer rc.Close()

	src := &sourceReader{r: io.LimitReader(rc, MaxExifScan)}
	x, _ := decodeExif(src)
	if src.err != nil {
		if errors.Is(src.err, ErrNotFound) {
			return OrientationUndefined, nil
		}
		return OrientationUndefined, src.err
	}
	// goexif may return a usable result together with a parser error.
	if x == nil {
		return OrientationUndefined, nil
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return OrientationUndefined, nil
	}
	v, err := tag.Int(0)
	if err != nil {
		return OrientationUndefined, nil
	}
	return Orientation(v), nil
}

// open treats a nil stream without an error as an absent one.
func open(ctx context.Context, r Resolver, handle string) (io.ReadCloser, error) {
	rc, err := r.Open(ctx, handle)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, ErrNotFound
	}
	return rc, nil
}

func decodeExif(r io.Reader) (x *exif.Exif, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			x, err = nil, fmt.Errorf("exif: %v", rec)
		}
	}()
	return exif.Decode(r)
}

// sourceReader keeps the first error raised by the underlying stream, so
// access failures can be told apart from decoder format errors.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF && s.err == nil {
		s.err = err
	}
	return n, err
}
