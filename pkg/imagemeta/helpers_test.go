package imagemeta

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/png"
	"io"
	"testing"
	"testing/iotest"
)

type fakeResolver struct {
	data    []byte
	size    int64
	sizeErr error
	openErr error
	readErr error
	// failCall limits openErr and readErr to the n-th Open call when set.
	failCall  int
	nilStream bool

	calls  int
	opened int
	closed int
}

func (f *fakeResolver) Size(context.Context, string) (int64, error) {
	if f.sizeErr != nil {
		return 0, f.sizeErr
	}
	return f.size, nil
}

func (f *fakeResolver) Open(context.Context, string) (io.ReadCloser, error) {
	f.calls++
	failing := f.failCall == 0 || f.failCall == f.calls

	if f.openErr != nil && failing {
		return nil, f.openErr
	}
	if f.nilStream {
		return nil, nil
	}
	f.opened++

	var r io.Reader = bytes.NewReader(f.data)
	if f.readErr != nil && failing {
		r = iotest.ErrReader(f.readErr)
	}
	return &trackedStream{Reader: r, onClose: func() { f.closed++ }}, nil
}

type trackedStream struct {
	io.Reader
	onClose func()
}

func (s *trackedStream) Close() error {
	s.onClose()
	return nil
}

// buildJPEG returns a minimal baseline JPEG header for the given bounds. A
// non-zero orientation adds an EXIF APP1 segment carrying that tag.
func buildJPEG(t *testing.T, width, height int, orientation uint16) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8})

	buf.Write([]byte{0xFF, 0xE0, 0x00, 0x10})
	buf.WriteString("JFIF\x00")
	buf.Write([]byte{0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00})

	if orientation != 0 {
		tiff := []byte{'I', 'I', 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00}
		tiff = append(tiff, 0x01, 0x00)
		entry := make([]byte, 12)
		binary.LittleEndian.PutUint16(entry[0:], 0x0112)
		binary.LittleEndian.PutUint16(entry[2:], 3)
		binary.LittleEndian.PutUint32(entry[4:], 1)
		binary.LittleEndian.PutUint16(entry[8:], orientation)
		tiff = append(tiff, entry...)
		tiff = append(tiff, 0x00, 0x00, 0x00, 0x00)

		payload := append([]byte("Exif\x00\x00"), tiff...)
		length := len(payload) + 2
		buf.Write([]byte{0xFF, 0xE1, byte(length >> 8), byte(length)})
		buf.Write(payload)
	}

	buf.Write([]byte{0xFF, 0xC0, 0x00, 0x11, 0x08})
	buf.Write([]byte{byte(height >> 8), byte(height), byte(width >> 8), byte(width)})
	buf.Write([]byte{0x03, 0x01, 0x11, 0x00, 0x02, 0x11, 0x00, 0x03, 0x11, 0x00})

	buf.Write([]byte{0xFF, 0xDA, 0x00, 0x0C, 0x03, 0x01, 0x00, 0x02, 0x11, 0x03, 0x11, 0x00, 0x3F, 0x00})
	buf.Write([]byte{0xFF, 0xD9})

	return buf.Bytes()
}

func buildPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
