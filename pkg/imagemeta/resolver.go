package imagemeta

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound reports a resource or stream that does not exist. Extract
	// treats it as a soft miss.
	ErrNotFound = errors.New("imagemeta: resource not found")
	// ErrSizeUnknown reports a resource without a byte length attribute.
	ErrSizeUnknown = errors.New("imagemeta: size unknown")
	// ErrUnavailable wraps every hard failure returned by Extract.
	ErrUnavailable = errors.New("imagemeta: metadata unavailable")
)

// Resolver gives Extract access to the bytes and attributes behind a handle.
type Resolver interface {
	Size(ctx context.Context, handle string) (int64, error)
	Open(ctx context.Context, handle string) (io.ReadCloser, error)
}

// IsSoftMiss reports whether err only signals an absent resource or field.
func IsSoftMiss(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrSizeUnknown)
}
