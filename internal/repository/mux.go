package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"imagemeta/pkg/imagemeta"
)

var ErrUnsupportedScheme = errors.New("unsupported handle scheme")

// Mux routes a handle to the resolver registered for its URI scheme.
// Handles without a scheme are treated as file paths.
type Mux struct {
	resolvers map[string]imagemeta.Resolver
}

func NewMux() *Mux {
	return &Mux{resolvers: make(map[string]imagemeta.Resolver)}
}

func (m *Mux) Handle(scheme string, r imagemeta.Resolver) {
	m.resolvers[strings.ToLower(scheme)] = r
}

func (m *Mux) Schemes() []string {
	schemes := make([]string, 0, len(m.resolvers))
	for s := range m.resolvers {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

func (m *Mux) route(handle string) (imagemeta.Resolver, error) {
	scheme := "file"
	if u, err := url.Parse(handle); err == nil && u.Scheme != "" {
		scheme = strings.ToLower(u.Scheme)
	}

	r, ok := m.resolvers[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	return r, nil
}

func (m *Mux) Size(ctx context.Context, handle string) (int64, error) {
	r, err := m.route(handle)
	if err != nil {
		return 0, err
	}
	return r.Size(ctx, handle)
}

func (m *Mux) Open(ctx context.Context, handle string) (io.ReadCloser, error) {
	r, err := m.route(handle)
	if err != nil {
		return nil, err
	}
	return r.Open(ctx, handle)
}
