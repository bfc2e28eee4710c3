package domain

import (
	"time"

	"imagemeta/pkg/imagemeta"
)

type Image struct {
	ID           string        `json:"id"`
	OriginalName string        `json:"original_name"`
	Handle       string        `json:"handle"`
	Size         int64         `json:"size"`
	ContentType  string        `json:"content_type"`
	UploadedAt   time.Time     `json:"uploaded_at"`
	Metadata     *MetadataView `json:"metadata,omitempty"`
}

// MetadataView is the transport form of imagemeta.Metadata, with the derived
// values filled in.
type MetadataView struct {
	imagemeta.Metadata `yaml:",inline"`

	OrientationName string  `json:"orientation_name" yaml:"orientation_name"`
	Flipped         bool    `json:"flipped" yaml:"flipped"`
	SizeReadable    string  `json:"size_readable" yaml:"size_readable"`
	AspectRatio     float64 `json:"aspect_ratio" yaml:"aspect_ratio"`
}

func NewMetadataView(m imagemeta.Metadata) *MetadataView {
	return &MetadataView{
		Metadata:        m,
		OrientationName: m.Orientation.String(),
		Flipped:         m.Orientation.Flipped(),
		SizeReadable:    m.SizeReadable(),
		AspectRatio:     m.AspectRatio(),
	}
}

type MetadataResult struct {
	Handle   string        `json:"handle" yaml:"handle"`
	Metadata *MetadataView `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r MetadataResult) OK() bool {
	return r.Error == ""
}
