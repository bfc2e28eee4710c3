// Package imagemeta reads image dimensions, MIME type, byte size and EXIF
// orientation from a resource handle without decoding pixel data.
package imagemeta

import "fmt"

const MimeTypeUnknown = "unknown"

// Metadata is produced once per Extract call and never modified afterwards.
type Metadata struct {
	Width           int         `json:"width" yaml:"width"`
	Height          int         `json:"height" yaml:"height"`
	MimeType        string      `json:"mime_type" yaml:"mime_type"`
	SizeInBytes     int64       `json:"size_in_bytes" yaml:"size_in_bytes"`
	Orientation     Orientation `json:"orientation" yaml:"orientation"`
	RotationDegrees int         `json:"rotation_degrees" yaml:"rotation_degrees"`
}

func (m Metadata) SizeReadable() string {
	return fmt.Sprintf("%d KB", m.SizeInBytes/1024)
}

// AspectRatio is 0 when the height is unknown.
func (m Metadata) AspectRatio() float64 {
	if m.Height == 0 {
		return 0
	}
	return float64(m.Width) / float64(m.Height)
}
