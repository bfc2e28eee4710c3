package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagemeta/pkg/imagemeta"
)

func TestMetadataViewJSON(t *testing.T) {
	view := NewMetadataView(imagemeta.Metadata{
		Width:           1920,
		Height:          1080,
		MimeType:        "image/jpeg",
		SizeInBytes:     2097152,
		Orientation:     imagemeta.OrientationRotate90,
		RotationDegrees: 90,
	})

	data, err := json.Marshal(view)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, 1920.0, got["width"])
	assert.Equal(t, "image/jpeg", got["mime_type"])
	assert.Equal(t, 6.0, got["orientation"])
	assert.Equal(t, "rotate-90", got["orientation_name"])
	assert.Equal(t, 90.0, got["rotation_degrees"])
	assert.Equal(t, "2048 KB", got["size_readable"])
	assert.InDelta(t, 1.7778, got["aspect_ratio"], 0.0001)
	assert.Equal(t, false, got["flipped"])
}

func TestMetadataResultOK(t *testing.T) {
	assert.True(t, MetadataResult{Handle: "a"}.OK())
	assert.False(t, MetadataResult{Handle: "a", Error: "metadata unavailable"}.OK())
}
