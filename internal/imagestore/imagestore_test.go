// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imagestore

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"jpeg":  "jpg",
		".JPG":  "jpg",
		"png":   "png",
		".tiff": "tif",
		"":      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Extension(in), "Extension(%q)", in)
	}
}

func TestWrite(t *testing.T) {
	project := t.TempDir()
	s, err := New(project, false, nil)
	require.NoError(t, err)

	img, err := s.Write("image_p1_1", "jpeg", []byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	assert.Equal(t, "image_p1_1.jpg", img.StoredName)

	data, err := os.ReadFile(filepath.Join(project, Dir, "image_p1_1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
	assert.Len(t, s.Written(), 1)
}

func TestWrite_EmptyData(t *testing.T) {
	s, err := New(t.TempDir(), false, nil)
	require.NoError(t, err)

	_, err = s.Write("image_1", "png", nil)
	assert.Error(t, err)
	assert.Empty(t, s.Written())
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	pal := image.NewPaletted(image.Rect(0, 0, 2, 2), []color.Color{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, pal, nil))
	return buf.Bytes()
}

func TestWrite_PNGFallback(t *testing.T) {
	project := t.TempDir()
	s, err := New(project, true, nil)
	require.NoError(t, err)

	img, err := s.Write("image_2", "gif", gifBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "image_2.png", img.StoredName)

	data, err := os.ReadFile(filepath.Join(project, Dir, "image_2.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestWrite_PNGFallbackKeepsUndecodable(t *testing.T) {
	s, err := New(t.TempDir(), true, nil)
	require.NoError(t, err)

	img, err := s.Write("image_3", "tiff", []byte("not a tiff"))
	require.NoError(t, err)
	assert.Equal(t, "image_3.tif", img.StoredName)
}

func TestWrite_FallbackLeavesIncludableFormats(t *testing.T) {
	s, err := New(t.TempDir(), true, nil)
	require.NoError(t, err)

	img, err := s.Write("image_4", "jpg", []byte{0xff, 0xd8})
	require.NoError(t, err)
	assert.Equal(t, "image_4.jpg", img.StoredName)
}

func TestWrite_FallbackTriesJBIG2(t *testing.T) {
	var logs bytes.Buffer
	s, err := New(t.TempDir(), true, slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)

	img, err := s.Write("image_5", "jbig2", []byte("jbig2 stream"))
	require.NoError(t, err)
	assert.Equal(t, "image_5.jbig2", img.StoredName, "undecodable, kept native")
	assert.Contains(t, logs.String(), "keeping native image encoding")
}
