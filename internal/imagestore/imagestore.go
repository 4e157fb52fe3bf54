// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imagestore writes extracted image blobs into a project's images/
// directory under deterministic names.
package imagestore

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// Dir is the images subdirectory of a LaTeX project.
const Dir = "images"

// includable lists extensions pdflatex can \includegraphics directly.
var includable = map[string]bool{
	"png": true,
	"jpg": true,
	"pdf": true,
	"eps": true,
}

// Store writes images to a single directory.
type Store struct {
	dir         string
	pngFallback bool
	logger      *slog.Logger
	written     []types.ExtractedImage
}

// New creates the images directory under projectDir and returns a Store
// writing into it. With pngFallback, images in formats pdflatex cannot
// include are re-encoded as PNG.
func New(projectDir string, pngFallback bool, logger *slog.Logger) (*Store, error) {
	dir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating images directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, pngFallback: pngFallback, logger: logger}, nil
}

// Dir returns the directory images are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Written returns every image stored so far, in write order.
func (s *Store) Written() []types.ExtractedImage {
	return s.written
}

// Write stores data as <base>.<ext>, where ext is derived from format
// ("jpeg" becomes "jpg"). The returned image carries the stored name; the
// caller fills in the locator.
func (s *Store) Write(base, format string, data []byte) (types.ExtractedImage, error) {
	if len(data) == 0 {
		return types.ExtractedImage{}, fmt.Errorf("image %s: empty data", base)
	}

	ext := Extension(format)
	if s.pngFallback && !includable[ext] {
		if converted, err := reencodePNG(data); err != nil {
			s.logger.Warn("keeping native image encoding", "image", base, "format", ext, "error", err)
		} else {
			data, ext = converted, "png"
		}
	}

	name := base
	if ext != "" {
		name = base + "." + ext
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return types.ExtractedImage{}, fmt.Errorf("writing image %s: %w", name, err)
	}

	img := types.ExtractedImage{StoredName: name}
	s.written = append(s.written, img)
	return img, nil
}

// Extension normalises an image format or file extension to the form used
// in stored names.
func Extension(format string) string {
	ext := strings.ToLower(strings.TrimPrefix(format, "."))
	switch ext {
	case "jpeg", "jpe", "dct":
		return "jpg"
	case "tiff":
		return "tif"
	}
	return ext
}

func reencodePNG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
