// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Image is one embedded image as it appears in the PDF.
type Image struct {
	// Format is the native encoding, e.g. "jpg" or "png".
	Format string
	Data   []byte
}

// Source gives page-level access to a PDF. Pages are 1-based.
type Source interface {
	NumPages() int
	PageText(page int) (string, error)
	PageImages(page int) ([]Image, error)
	Close() error
}

// OpenFunc opens a Source for the PDF at path.
type OpenFunc func(path string) (Source, error)

// fileSource reads text with ledongthuc/pdf and images with pdfcpu. The
// pdfcpu context is built lazily so text-only documents never pay for the
// full validation pass.
type fileSource struct {
	path   string
	file   *os.File
	reader *pdf.Reader

	imgCtx *model.Context
	imgErr error
}

// Open opens the PDF at path with the default backends.
func Open(path string) (Source, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &fileSource{
		path:   path,
		file:   f,
		reader: r,
	}, nil
}

func (s *fileSource) NumPages() int {
	return s.reader.NumPage()
}

// PageText returns the page's text one visual row per line, top to bottom.
// Fonts are resolved from the page's own resources.
func (s *fileSource) PageText(page int) (string, error) {
	p := s.reader.Page(page)
	if p.V.IsNull() || p.V.Key("Contents").Kind() == pdf.Null {
		return "", nil
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		return "", fmt.Errorf("reading text of page %d: %w", page, err)
	}

	lines := make([]textLine, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row.Content, func(i, j int) bool {
			return row.Content[i].X < row.Content[j].X
		})
		var sb strings.Builder
		for _, t := range row.Content {
			sb.WriteString(t.S)
		}
		if strings.TrimSpace(sb.String()) == "" {
			continue
		}
		lines = append(lines, textLine{y: float64(row.Position), text: sb.String()})
	}
	return joinLines(lines), nil
}

// textLine is one row of text at baseline y (PDF space, y grows upwards).
type textLine struct {
	y    float64
	text string
}

// paragraphGap is how many typical line spacings a gap between rows must
// exceed to start a new paragraph.
const paragraphGap = 1.5

// joinLines orders lines top to bottom and joins them with newlines. A gap
// well above the page's typical line spacing becomes a blank line.
func joinLines(lines []textLine) string {
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	gaps := make([]float64, 0, len(lines))
	for i := 1; i < len(lines); i++ {
		gaps = append(gaps, lines[i-1].y-lines[i].y)
	}
	typical := lowerMedian(gaps)

	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
			if typical > 0 && gaps[i-1] > paragraphGap*typical {
				sb.WriteByte('\n')
			}
		}
		sb.WriteString(l.text)
	}
	return sb.String()
}

func lowerMedian(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[(len(sorted)-1)/2]
}

func (s *fileSource) PageImages(page int) ([]Image, error) {
	ctx, err := s.imageContext()
	if err != nil {
		return nil, err
	}
	found, err := pdfcpu.ExtractPageImages(ctx, page, false)
	if err != nil {
		return nil, fmt.Errorf("extracting images of page %d: %w", page, err)
	}

	// Map iteration order is random; object numbers give a stable order.
	objNrs := make([]int, 0, len(found))
	for nr := range found {
		objNrs = append(objNrs, nr)
	}
	sort.Ints(objNrs)

	images := make([]Image, 0, len(objNrs))
	for _, nr := range objNrs {
		img := found[nr]
		if img.Reader == nil {
			continue
		}
		data, err := io.ReadAll(img)
		if err != nil {
			return nil, fmt.Errorf("reading image %d of page %d: %w", nr, page, err)
		}
		images = append(images, Image{Format: img.FileType, Data: data})
	}
	return images, nil
}

func (s *fileSource) imageContext() (*model.Context, error) {
	if s.imgCtx != nil || s.imgErr != nil {
		return s.imgCtx, s.imgErr
	}
	f, err := os.Open(s.path)
	if err != nil {
		s.imgErr = err
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		s.imgErr = fmt.Errorf("pdfcpu read: %w", err)
		return nil, s.imgErr
	}
	s.imgCtx = ctx
	return ctx, nil
}

func (s *fileSource) Close() error {
	return s.file.Close()
}
