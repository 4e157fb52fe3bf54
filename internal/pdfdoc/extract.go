// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoc turns the pages of a PDF into document blocks: page text,
// plain-text tables detected in it, and the page's embedded images.
package pdfdoc

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/pdiddy/doc2latex/internal/latex"
	"github.com/pdiddy/doc2latex/pkg/types"
)

// ImageWriter stores an image blob under base plus an extension derived
// from format.
type ImageWriter interface {
	Write(base, format string, data []byte) (types.ExtractedImage, error)
}

// Page is the extracted content of one PDF page.
type Page struct {
	Number int
	Text   string
	Images []types.ExtractedImage
}

// Extractor walks a PDF page by page.
type Extractor struct {
	// Open opens the document; nil selects the default backends.
	Open OpenFunc

	Logger *slog.Logger

	// OnPage, when set, is called after each page with (page, total).
	OnPage func(current, total int)
}

// Extract reads every page of the PDF at path in order, storing each
// page's images through images. Failure to open the document is wrapped in
// types.ErrUnreadable. A page whose text or images cannot be read is logged
// and yields no text or no images respectively.
func (e *Extractor) Extract(ctx context.Context, path string, images ImageWriter) ([]Page, error) {
	open := e.Open
	if open == nil {
		open = Open
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	src, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnreadable, err)
	}
	defer src.Close()

	total := src.NumPages()
	pages := make([]Page, 0, total)
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := Page{Number: n}

		blobs, err := src.PageImages(n)
		if err != nil {
			logger.Warn("skipping page images", "path", path, "page", n, "error", err)
		}
		index := 0
		for _, blob := range blobs {
			if len(blob.Data) == 0 {
				continue
			}
			index++
			img, err := images.Write(fmt.Sprintf("image_p%d_%d", n, index), blob.Format, blob.Data)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", n, err)
			}
			img.Page = n
			page.Images = append(page.Images, img)
		}

		text, err := src.PageText(n)
		if err != nil {
			logger.Warn("page has no readable text", "path", path, "page", n, "error", err)
			text = ""
		}
		page.Text = text

		logger.Debug("extracted page", "page", n, "chars", len(text), "images", len(page.Images))
		pages = append(pages, page)
		if e.OnPage != nil {
			e.OnPage(n, total)
		}
	}
	return pages, nil
}

var blankLine = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)

// Blocks converts pages into blocks: each page's tables and paragraphs in
// text order, then its figures, then a page break.
func Blocks(pages []Page) []types.TextBlock {
	var blocks []types.TextBlock
	for _, page := range pages {
		blocks = append(blocks, TextBlocks(page.Text)...)
		for i := range page.Images {
			blocks = append(blocks, types.Figure(&page.Images[i]))
		}
		blocks = append(blocks, types.PageBreak())
	}
	return blocks
}

// TextBlocks splits raw page text into ruled table blocks and plain
// paragraphs. Paragraphs are separated by blank lines; whitespace inside a
// paragraph collapses to single spaces.
func TextBlocks(text string) []types.TextBlock {
	var blocks []types.TextBlock
	for _, seg := range latex.SplitTables(text) {
		if seg.IsTable() {
			blocks = append(blocks, latex.TableBlock(seg))
			continue
		}
		for _, para := range blankLine.Split(seg.Text, -1) {
			escaped := latex.EscapeText(para)
			if escaped == "" {
				continue
			}
			blocks = append(blocks, types.TextBlock{
				Kind:  types.BlockParagraph,
				Text:  escaped,
				Plain: true,
			})
		}
	}
	return blocks
}
