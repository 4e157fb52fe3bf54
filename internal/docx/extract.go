// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/doc2latex/internal/latex"
	"github.com/pdiddy/doc2latex/pkg/types"
)

// cellLineBreak joins the paragraphs of a table cell.
const cellLineBreak = ` \\ `

// emptyCell stands in for a cell without text.
const emptyCell = " "

var errInvalidText = errors.New("text is not valid UTF-8")

// ImageWriter stores an image blob under base plus an extension derived
// from format.
type ImageWriter interface {
	Write(base, format string, data []byte) (types.ExtractedImage, error)
}

// Extractor converts a .docx package into blocks.
type Extractor struct {
	Logger *slog.Logger

	// OnItem, when set, is called after each paragraph and each table with
	// (done, paragraphs+tables).
	OnItem func(current, total int)
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Extract stores every image part of the package through images, then
// returns the body paragraphs (each followed by its figures) and, after
// all paragraphs, the body tables.
func (e *Extractor) Extract(ctx context.Context, path string, images ImageWriter) ([]types.TextBlock, error) {
	pkg, err := OpenPackage(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnreadable, err)
	}
	defer pkg.Close()

	rels, err := pkg.Relationships()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnreadable, err)
	}
	byRel, err := e.storeImages(pkg, rels, images)
	if err != nil {
		return nil, err
	}

	rc, err := pkg.Open(documentPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnreadable, err)
	}
	doc, err := ParseDocument(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", types.ErrUnreadable, documentPart, err)
	}

	return e.blocks(ctx, doc, byRel)
}

// storeImages writes every image relationship's part as image_{n}.{ext},
// n being the 1-based position of the relationship in the rels part.
func (e *Extractor) storeImages(pkg *Package, rels []Relationship, images ImageWriter) (map[string]*types.ExtractedImage, error) {
	byRel := make(map[string]*types.ExtractedImage)
	for i, rel := range rels {
		if !rel.IsImage() {
			continue
		}
		n := i + 1
		if rel.IsExternal() {
			e.logger().Debug("skipping external image", "rel", rel.ID, "target", rel.Target)
			continue
		}
		data, err := pkg.ReadPart(rel.PartName())
		if err != nil {
			e.logger().Warn("skipping unreadable image part", "rel", rel.ID, "error", err)
			continue
		}
		img, err := images.Write(fmt.Sprintf("image_%d", n), rel.Extension(), data)
		if err != nil {
			return nil, err
		}
		img.RelID = rel.ID
		byRel[rel.ID] = &img
	}
	return byRel, nil
}

func (e *Extractor) blocks(ctx context.Context, doc *Document, byRel map[string]*types.ExtractedImage) ([]types.TextBlock, error) {
	total := len(doc.Paragraphs) + len(doc.Tables)
	done := 0
	progress := func() {
		done++
		if e.OnItem != nil {
			e.OnItem(done, total)
		}
	}

	var blocks []types.TextBlock
	for i, p := range doc.Paragraphs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blocks = append(blocks, e.paragraphBlock(i+1, p))
		for _, id := range p.ImageRefs {
			img, ok := byRel[id]
			if !ok {
				e.logger().Warn("paragraph references unknown image", "paragraph", i+1, "rel", id)
				continue
			}
			blocks = append(blocks, types.Figure(img))
		}
		progress()
	}

	for _, tbl := range doc.Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blocks = append(blocks, TableBlock(tbl))
		progress()
	}
	return blocks, nil
}

// paragraphBlock formats p, falling back to its raw text when the text
// cannot be normalised. ParseDocument already fails on invalid UTF-8, so
// only Paragraph values built by callers can reach the fallback.
func (e *Extractor) paragraphBlock(index int, p Paragraph) types.TextBlock {
	text, err := formatText(p.Text)
	if err != nil {
		e.logger().Warn("writing paragraph unformatted", "paragraph", index, "error", err)
		b := types.Paragraph(strings.ToValidUTF8(p.Text, "\uFFFD"), types.AlignLeft, 0)
		b.Raw = true
		return b
	}
	return types.Paragraph(text, p.Align, p.FontSize)
}

func formatText(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", errInvalidText
	}
	return latex.EscapeText(s), nil
}

// TableBlock converts a table into a bordered table block. Each cell's
// non-empty paragraphs are escaped and joined with a line break.
func TableBlock(tbl Table) types.TextBlock {
	rows := make([][]string, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		cells := make([]string, 0, len(row))
		for _, paras := range row {
			var parts []string
			for _, para := range paras {
				if strings.TrimSpace(para) == "" {
					continue
				}
				parts = append(parts, latex.EscapeText(para))
			}
			if len(parts) == 0 {
				cells = append(cells, emptyCell)
				continue
			}
			cells = append(cells, strings.Join(parts, cellLineBreak))
		}
		rows = append(rows, cells)
	}
	return types.Table(rows, tbl.Columns(), types.TableBordered)
}
