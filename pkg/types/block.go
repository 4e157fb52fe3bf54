// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BlockKind tags the variant carried by a TextBlock.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockTable     BlockKind = "table"
	BlockFigure    BlockKind = "figure"
	BlockPageBreak BlockKind = "pagebreak"
)

// Alignment is the horizontal alignment of a paragraph.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// TableStyle selects how a table block is ruled in LaTeX.
type TableStyle string

const (
	// TableBordered draws vertical rules and an \hline after every row.
	// Used for tables read from a Word document's table model.
	TableBordered TableStyle = "bordered"

	// TableRuled uses booktabs rules (top, after header, bottom). Used for
	// tables recovered heuristically from PDF text.
	TableRuled TableStyle = "ruled"
)

// ExtractedImage is an image blob written under images/ with a deterministic
// name. Exactly one of Page or RelID is meaningful, depending on the source.
type ExtractedImage struct {
	// StoredName is the file name under images/ (e.g. "image_p1_1.jpg").
	StoredName string `json:"stored_name" yaml:"stored_name"`

	// Page is the 1-based page number the image was found on (PDF).
	Page int `json:"page" yaml:"page"`

	// RelID is the package relationship identifier, e.g. "rId5" (Word).
	RelID string `json:"rel_id,omitempty" yaml:"rel_id,omitempty"`
}

// TextBlock is one unit of extracted document content, ready to be
// serialised. Text and table cells are already normalised and escaped unless
// Raw is set.
type TextBlock struct {
	Kind BlockKind

	// Text is the paragraph body.
	Text string

	// Raw marks Text as unescaped fallback content.
	Raw bool

	// Align is the paragraph alignment.
	Align Alignment

	// FontSize is the explicit font size in points, or 0 when unset.
	FontSize float64

	// Plain terminates a left-aligned paragraph with a blank line instead
	// of \par.
	Plain bool

	// Rows holds table cells, row-major.
	Rows [][]string

	// Columns is the declared column count of a table.
	Columns int

	// Style selects table ruling.
	Style TableStyle

	// Image is the figure target.
	Image *ExtractedImage
}

// Paragraph returns a paragraph block.
func Paragraph(text string, align Alignment, fontSize float64) TextBlock {
	return TextBlock{Kind: BlockParagraph, Text: text, Align: align, FontSize: fontSize}
}

// Table returns a table block.
func Table(rows [][]string, columns int, style TableStyle) TextBlock {
	return TextBlock{Kind: BlockTable, Rows: rows, Columns: columns, Style: style}
}

// Figure returns a figure block referencing img.
func Figure(img *ExtractedImage) TextBlock {
	return TextBlock{Kind: BlockFigure, Image: img}
}

// PageBreak returns a page break block.
func PageBreak() TextBlock {
	return TextBlock{Kind: BlockPageBreak}
}
