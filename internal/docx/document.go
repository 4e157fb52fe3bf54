// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// Paragraph is a top-level body paragraph.
type Paragraph struct {
	// Text is the concatenated run text.
	Text string

	Align types.Alignment

	// FontSize is the size in points of the first run that sets one, or 0.
	FontSize float64

	// ImageRefs lists the relationship ids of images drawn in the
	// paragraph's runs, in order.
	ImageRefs []string
}

// Table is a top-level body table.
type Table struct {
	// GridColumns is the column count declared by w:tblGrid, 0 if absent.
	GridColumns int

	// Rows holds, per cell, the text of each of the cell's paragraphs.
	Rows [][][]string
}

// Columns returns the declared column count, falling back to the widest row.
func (t Table) Columns() int {
	if t.GridColumns > 0 {
		return t.GridColumns
	}
	widest := 0
	for _, row := range t.Rows {
		widest = max(widest, len(row))
	}
	return widest
}

// Document is the body content of word/document.xml.
type Document struct {
	Paragraphs []Paragraph
	Tables     []Table
}

// ParseDocument reads the body of a main document part. Only direct
// children of w:body are collected; paragraphs inside tables belong to
// their cells.
func ParseDocument(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	doc := &Document{}

	inBody := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !inBody {
				if t.Name.Local == "body" {
					inBody = true
				}
				continue
			}
			switch t.Name.Local {
			case "p":
				p, err := parseParagraph(dec)
				if err != nil {
					return nil, fmt.Errorf("paragraph %d: %w", len(doc.Paragraphs)+1, err)
				}
				doc.Paragraphs = append(doc.Paragraphs, p)
			case "tbl":
				tbl, err := parseTable(dec)
				if err != nil {
					return nil, fmt.Errorf("table %d: %w", len(doc.Tables)+1, err)
				}
				doc.Tables = append(doc.Tables, tbl)
			default:
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if inBody && t.Name.Local == "body" {
				inBody = false
			}
		}
	}
	return doc, nil
}

// parseParagraph consumes a w:p whose start element has been read.
func parseParagraph(dec *xml.Decoder) (Paragraph, error) {
	var p Paragraph
	var text strings.Builder

	// stack holds the local names of open elements below the w:p.
	var stack []string
	// graphic counts open drawing containers; text inside them belongs to
	// shapes and text boxes, not to the paragraph.
	graphic := 0
	sizeSeen := false

	for {
		tok, err := dec.Token()
		if err != nil {
			return p, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}

			// mc:Fallback repeats the mc:Choice content for older readers.
			if name == "Fallback" {
				if err := dec.Skip(); err != nil {
					return p, err
				}
				continue
			}

			switch {
			case name == "drawing" || name == "pict" || name == "object":
				graphic++
			case name == "blip" && graphic > 0:
				if id := attr(t, "embed"); id != "" {
					p.ImageRefs = append(p.ImageRefs, id)
				}
			case name == "imagedata" && graphic > 0:
				if id := attr(t, "id"); id != "" {
					p.ImageRefs = append(p.ImageRefs, id)
				}
			case graphic > 0:
			case name == "jc" && parent == "pPr" && len(stack) == 1:
				p.Align = alignment(attr(t, "val"))
			case name == "sz" && parent == "rPr" && inRun(stack) && !sizeSeen:
				if pt, ok := halfPoints(attr(t, "val")); ok {
					p.FontSize = pt
					sizeSeen = true
				}
			case name == "t" && parent == "r":
				var s string
				if err := dec.DecodeElement(&s, &t); err != nil {
					return p, err
				}
				text.WriteString(s)
				continue
			case name == "tab" && parent == "r":
				text.WriteByte('\t')
			case (name == "br" || name == "cr") && parent == "r":
				text.WriteByte('\n')
			}
			stack = append(stack, name)

		case xml.EndElement:
			if len(stack) == 0 {
				p.Text = text.String()
				if p.Align == "" {
					p.Align = types.AlignLeft
				}
				return p, nil
			}
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if name == "drawing" || name == "pict" || name == "object" {
				graphic--
			}
		}
	}
}

// inRun reports whether the innermost rPr on the stack belongs to a run.
func inRun(stack []string) bool {
	return len(stack) >= 2 && stack[len(stack)-2] == "r"
}

// parseTable consumes a w:tbl whose start element has been read. Nested
// tables are skipped.
func parseTable(dec *xml.Decoder) (Table, error) {
	var tbl Table
	for {
		tok, err := dec.Token()
		if err != nil {
			return tbl, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tblGrid":
				n, err := countGridColumns(dec)
				if err != nil {
					return tbl, err
				}
				tbl.GridColumns = n
			case "tr":
				limit := tbl.GridColumns
				if limit <= 0 {
					limit = maxGridColumns
				}
				row, merged, err := parseRow(dec, limit)
				if err != nil {
					return tbl, err
				}
				if n := len(tbl.Rows); n > 0 {
					above := tbl.Rows[n-1]
					for i, cont := range merged {
						if cont && i < len(above) {
							row[i] = above[i]
						}
					}
				}
				tbl.Rows = append(tbl.Rows, row)
			default:
				if err := dec.Skip(); err != nil {
					return tbl, err
				}
			}
		case xml.EndElement:
			return tbl, nil
		}
	}
}

func countGridColumns(dec *xml.Decoder) (int, error) {
	n := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return n, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "gridCol" {
				n++
			}
			if err := dec.Skip(); err != nil {
				return n, err
			}
		case xml.EndElement:
			return n, nil
		}
	}
}

// maxGridColumns is Word's column limit, used to bound w:gridSpan when a
// table declares no grid.
const maxGridColumns = 63

// parseRow returns one entry per grid column: a cell spanning several
// columns is repeated, up to limit columns per cell. merged marks entries
// that continue a vertical merge from the row above.
func parseRow(dec *xml.Decoder, limit int) ([][]string, []bool, error) {
	var row [][]string
	var merged []bool
	for {
		tok, err := dec.Token()
		if err != nil {
			return row, merged, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "tc" {
				if err := dec.Skip(); err != nil {
					return row, merged, err
				}
				continue
			}
			c, err := parseCell(dec)
			if err != nil {
				return row, merged, err
			}
			for range min(c.span, limit) {
				row = append(row, c.paras)
				merged = append(merged, c.continued)
			}
		case xml.EndElement:
			return row, merged, nil
		}
	}
}

type cell struct {
	paras     []string
	span      int
	continued bool
}

func parseCell(dec *xml.Decoder) (cell, error) {
	c := cell{span: 1}
	for {
		tok, err := dec.Token()
		if err != nil {
			return c, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				p, err := parseParagraph(dec)
				if err != nil {
					return c, err
				}
				c.paras = append(c.paras, p.Text)
			case "tcPr":
				if err := cellProperties(dec, &c); err != nil {
					return c, err
				}
			default:
				if err := dec.Skip(); err != nil {
					return c, err
				}
			}
		case xml.EndElement:
			return c, nil
		}
	}
}

// cellProperties reads w:gridSpan and w:vMerge from a w:tcPr. A vMerge
// without val="restart" continues the cell above.
func cellProperties(dec *xml.Decoder, c *cell) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "gridSpan":
				if n, err := strconv.Atoi(attr(t, "val")); err == nil && n > 1 {
					c.span = n
				}
			case "vMerge":
				c.continued = attr(t, "val") != "restart"
			}
			if err := dec.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// attr returns the value of the attribute with the given local name,
// ignoring its namespace.
func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func alignment(jc string) types.Alignment {
	switch jc {
	case "center":
		return types.AlignCenter
	case "right", "end":
		return types.AlignRight
	}
	return types.AlignLeft
}

// halfPoints converts a w:sz value to points.
func halfPoints(val string) (float64, bool) {
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0, false
	}
	return float64(n) / 2, true
}
