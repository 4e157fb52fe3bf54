// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package latex

import (
	"strings"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// cellDelimiter separates cells in a plain-text table row.
const cellDelimiter = "|"

// minTableRows is the number of consecutive delimited lines needed before a
// run is treated as a table.
const minTableRows = 2

// Segment is a contiguous piece of plain text: either ordinary text, passed
// through unchanged, or a detected table.
type Segment struct {
	// Text holds the original lines of a non-table segment.
	Text string

	// Rows holds the trimmed, unescaped cells of a table segment.
	Rows [][]string
}

// IsTable reports whether the segment is a detected table.
func (s Segment) IsTable() bool {
	return s.Rows != nil
}

// SplitTables scans text line by line and splits it into ordinary and table
// segments, preserving order. Rows are not checked for equal width.
func SplitTables(text string) []Segment {
	lines := strings.Split(text, "\n")

	var segments []Segment
	var plain []string
	flushPlain := func() {
		if len(plain) > 0 {
			segments = append(segments, Segment{Text: strings.Join(plain, "\n")})
			plain = nil
		}
	}

	for i := 0; i < len(lines); {
		j := i
		for j < len(lines) && strings.Contains(lines[j], cellDelimiter) {
			j++
		}
		if j-i >= minTableRows {
			flushPlain()
			rows := make([][]string, 0, j-i)
			for _, line := range lines[i:j] {
				rows = append(rows, splitCells(line))
			}
			segments = append(segments, Segment{Rows: rows})
			i = j
			continue
		}
		if j == i {
			j++
		}
		plain = append(plain, lines[i:j]...)
		i = j
	}
	flushPlain()
	return segments
}

func splitCells(line string) []string {
	cells := strings.Split(line, cellDelimiter)
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// TableBlock converts a table segment into a ruled table block with escaped
// cells. The column count is taken from the first row.
func TableBlock(seg Segment) types.TextBlock {
	rows := make([][]string, len(seg.Rows))
	for i, row := range seg.Rows {
		escaped := make([]string, len(row))
		for j, cell := range row {
			escaped[j] = EscapeText(cell)
		}
		rows[i] = escaped
	}
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	return types.Table(rows, cols, types.TableRuled)
}

// RewriteTables replaces every detected table in text with LaTeX table
// markup and leaves the remaining text untouched.
func RewriteTables(text string) string {
	var b strings.Builder
	for i, seg := range SplitTables(text) {
		if i > 0 {
			b.WriteByte('\n')
		}
		if !seg.IsTable() {
			b.WriteString(seg.Text)
			continue
		}
		writeRuledTable(&b, TableBlock(seg))
	}
	return b.String()
}
