// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package latex

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// ByteOrderMark prefixes main.tex so editors detect UTF-8.
const ByteOrderMark = "\ufeff"

// Preamble is written at the top of every main.tex.
const Preamble = `% !TEX encoding = UTF-8

\documentclass[12pt,a4paper]{article}

% Vietnamese support
\usepackage[utf8]{inputenc}
\usepackage[T5]{fontenc}
\usepackage{vntex}

\usepackage{geometry}
\usepackage{graphicx}
\usepackage{float}
\usepackage{tabularx}
\usepackage{booktabs}
\usepackage{multirow}
\usepackage{hyperref}
\usepackage{listings}
\usepackage{xcolor}
\usepackage{caption}

\usepackage{times}

\geometry{
    a4paper,
    left=2.5cm,
    right=2.5cm,
    top=2.5cm,
    bottom=2.5cm
}

\graphicspath{{./images/}}

\hypersetup{
    unicode=true,
    colorlinks=true,
    linkcolor=blue,
    filecolor=magenta,
    urlcolor=cyan,
}

\begin{document}
`

// EndDocument closes main.tex.
const EndDocument = `\end{document}`

// Assembler serialises TextBlocks into a LaTeX document written
// sequentially to w.
type Assembler struct {
	w          io.Writer
	imageWidth string
	blocks     int
}

// NewAssembler returns an Assembler writing to w. imageWidth is the LaTeX
// width expression used for figures; empty selects the default.
func NewAssembler(w io.Writer, imageWidth string) *Assembler {
	if imageWidth == "" {
		imageWidth = types.DefaultImageWidth
	}
	return &Assembler{w: w, imageWidth: imageWidth}
}

// Blocks returns the number of blocks written so far.
func (a *Assembler) Blocks() int {
	return a.blocks
}

// WritePreamble writes the byte-order mark and the fixed preamble.
func (a *Assembler) WritePreamble() error {
	_, err := io.WriteString(a.w, ByteOrderMark+Preamble)
	return err
}

// WriteBlock serialises one block.
func (a *Assembler) WriteBlock(b types.TextBlock) error {
	if _, err := io.WriteString(a.w, RenderBlock(b, a.imageWidth)); err != nil {
		return err
	}
	a.blocks++
	return nil
}

// WriteBlocks serialises blocks in order, stopping at the first write error.
func (a *Assembler) WriteBlocks(blocks []types.TextBlock) error {
	for _, b := range blocks {
		if err := a.WriteBlock(b); err != nil {
			return err
		}
	}
	return nil
}

// WriteEnd writes the closing marker.
func (a *Assembler) WriteEnd() error {
	_, err := io.WriteString(a.w, EndDocument)
	return err
}

// RenderBlock returns the LaTeX source for one block.
func RenderBlock(b types.TextBlock, imageWidth string) string {
	var sb strings.Builder
	switch b.Kind {
	case types.BlockParagraph:
		writeParagraph(&sb, b)
	case types.BlockTable:
		if b.Style == types.TableRuled {
			writeRuledTable(&sb, b)
		} else {
			writeBorderedTable(&sb, b)
		}
	case types.BlockFigure:
		writeFigure(&sb, b.Image, imageWidth)
	case types.BlockPageBreak:
		sb.WriteString("\\newpage\n")
	}
	return sb.String()
}

func writeParagraph(sb *strings.Builder, b types.TextBlock) {
	if strings.TrimSpace(b.Text) == "" {
		sb.WriteString("\n")
		return
	}

	text := b.Text
	if b.FontSize > 0 {
		text = fmt.Sprintf("{\\fontsize{%s}{1.2\\baselineskip}\\selectfont %s}", formatPoints(b.FontSize), text)
	}

	switch b.Align {
	case types.AlignCenter:
		fmt.Fprintf(sb, "\\begin{center}\n%s\n\\end{center}\n", text)
	case types.AlignRight:
		fmt.Fprintf(sb, "\\begin{flushright}\n%s\n\\end{flushright}\n", text)
	default:
		if b.Plain {
			fmt.Fprintf(sb, "%s\n\n", text)
		} else {
			fmt.Fprintf(sb, "%s\\par\n", text)
		}
	}
}

// formatPoints renders a point size without trailing zeros (14, 10.5).
func formatPoints(pt float64) string {
	return strconv.FormatFloat(pt, 'f', -1, 64)
}

func writeRuledTable(sb *strings.Builder, b types.TextBlock) {
	sb.WriteString("\\begin{table}[H]\n\\centering\n")
	fmt.Fprintf(sb, "\\begin{tabularx}{\\textwidth}{%s}\n", strings.Repeat("X", b.Columns))
	sb.WriteString("\\toprule\n")
	for i, row := range b.Rows {
		sb.WriteString(strings.Join(row, " & "))
		sb.WriteString(" \\\\\n")
		if i == 0 {
			sb.WriteString("\\midrule\n")
		}
	}
	sb.WriteString("\\bottomrule\n\\end{tabularx}\n\\end{table}\n\n")
}

func writeBorderedTable(sb *strings.Builder, b types.TextBlock) {
	sb.WriteString("\n\\begin{table}[H]\n\\centering\n")
	fmt.Fprintf(sb, "\\begin{tabularx}{\\textwidth}{|%s}\n", strings.Repeat("X|", b.Columns))
	sb.WriteString("\\hline\n")
	for _, row := range b.Rows {
		sb.WriteString(strings.Join(row, " & "))
		sb.WriteString(" \\\\ \\hline\n")
	}
	sb.WriteString("\\end{tabularx}\n")
	sb.WriteString("\\caption{}\n")
	sb.WriteString("\\end{table}\n\n")
}

func writeFigure(sb *strings.Builder, img *types.ExtractedImage, width string) {
	if img == nil {
		return
	}
	fmt.Fprintf(sb, `
\begin{figure}[H]
    \centering
    \includegraphics[width=%s]{images/%s}
    \caption{}
    \label{fig:%s}
\end{figure}
`, width, img.StoredName, img.StoredName)
}
