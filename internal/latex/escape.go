// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package latex turns extracted document text into LaTeX source: Unicode
// normalisation, escaping of reserved characters, detection of pipe-delimited
// tables in plain text, and serialisation of TextBlocks into a main.tex body.
package latex

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// substitutions maps each LaTeX-reserved character to its escaped form.
// Backslash comes first; the table is compiled into a single-pass replacer
// so sequences inserted for one character are never escaped again.
var substitutions = [][2]string{
	{`\`, `\textbackslash{}`},
	{`&`, `\&`},
	{`%`, `\%`},
	{`$`, `\$`},
	{`#`, `\#`},
	{`_`, `\_`},
	{`{`, `\{`},
	{`}`, `\}`},
	{`~`, `\textasciitilde{}`},
	{`^`, `\textasciicircum{}`},
}

var escaper = newEscaper()

func newEscaper() *strings.Replacer {
	pairs := make([]string, 0, 2*len(substitutions))
	for _, s := range substitutions {
		pairs = append(pairs, s[0], s[1])
	}
	return strings.NewReplacer(pairs...)
}

// Normalize applies NFKC composition and collapses every whitespace run to a
// single space, trimming both ends.
func Normalize(text string) string {
	text = norm.NFKC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Escape replaces LaTeX-reserved characters. It must be applied exactly once
// per raw fragment: escaping already-escaped text escapes it again.
func Escape(text string) string {
	return escaper.Replace(text)
}

// EscapeText normalises text and then escapes it.
func EscapeText(text string) string {
	return Escape(Normalize(text))
}
