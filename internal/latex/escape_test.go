// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package latex

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: " \n\t ", want: ""},
		{name: "collapses runs", in: "a  b\n\nc\t d", want: "a b c d"},
		{name: "trims", in: "  hello  ", want: "hello"},
		{name: "non-breaking space folds", in: "a\u00a0 b", want: "a b"},
		{name: "compatibility ligature", in: "\ufb01le", want: "file"},
		// "e" + combining dot below + combining circumflex composes to U+1EC7.
		{name: "vietnamese composes", in: "Vie\u0323\u0302t", want: "Vi\u1ec7t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Properties(t *testing.T) {
	inputs := []string{
		"", "x", "  lead", "trail  ", "a\r\nb", "tab\there", "many     spaces   inside",
		"Tiếng Việt  có   dấu", " em space",
	}
	for _, in := range inputs {
		out := Normalize(in)
		assert.Equal(t, strings.TrimSpace(out), out, "no leading/trailing whitespace for %q", in)
		prevSpace := false
		for _, r := range out {
			isSpace := unicode.IsSpace(r)
			assert.False(t, prevSpace && isSpace, "consecutive whitespace in %q", out)
			prevSpace = isSpace
		}
		assert.Equal(t, out, Normalize(out), "idempotent for %q", in)
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "A & B% C$", want: `A \& B\% C\$`},
		{in: "#1_x", want: `\#1\_x`},
		{in: "{a}", want: `\{a\}`},
		{in: `a\b`, want: `a\textbackslash{}b`},
		{in: "~^", want: `\textasciitilde{}\textasciicircum{}`},
		{in: "plain text", want: "plain text"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestEscape_BackslashNotReescaped(t *testing.T) {
	got := Escape(`\&`)
	assert.Equal(t, `\textbackslash{}\&`, got)
}

func TestEscape_DoubleApplicationDoubleEscapes(t *testing.T) {
	once := Escape("&")
	twice := Escape(once)
	assert.NotEqual(t, once, twice)
	assert.Equal(t, `\textbackslash{}\&`, twice)
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, `50\% off \& more`, EscapeText("  50%   off\n& more "))
}
