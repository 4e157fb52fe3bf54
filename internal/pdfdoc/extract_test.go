// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/doc2latex/pkg/types"
)

type fakePage struct {
	text    string
	textErr error
	images  []Image
	imgErr  error
}

type fakeSource struct {
	pages  []fakePage
	closed bool
}

func (f *fakeSource) NumPages() int { return len(f.pages) }

func (f *fakeSource) PageText(n int) (string, error) {
	p := f.pages[n-1]
	return p.text, p.textErr
}

func (f *fakeSource) PageImages(n int) ([]Image, error) {
	p := f.pages[n-1]
	return p.images, p.imgErr
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

type memWriter struct {
	names []string
	err   error
}

func (m *memWriter) Write(base, format string, data []byte) (types.ExtractedImage, error) {
	if m.err != nil {
		return types.ExtractedImage{}, m.err
	}
	name := base + "." + format
	m.names = append(m.names, name)
	return types.ExtractedImage{StoredName: name}, nil
}

func extractorFor(src *fakeSource) *Extractor {
	return &Extractor{Open: func(string) (Source, error) { return src, nil }}
}

func TestExtract_PagesInOrder(t *testing.T) {
	src := &fakeSource{pages: []fakePage{
		{text: "first page", images: []Image{{Format: "jpg", Data: []byte{1}}, {Format: "png", Data: []byte{2}}}},
		{text: ""},
		{text: "third", images: []Image{{Format: "png", Data: []byte{3}}}},
	}}
	w := &memWriter{}

	pages, err := extractorFor(src).Extract(context.Background(), "doc.pdf", w)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	assert.Equal(t, []string{"image_p1_1.jpg", "image_p1_2.png", "image_p3_1.png"}, w.names)
	assert.Equal(t, 1, pages[0].Images[0].Page)
	assert.Equal(t, 3, pages[2].Images[0].Page)
	assert.Equal(t, "", pages[1].Text)
	assert.True(t, src.closed)
}

func TestExtract_SkipsEmptyImageData(t *testing.T) {
	src := &fakeSource{pages: []fakePage{
		{images: []Image{{Format: "png"}, {Format: "png", Data: []byte{1}}}},
	}}
	w := &memWriter{}

	_, err := extractorFor(src).Extract(context.Background(), "doc.pdf", w)
	require.NoError(t, err)
	assert.Equal(t, []string{"image_p1_1.png"}, w.names)
}

func TestExtract_PageErrorsDegrade(t *testing.T) {
	src := &fakeSource{pages: []fakePage{
		{text: "kept", imgErr: errors.New("bad xobject")},
		{textErr: errors.New("bad content stream")},
	}}

	pages, err := extractorFor(src).Extract(context.Background(), "doc.pdf", &memWriter{})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "kept", pages[0].Text)
	assert.Empty(t, pages[0].Images)
	assert.Equal(t, "", pages[1].Text)
}

func TestExtract_WriteFailureIsFatal(t *testing.T) {
	src := &fakeSource{pages: []fakePage{{images: []Image{{Format: "png", Data: []byte{1}}}}}}

	_, err := extractorFor(src).Extract(context.Background(), "doc.pdf", &memWriter{err: errors.New("disk full")})
	assert.ErrorContains(t, err, "disk full")
}

func TestExtract_OpenFailure(t *testing.T) {
	e := &Extractor{Open: func(string) (Source, error) { return nil, errors.New("not a pdf") }}
	_, err := e.Extract(context.Background(), "doc.pdf", &memWriter{})
	assert.ErrorIs(t, err, types.ErrUnreadable)
	assert.ErrorContains(t, err, "not a pdf")
}

func TestExtract_Progress(t *testing.T) {
	src := &fakeSource{pages: []fakePage{{}, {}}}
	var calls []string
	e := extractorFor(src)
	e.OnPage = func(cur, total int) { calls = append(calls, fmt.Sprintf("%d/%d", cur, total)) }

	_, err := e.Extract(context.Background(), "doc.pdf", &memWriter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1/2", "2/2"}, calls)
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extractorFor(&fakeSource{pages: []fakePage{{}}}).Extract(ctx, "doc.pdf", &memWriter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestBlocks(t *testing.T) {
	pages := []Page{
		{Number: 1, Text: "Intro  text\n\nname|age\nann|30\nSecond para", Images: []types.ExtractedImage{{StoredName: "image_p1_1.jpg", Page: 1}}},
		{Number: 2, Text: ""},
	}

	blocks := Blocks(pages)
	kinds := make([]types.BlockKind, len(blocks))
	for i, b := range blocks {
		kinds[i] = b.Kind
	}
	assert.Equal(t, []types.BlockKind{
		types.BlockParagraph,
		types.BlockTable,
		types.BlockParagraph,
		types.BlockFigure,
		types.BlockPageBreak,
		types.BlockPageBreak,
	}, kinds)

	assert.Equal(t, "Intro text", blocks[0].Text)
	assert.True(t, blocks[0].Plain)
	assert.Equal(t, types.TableRuled, blocks[1].Style)
	assert.Equal(t, "Second para", blocks[2].Text)
	assert.Equal(t, "image_p1_1.jpg", blocks[3].Image.StoredName)
}

func TestTextBlocks_EscapesAndCollapses(t *testing.T) {
	blocks := TextBlocks("50% of\nR&D\n \nnext")
	require.Len(t, blocks, 2)
	assert.Equal(t, `50\% of R\&D`, blocks[0].Text)
	assert.Equal(t, "next", blocks[1].Text)
}
