// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns a PDF or Word document into a zipped LaTeX project:
// main.tex, an images/ directory and a README, packed as
// latex_project_<timestamp>.zip next to the source.
package convert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/doc2latex/internal/docx"
	"github.com/pdiddy/doc2latex/internal/imagestore"
	"github.com/pdiddy/doc2latex/internal/latex"
	"github.com/pdiddy/doc2latex/internal/pdfdoc"
	"github.com/pdiddy/doc2latex/pkg/types"
)

// Recorder stores the outcome of each conversion.
type Recorder interface {
	Record(ctx context.Context, rec types.ConversionRecord) error
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Failed    int

	// Archives lists the archives written, in input order.
	Archives []string
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Converter runs conversions with a fixed configuration.
type Converter struct {
	cfg      types.ConversionConfig
	upgrader Upgrader
	recorder Recorder
	now      func() time.Time
	pdfOpen  pdfdoc.OpenFunc
}

// Option configures a Converter.
type Option func(*Converter)

// WithUpgrader enables .doc input through u.
func WithUpgrader(u Upgrader) Option {
	return func(c *Converter) { c.upgrader = u }
}

// WithRecorder records every conversion outcome through r.
func WithRecorder(r Recorder) Option {
	return func(c *Converter) { c.recorder = r }
}

// WithClock replaces time.Now, which names projects.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.now = now }
}

// WithPDFSource replaces the PDF backends.
func WithPDFSource(open pdfdoc.OpenFunc) Option {
	return func(c *Converter) { c.pdfOpen = open }
}

// New returns a Converter for cfg. Unset config fields take their defaults.
func New(cfg types.ConversionConfig, opts ...Option) *Converter {
	cfg.Defaults()
	c := &Converter{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DetectFormat classifies path by its lower-cased extension.
func DetectFormat(path string) types.SourceFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return types.FormatPDF
	case ".docx":
		return types.FormatDocx
	case ".doc":
		return types.FormatDoc
	}
	return types.FormatUnknown
}

// Convert converts src into a zipped LaTeX project and returns the record
// of the run. Input errors leave nothing on disk. A write failure leaves
// the project directory for inspection and produces no archive.
func (c *Converter) Convert(ctx context.Context, src string) (rec types.ConversionRecord, err error) {
	logger := c.cfg.Logger
	rec = types.ConversionRecord{
		Source:    types.SourceDocument{Path: src, Format: DetectFormat(src)},
		StartedAt: c.now().UTC(),
	}
	defer func() {
		rec.FinishedAt = c.now().UTC()
		rec.Status = types.ConversionDone
		if err != nil {
			rec.Status = types.ConversionFailed
			rec.Error = err.Error()
		}
		c.record(ctx, rec)
	}()

	if err := c.checkInput(src, rec.Source.Format); err != nil {
		return rec, err
	}

	parent := c.cfg.OutputDir
	if parent == "" {
		parent = filepath.Dir(src)
	}
	projectDir, err := createProjectDir(parent, ProjectName(rec.StartedAt))
	if err != nil {
		return rec, err
	}
	rec.ProjectName = filepath.Base(projectDir)
	logger.Debug("created project", "dir", projectDir, "format", rec.Source.Format)

	store, err := imagestore.New(projectDir, c.cfg.PNGFallback, logger)
	if err != nil {
		return rec, err
	}

	blocks, err := c.extract(ctx, rec.Source, store)
	rec.Images = len(store.Written())
	if err != nil {
		if isInputError(err) {
			os.RemoveAll(projectDir)
		}
		return rec, err
	}

	if err := writeMain(filepath.Join(projectDir, MainFile), blocks, c.cfg.ImageWidth); err != nil {
		return rec, err
	}
	rec.Blocks = len(blocks)

	if err := os.WriteFile(filepath.Join(projectDir, ReadmeFile), []byte(Readme), 0o644); err != nil {
		return rec, fmt.Errorf("writing %s: %w", ReadmeFile, err)
	}

	archive := projectDir + ".zip"
	if err := zipProject(projectDir, archive); err != nil {
		return rec, err
	}
	rec.ArchivePath = archive

	if !c.cfg.KeepProject {
		if err := os.RemoveAll(projectDir); err != nil {
			logger.Warn("could not remove project directory", "dir", projectDir, "error", err)
		}
	}
	logger.Info("converted document", "source", src, "archive", archive, "blocks", rec.Blocks, "images", rec.Images)
	return rec, nil
}

func (c *Converter) checkInput(src string, format types.SourceFormat) error {
	if src == "" {
		return ErrNoInput
	}
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrUnreadable, src)
	}
	switch {
	case format == types.FormatUnknown && c.cfg.StrictExtensions:
		return fmt.Errorf("%w: extension %q", ErrUnsupported, filepath.Ext(src))
	case format == types.FormatDoc && c.upgrader == nil:
		return fmt.Errorf("%w: legacy .doc files need a container runtime to upgrade them", ErrUnsupported)
	}
	return nil
}

func (c *Converter) extract(ctx context.Context, src types.SourceDocument, store *imagestore.Store) ([]types.TextBlock, error) {
	logger := c.cfg.Logger

	switch src.Format {
	case types.FormatPDF:
		e := &pdfdoc.Extractor{Open: c.pdfOpen, Logger: logger, OnPage: c.cfg.Progress}
		pages, err := e.Extract(ctx, src.Path, store)
		if err != nil {
			return nil, err
		}
		return pdfdoc.Blocks(pages), nil

	case types.FormatDocx:
		e := &docx.Extractor{Logger: logger, OnItem: c.cfg.Progress}
		return e.Extract(ctx, src.Path, store)

	case types.FormatDoc:
		tmp, err := os.MkdirTemp("", "doc2latex-*")
		if err != nil {
			return nil, fmt.Errorf("creating upgrade directory: %w", err)
		}
		defer os.RemoveAll(tmp)

		upgraded, err := c.upgrader.Upgrade(ctx, src.Path, tmp)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
		}
		e := &docx.Extractor{Logger: logger, OnItem: c.cfg.Progress}
		return e.Extract(ctx, upgraded, store)
	}

	logger.Warn("no extractor for file type, writing an empty document", "path", src.Path, "extension", filepath.Ext(src.Path))
	return nil, nil
}

func (c *Converter) record(ctx context.Context, rec types.ConversionRecord) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(ctx, rec); err != nil {
		c.cfg.Logger.Warn("could not record conversion history", "source", rec.Source.Path, "error", err)
	}
}

func isInputError(err error) bool {
	return errors.Is(err, ErrUnreadable) ||
		errors.Is(err, ErrUnsupported) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// writeMain writes the complete main.tex for blocks.
func writeMain(path string, blocks []types.TextBlock, imageWidth string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", MainFile, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", MainFile, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	a := latex.NewAssembler(bw, imageWidth)
	if err := a.WritePreamble(); err != nil {
		return fmt.Errorf("writing %s: %w", MainFile, err)
	}
	if err := a.WriteBlocks(blocks); err != nil {
		return fmt.Errorf("writing %s: %w", MainFile, err)
	}
	if err := a.WriteEnd(); err != nil {
		return fmt.Errorf("writing %s: %w", MainFile, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", MainFile, err)
	}
	return nil
}

// ConvertFile converts one file, printing a status line to w.
func (c *Converter) ConvertFile(ctx context.Context, src string, w io.Writer) (types.ConversionRecord, types.ConversionStatus) {
	rec, err := c.Convert(ctx, src)
	report(w, src, rec, err)
	return rec, rec.Status
}

func report(w io.Writer, src string, rec types.ConversionRecord, err error) {
	name := filepath.Base(src)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		return
	}
	fmt.Fprintf(w, "converted: %s -> %s\n", name, rec.ArchivePath)
}

// ConvertPaths converts each path in turn, printing per-file status and a
// summary to w. It returns ErrNoInput when paths is empty.
func (c *Converter) ConvertPaths(ctx context.Context, paths []string, w io.Writer) (BatchResult, error) {
	var result BatchResult
	if len(paths) == 0 {
		return result, ErrNoInput
	}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rec, status := c.ConvertFile(ctx, p, w)
		switch status {
		case types.ConversionDone:
			result.Converted++
			result.Archives = append(result.Archives, rec.ArchivePath)
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d failed (total: %d)\n",
		result.Converted, result.Failed, result.Total())
	return result, nil
}

// ConvertFile converts src with cfg and default options, printing a status
// line to w.
func ConvertFile(ctx context.Context, src string, cfg types.ConversionConfig, w io.Writer) (types.ConversionRecord, error) {
	rec, err := New(cfg).Convert(ctx, src)
	report(w, src, rec, err)
	return rec, err
}
