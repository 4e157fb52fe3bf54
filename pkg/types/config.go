// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "log/slog"

// DefaultImageWidth is the \includegraphics width used for every figure.
const DefaultImageWidth = `0.8\textwidth`

// DefaultDocImage is the container image that upgrades legacy .doc files.
const DefaultDocImage = "doc2latex/libreoffice:latest"

// ConversionConfig holds settings for a conversion run.
type ConversionConfig struct {
	// OutputDir is where the project directory and archive are created.
	// Empty means the source file's directory.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// ImageWidth is the LaTeX width expression for figures.
	ImageWidth string `json:"image_width" yaml:"image_width" mapstructure:"image_width"`

	// KeepProject leaves the uncompressed project directory after zipping.
	KeepProject bool `json:"keep_project" yaml:"keep_project" mapstructure:"keep_project"`

	// StrictExtensions rejects files whose extension has no extractor
	// instead of producing an empty-bodied document.
	StrictExtensions bool `json:"strict_extensions" yaml:"strict_extensions" mapstructure:"strict_extensions"`

	// PNGFallback re-encodes images pdflatex cannot include as PNG.
	PNGFallback bool `json:"png_fallback" yaml:"png_fallback" mapstructure:"png_fallback"`

	// DocImage is the container image used to upgrade .doc to .docx.
	DocImage string `json:"doc_image" yaml:"doc_image" mapstructure:"doc_image"`

	// Logger receives partial-failure warnings and debug detail.
	Logger *slog.Logger `json:"-" yaml:"-" mapstructure:"-"`

	// OnProgress, when set, is called after each page, paragraph, or table.
	OnProgress func(current, total int) `json:"-" yaml:"-" mapstructure:"-"`
}

// Defaults fills unset fields.
func (c *ConversionConfig) Defaults() {
	if c.ImageWidth == "" {
		c.ImageWidth = DefaultImageWidth
	}
	if c.DocImage == "" {
		c.DocImage = DefaultDocImage
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Progress reports progress if a callback is configured.
func (c *ConversionConfig) Progress(current, total int) {
	if c.OnProgress != nil && total > 0 {
		c.OnProgress(current, total)
	}
}

// HistoryConfig holds settings for the conversion history store.
type HistoryConfig struct {
	// DBPath is the SQLite database file. Empty disables history.
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`

	// MaxResults is the default number of rows listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}
