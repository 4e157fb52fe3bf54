// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SourceFormat identifies the extraction path chosen for a source file.
type SourceFormat string

const (
	FormatPDF     SourceFormat = "pdf"
	FormatDocx    SourceFormat = "docx"
	FormatDoc     SourceFormat = "doc"
	FormatUnknown SourceFormat = "unknown"
)

// ConversionStatus indicates the outcome of one document conversion.
type ConversionStatus string

const (
	ConversionNone   ConversionStatus = "none"
	ConversionDone   ConversionStatus = "converted"
	ConversionFailed ConversionStatus = "failed"
)

// SourceDocument is the input file. It is read-only for the lifetime of a
// conversion.
type SourceDocument struct {
	// Path is the filesystem path of the document.
	Path string `json:"path" yaml:"path"`

	// Format is derived from the lower-cased file extension.
	Format SourceFormat `json:"format" yaml:"format"`
}

// ConversionRecord holds the outcome of a single conversion, as written to
// the history store.
type ConversionRecord struct {
	// ID is the history row identifier; zero until stored.
	ID int64 `json:"id" yaml:"id"`

	// Source is the converted document.
	Source SourceDocument `json:"source" yaml:"source"`

	// ProjectName is the "latex_project_<timestamp>" base name.
	ProjectName string `json:"project_name" yaml:"project_name"`

	// ArchivePath is the written ZIP archive, empty on failure.
	ArchivePath string `json:"archive_path,omitempty" yaml:"archive_path,omitempty"`

	// Images is the number of image files extracted.
	Images int `json:"images" yaml:"images"`

	// Blocks is the number of content blocks written to main.tex.
	Blocks int `json:"blocks" yaml:"blocks"`

	// Status is the final state of the conversion.
	Status ConversionStatus `json:"status" yaml:"status"`

	// Error records the failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// StartedAt and FinishedAt bound the conversion in UTC.
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}
