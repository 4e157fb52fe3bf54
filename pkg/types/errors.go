// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Input errors. Extractors wrap their failures with these so callers can
// tell a bad input apart from a failed write.
var (
	// ErrNoInput is returned when a conversion is started without a file.
	ErrNoInput = errors.New("no input file")

	// ErrUnreadable marks a source document that cannot be opened or parsed.
	ErrUnreadable = errors.New("unreadable document")

	// ErrUnsupported marks a source the converter has no extractor for.
	ErrUnsupported = errors.New("unsupported document")
)
