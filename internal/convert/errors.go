// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import "github.com/pdiddy/doc2latex/pkg/types"

// Input errors, re-exported so callers need only this package.
//
// Partial failures (one image, one paragraph) are logged and never
// returned. Any other returned error is a write failure: the project
// directory is left on disk and no archive is produced.
var (
	ErrNoInput     = types.ErrNoInput
	ErrUnreadable  = types.ErrUnreadable
	ErrUnsupported = types.ErrUnsupported
)
