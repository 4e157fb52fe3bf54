// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the doc2latex
// extractors, the LaTeX assembler, and the conversion history.
package types
