// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/doc2latex/pkg/types"
)

func TestFormatHistory_Table(t *testing.T) {
	records := []types.ConversionRecord{
		{
			Source:    types.SourceDocument{Path: "/docs/failed.docx", Format: types.FormatDocx},
			Status:    types.ConversionFailed,
			Error:     "unreadable document: zip: not a valid zip file",
			StartedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		},
		{
			Source:      types.SourceDocument{Path: "/docs/report.pdf", Format: types.FormatPDF},
			Status:      types.ConversionDone,
			ArchivePath: "/docs/latex_project_20260314_090000.zip",
			StartedAt:   time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, formatHistory(&buf, records, false))
	out := buf.String()

	assert.Contains(t, out, "report.pdf")
	assert.Contains(t, out, "latex_project_20260314_090000.zip")
	assert.Contains(t, out, "zip: not a valid zip file")
	assert.Contains(t, out, "2 conversions")
}

func TestFormatHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatHistory(&buf, nil, false))
	assert.Equal(t, "No conversions recorded.\n", buf.String())

	buf.Reset()
	require.NoError(t, formatHistory(&buf, nil, true))
	assert.JSONEq(t, "[]", buf.String())
}

func TestFormatHistory_JSON(t *testing.T) {
	records := []types.ConversionRecord{{
		ID:     7,
		Source: types.SourceDocument{Path: "a.pdf", Format: types.FormatPDF},
		Status: types.ConversionDone,
	}}

	var buf bytes.Buffer
	require.NoError(t, formatHistory(&buf, records, true))

	var got []types.ConversionRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].ID)
	assert.Equal(t, types.FormatPDF, got[0].Source.Format)
}
