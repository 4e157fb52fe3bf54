// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// ExportYAML writes every recorded conversion matching opts to export.yaml
// next to the database and returns the file path.
func (s *Store) ExportYAML(ctx context.Context, opts ListOptions) (string, error) {
	records, err := s.exportRecords(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return s.writeExport("export.yaml", data)
}

// ExportJSON writes every recorded conversion matching opts to export.json
// next to the database and returns the file path.
func (s *Store) ExportJSON(ctx context.Context, opts ListOptions) (string, error) {
	records, err := s.exportRecords(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return s.writeExport("export.json", data)
}

func (s *Store) exportRecords(ctx context.Context, opts ListOptions) ([]types.ConversionRecord, error) {
	opts.Limit = -1
	records, err := s.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if records == nil {
		records = []types.ConversionRecord{}
	}
	return records, nil
}

func (s *Store) writeExport(name string, data []byte) (string, error) {
	path := filepath.Join(filepath.Dir(s.path), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}
