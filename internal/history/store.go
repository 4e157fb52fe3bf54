// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite log of conversions and exports it as YAML
// or JSON.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// defaultMaxResults is the number of rows List returns without a limit.
const defaultMaxResults = 20

// ErrDisabled is returned by Open when no database path is configured.
var ErrDisabled = errors.New("conversion history disabled")

// Store manages the conversion history database.
type Store struct {
	db         *sql.DB
	path       string
	maxResults int
}

// Open opens or creates the history database at cfg.DBPath, creating its
// directory and schema as needed.
func Open(cfg types.HistoryConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, ErrDisabled
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, path: cfg.DBPath, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_path TEXT NOT NULL,
			format TEXT NOT NULL,
			project_name TEXT,
			archive_path TEXT,
			images INTEGER NOT NULL DEFAULT 0,
			blocks INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_started ON conversions(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts one conversion outcome.
func (s *Store) Record(ctx context.Context, rec types.ConversionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions
			(source_path, format, project_name, archive_path, images, blocks, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Source.Path,
		string(rec.Source.Format),
		rec.ProjectName,
		rec.ArchivePath,
		rec.Images,
		rec.Blocks,
		string(rec.Status),
		rec.Error,
		formatTime(rec.StartedAt),
		formatTime(rec.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("recording conversion of %s: %w", rec.Source.Path, err)
	}
	return nil
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the rows returned; 0 uses the store default, negative
	// means no cap.
	Limit int

	// Status restricts results to one outcome.
	Status types.ConversionStatus

	// Format restricts results to one source format.
	Format types.SourceFormat
}

// List returns conversions, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.ConversionRecord, error) {
	var where []string
	var args []any
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(opts.Status))
	}
	if opts.Format != "" {
		where = append(where, "format = ?")
		args = append(args, string(opts.Format))
	}

	query := `SELECT id, source_path, format, project_name, archive_path, images, blocks,
		status, error, started_at, finished_at FROM conversions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, id DESC"

	limit := opts.Limit
	if limit == 0 {
		limit = s.maxResults
	}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []types.ConversionRecord
	for rows.Next() {
		var (
			rec                      types.ConversionRecord
			format, status           string
			project, archive, errMsg sql.NullString
			startedAt, finishedAt    string
		)
		if err := rows.Scan(&rec.ID, &rec.Source.Path, &format, &project, &archive,
			&rec.Images, &rec.Blocks, &status, &errMsg, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		rec.Source.Format = types.SourceFormat(format)
		rec.Status = types.ConversionStatus(status)
		rec.ProjectName = project.String
		rec.ArchivePath = archive.String
		rec.Error = errMsg.String
		rec.StartedAt = parseTime(startedAt)
		rec.FinishedAt = parseTime(finishedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return records, nil
}

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
