// Package sqlite stores ingestion metadata in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"ragpipe/internal/adapter/sqlite/migrations"
	"ragpipe/internal/domain"
)

// MetadataRepository is a port.MetadataRepository over one SQLite file.
type MetadataRepository struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path and applies pending migrations.
func Open(path string) (*MetadataRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", domain.ErrPersistence, filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrPersistence, path, err)
	}

	r := &MetadataRepository{db: db, path: path}
	if err := r.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %v", domain.ErrPersistence, err)
	}
	return r, nil
}

func (r *MetadataRepository) Path() string {
	return r.path
}

// migrate runs every *.up.sql file newer than the recorded version.
func (r *MetadataRepository) migrate(fsys fs.FS) error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := r.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := r.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := r.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

func (r *MetadataRepository) InsertMetadata(ctx context.Context, filename, source, timestamp string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO metadata (filename, source, ingestion_timestamp) VALUES (?, ?, ?)",
		filename, source, timestamp)
	if err != nil {
		return fmt.Errorf("%w: insert metadata for %s: %v", domain.ErrPersistence, filename, err)
	}
	return nil
}

// FetchMetadata returns every record in insertion order.
func (r *MetadataRepository) FetchMetadata(ctx context.Context) ([]domain.MetadataRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, filename, source, ingestion_timestamp FROM metadata ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%w: fetch metadata: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var records []domain.MetadataRecord
	for rows.Next() {
		var rec domain.MetadataRecord
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.Source, &rec.IngestionTimestamp); err != nil {
			return nil, fmt.Errorf("%w: scan metadata: %v", domain.ErrPersistence, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: fetch metadata: %v", domain.ErrPersistence, err)
	}
	return records, nil
}

func (r *MetadataRepository) Close() error {
	return r.db.Close()
}
