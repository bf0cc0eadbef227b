// Package store persists rendered rasters in a SQLite database so they
// survive restarts of the server and can be warmed ahead of time.
package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite" // SQLite driver
)

var log = commonlog.GetLogger("oklch.store")

// Store is a key/blob table of PNG rasters. Blobs are gzip-compressed at rest.
// It satisfies raster.Store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the cache database at path. Use ":memory:" for a
// throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Debugf("opened raster cache %s", path)
	return &Store{db: db, path: path}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS rasters (
			key TEXT PRIMARY KEY,
			data BLOB NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Get returns the uncompressed blob stored under key. ok is false when the
// key is absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var compressed []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM rasters WHERE key = ?", key).Scan(&compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query %s: %w", key, err)
	}

	data, err := gzipDecompress(compressed)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decompress %s: %w", key, err)
	}
	return data, true, nil
}

// Put stores data under key, replacing any previous blob.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	compressed, err := gzipCompress(data)
	if err != nil {
		return fmt.Errorf("failed to compress %s: %w", key, err)
	}

	if _, err := s.db.ExecContext(ctx, "INSERT OR REPLACE INTO rasters (key, data) VALUES (?, ?)", key, compressed); err != nil {
		return fmt.Errorf("failed to insert %s: %w", key, err)
	}
	return nil
}

// Has reports whether key is stored without reading the blob.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rasters WHERE key = ?", key).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to query %s: %w", key, err)
	}
	return n > 0, nil
}

// Count returns the number of stored rasters.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rasters").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rasters: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)

	if _, err := gw.Write(data); err != nil {
		gw.Close()
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}
