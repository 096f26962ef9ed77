// Package planstore persists the planner's local state in SQLite: the
// remaining-yardage threshold, the blocked and hidden machine lists, and
// snapshots of committed planning runs.
//
// The store is a single local file (or :memory: in tests). WAL and a busy
// timeout are applied for predictable CLI behavior.
package planstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
)

const driverName = "loomplan-sqlite"

func init() {
	sql.Register(driverName, &sqlite.Driver{})
}

// DefaultThresholdMeters is the remaining-yardage threshold used until the
// operator stores their own.
const DefaultThresholdMeters = 100

// Store errors.
var (
	// ErrNotFound is returned when a requested run snapshot does not exist.
	ErrNotFound = errors.New("not found")
)

// Config configures the store location.
type Config struct {
	// Path is the local filesystem path to the database. ":memory:" gives
	// an in-process throwaway store.
	Path string
}

// Store is a SQLite-backed planning state store.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the store and migrates its schema.
// Parent directories are created for local file paths.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open plan store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping plan store: %w", err)
	}
	if err := configure(ctx, db, dsn); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func buildDSN(cfg Config) (string, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return "", errors.New("plan store path is required")
	}
	if path == ":memory:" {
		return path, nil
	}
	if strings.HasPrefix(path, "file:") {
		return path, nil
	}
	if err := ensureStoreDir(path); err != nil {
		return "", err
	}
	return "file:" + filepath.Clean(path), nil
}

func ensureStoreDir(path string) error {
	dir := filepath.Dir(filepath.Clean(path))
	if dir == "." || dir == string(filepath.Separator) {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	return nil
}

func configure(ctx context.Context, db *sql.DB, dsn string) error {
	if dsn == ":memory:" {
		// A second connection to :memory: would see a different database.
		db.SetMaxOpenConns(1)
		return nil
	}

	// Keep a single connection and use WAL to reduce lock contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var journalMode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode=WAL").Scan(&journalMode); err != nil {
		return fmt.Errorf("enable WAL mode: %w", err)
	}
	var busyTimeout int
	if err := db.QueryRowContext(ctx, "PRAGMA busy_timeout=5000").Scan(&busyTimeout); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	return nil
}
