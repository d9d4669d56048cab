package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Schema version tracking:
// 1 - Initial schema (records + collections tables)
const currentSchemaVersion = 1

// Records is the record-store contract shared by the SQLite Store and
// the in-memory twin. Payloads are opaque bytes; callers own encoding.
type Records interface {
	// GetAll returns every payload in the collection, unordered.
	GetAll(ctx context.Context, collection string) ([][]byte, error)
	// Get returns the payload stored under id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) ([]byte, error)
	// Put upserts the payload under id (create-or-replace).
	Put(ctx context.Context, collection, id string, payload []byte) error
	// Add inserts the payload under id, failing with ErrDuplicateID if
	// the id already exists. Used where first-write must be guaranteed.
	Add(ctx context.Context, collection, id string, payload []byte) error
	// Delete removes the record under id. Absent ids are not an error.
	Delete(ctx context.Context, collection, id string) error
	// Close releases the underlying resources.
	Close() error
}

// Store is the SQLite-backed record store. All collections share one
// records table keyed by (collection, id); collection names are
// registered at open and validated on every operation.
type Store struct {
	db          *sql.DB
	collections map[string]struct{}
}

var _ Records = (*Store)(nil)

// Open creates or opens the database at path and registers the given
// collections. Failures wrap ErrStoreUnavailable so callers can detect
// the degraded-mode condition with errors.Is.
//
// Open is idempotent - safe to call against an existing database, and
// registering collections that already exist is a no-op.
func Open(path string, collections []string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("%w: create dir: %v", ErrStoreUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrStoreUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: connect: %v", ErrStoreUnavailable, err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under interleaved handlers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := applySchema(db, collections); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	reg := make(map[string]struct{}, len(collections))
	for _, c := range collections {
		reg[c] = struct{}{}
	}
	return &Store{db: db, collections: reg}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) checkCollection(collection string) error {
	if _, ok := s.collections[collection]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %v", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if absent and runs additive migrations.
// Idempotent: re-running against an up-to-date database is a no-op.
func applySchema(db *sql.DB, collections []string) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			payload    BLOB NOT NULL,
			PRIMARY KEY (collection, id)
		);
		CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY
		);
	`); err != nil {
		return fmt.Errorf("create schema: %v", err)
	}

	if err := runMigrations(db); err != nil {
		return err
	}

	// Collection registration is additive: new names are inserted,
	// existing rows are never dropped or renamed here.
	for _, c := range collections {
		if _, err := db.Exec(
			`INSERT INTO collections (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, c,
		); err != nil {
			return fmt.Errorf("register collection %q: %v", c, err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations based on
// user_version. Each step must be additive; dropping or renaming an
// existing collection requires an explicit data migration, not a step
// here.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %v", err)
	}

	// No incremental steps yet beyond the base schema.

	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %v", err)
		}
	}
	return nil
}
