package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/marksrv/marksrv/internal/model"
)

const currentSchemaVersion = 1

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store provides CRUD access to the five entity kinds and the tree
// index. A Store either wraps the database directly or, inside Tx, a
// single transaction.
type Store struct {
	db   *sql.DB // nil when the store is bound to a transaction
	q    querier
	path string
}

// Open creates the database file (and parent directory) if needed,
// applies pragmas and runs migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &Store{db: db, q: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Tx runs fn inside a transaction, passing a Store bound to it. If the
// receiver is already transactional the existing transaction is reused,
// so composed operations share one atomic scope.
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(&Store{q: tx, path: s.path}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// migrate runs database migrations.
func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *Store) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY NOT NULL,
			title TEXT NOT NULL,
			user_id TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_folders_user_id ON folders(user_id);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			user_id TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_user_id ON bookmarks(user_id);

		CREATE TABLE IF NOT EXISTS shares (
			id TEXT PRIMARY KEY NOT NULL,
			folder_id TEXT NOT NULL,
			owner TEXT NOT NULL,
			participant TEXT NOT NULL,
			participant_type TEXT NOT NULL,
			can_write INTEGER NOT NULL DEFAULT 0,
			can_share INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_shares_folder_id ON shares(folder_id);
		CREATE INDEX IF NOT EXISTS idx_shares_owner ON shares(owner);

		CREATE TABLE IF NOT EXISTS shared_folders (
			id TEXT PRIMARY KEY NOT NULL,
			folder_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			share_id TEXT NOT NULL,
			UNIQUE (folder_id, user_id)
		);

		CREATE INDEX IF NOT EXISTS idx_shared_folders_share_id ON shared_folders(share_id);
		CREATE INDEX IF NOT EXISTS idx_shared_folders_user_id ON shared_folders(user_id);

		CREATE TABLE IF NOT EXISTS public_folders (
			id TEXT PRIMARY KEY NOT NULL,
			folder_id TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tree_index (
			type TEXT NOT NULL,
			item_id TEXT NOT NULL,
			parent_folder_id TEXT NOT NULL,
			ord INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (type, item_id)
		);

		CREATE INDEX IF NOT EXISTS idx_tree_index_parent ON tree_index(parent_folder_id);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// notFound wraps model.ErrNotFound with the entity kind and id.
func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, model.ErrNotFound)
}

// scanErr translates sql.ErrNoRows into the domain not-found error.
func scanErr(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(kind, id)
	}
	return err
}
