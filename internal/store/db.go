// Package store persists the installed-package repository and the operation
// journal in a SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/conn-castle/core-installer/internal/messages"
)

// ErrNotInitialized is returned when the schema has not been created yet.
var ErrNotInitialized = errors.New(messages.StoreNotInitialized)

// Store provides SQLite database operations for coreinst.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new Store with the specified database path.
// Use ":memory:" for in-memory databases.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf(messages.StoreOpenFmt, dbPath, err)
	}

	// SQLite only allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf(messages.StorePragmaFmt, "journal_mode", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf(messages.StorePragmaFmt, "busy_timeout", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Open creates the parent directory of dbPath, opens the database and ensures the schema exists.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf(messages.StoreCreateDirFmt, filepath.Dir(dbPath), err)
	}
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.CreateSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateSchema creates all tables and indexes.
func (s *Store) CreateSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf(messages.StoreSchemaFmt, err)
	}
	return nil
}

// wrapErr maps a missing-table error to ErrNotInitialized.
func wrapErr(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%w: %v", ErrNotInitialized, err)
	}
	return err
}
