// ABOUTME: SQLite connection lifecycle shared by the catalog and log stores.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required).
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	_ "modernc.org/sqlite"
)

const (
	// CatalogFileName is the catalog store's file inside the data directory.
	CatalogFileName = "system.db"
	// LogFileName is the log store's file inside the data directory.
	LogFileName = "user_log.db"
)

// querier is satisfied by both *sql.DB and *sql.Tx so store methods run
// unchanged inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// openDB creates the parent directory, opens a single-connection pool on
// dbPath and migrates it to the schema in dir.
func openDB(dbPath, dir string) (*sql.DB, error) {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer, and per-connection pragmas apply everywhere.
	db.SetMaxOpenConns(1)

	if err := configurePragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}

	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	if err := runMigrations(db, dir); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func configurePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction on db, rolling back on error.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "lift")
}

// DefaultCatalogPath returns the catalog store path in the default data directory.
func DefaultCatalogPath() string {
	return filepath.Join(DataDir(), CatalogFileName)
}

// DefaultLogPath returns the log store path in the default data directory.
func DefaultLogPath() string {
	return filepath.Join(DataDir(), LogFileName)
}

// Stores holds one handle to each store for a single unit of work.
type Stores struct {
	Catalog *CatalogStore
	Log     *LogStore
}

// OpenStores opens both stores. Nothing is left open on error.
func OpenStores(catalogPath, logPath string) (*Stores, error) {
	catalog, err := OpenCatalog(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog store: %w", err)
	}
	log, err := OpenLog(logPath)
	if err != nil {
		_ = catalog.Close()
		return nil, fmt.Errorf("open log store: %w", err)
	}
	return &Stores{Catalog: catalog, Log: log}, nil
}

// Close closes both stores and reports every failure.
func (s *Stores) Close() error {
	var err error
	if s.Catalog != nil {
		err = multierr.Append(err, s.Catalog.Close())
	}
	if s.Log != nil {
		err = multierr.Append(err, s.Log.Close())
	}
	return err
}
