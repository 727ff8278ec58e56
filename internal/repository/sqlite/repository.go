package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chronotrakr/internal/errors"
	"chronotrakr/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Options tunes an SQLiteRepository. Zero values disable the timeouts.
type Options struct {
	QueryTimeout   time.Duration
	WriteTimeout   time.Duration
	DirPermissions os.FileMode
}

// SQLiteRepository implements repository.Repository on a single kv table
type SQLiteRepository struct {
	db   *sql.DB
	opts Options
	now  func() time.Time
}

// New creates a new SQLite repository instance
func New(dbPath string) (*SQLiteRepository, error) {
	return NewWithOptions(dbPath, Options{})
}

// NewWithOptions creates the database file (and its directory) if needed,
// applies pending migrations and returns the repository.
func NewWithOptions(dbPath string, opts Options) (*SQLiteRepository, error) {
	if !isMemoryPath(dbPath) {
		perm := opts.DirPermissions
		if perm == 0 {
			perm = 0o755
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), perm); err != nil {
			return nil, errors.NewDatabaseError("create database directory", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	ctx, cancel := withTimeout(context.Background(), opts.WriteTimeout)
	defer cancel()
	if err := migrations.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{db: db, opts: opts, now: time.Now}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Get returns the value stored under key
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := withTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	record, ok, err := r.getRecord(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	return record.Value, true, nil
}

// Put upserts the value stored under key
func (r *SQLiteRepository) Put(ctx context.Context, key string, value []byte) error {
	ctx, cancel := withTimeout(ctx, r.opts.WriteTimeout)
	defer cancel()

	query := `
	INSERT INTO kv (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	return Execute(ctx, r.db, "put "+key, query, key, string(value), FormatTimeForDB(r.now()))
}

// Delete removes key if present
func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	ctx, cancel := withTimeout(ctx, r.opts.WriteTimeout)
	defer cancel()

	return Execute(ctx, r.db, "delete "+key, `DELETE FROM kv WHERE key = ?`, key)
}

func (r *SQLiteRepository) getRecord(ctx context.Context, key string) (*Record, bool, error) {
	query := `SELECT key, value, updated_at FROM kv WHERE key = ?`
	return QuerySingle(ctx, r.db, query, ScanRecord, "record", key)
}

func isMemoryPath(dbPath string) bool {
	return dbPath == ":memory:" || strings.HasPrefix(dbPath, "file::memory:")
}
