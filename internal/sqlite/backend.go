package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/wawi/pkg/types"
)

// Compile-time interface check.
var _ types.Conn = (*Backend)(nil)

// Backend implements types.Conn over a single SQLite file. One process is
// assumed; concurrent writers from other processes are not coordinated.
type Backend struct {
	mu   sync.Mutex
	path string
	db   *sql.DB
	log  zerolog.Logger
}

// NewBackend creates a backend for the database file at path. The backend is
// not open; call Open.
func NewBackend(path string, log zerolog.Logger) *Backend {
	return &Backend{
		path: path,
		log:  log.With().Str("backend", types.BackendEmbedded).Logger(),
	}
}

// Kind returns types.BackendEmbedded.
func (b *Backend) Kind() string { return types.BackendEmbedded }

// Path returns the database file path.
func (b *Backend) Path() string { return b.path }

// Open creates the parent directory if needed, opens the file and verifies
// it with a ping. Opening an already open backend is a no-op.
func (b *Backend) Open(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db != nil {
		return nil
	}
	if b.path == "" {
		return fmt.Errorf("%w: empty database path", types.ErrConnection)
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("%w: create directory for %s: %w", types.ErrConnection, b.path, err)
	}

	db, err := sql.Open("sqlite", b.path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", types.ErrConnection, b.path, err)
	}
	// One handle for the lifetime of the backend.
	db.SetMaxOpenConns(1)

	// Reading the catalog catches files that exist but are not databases.
	var n int
	if err := db.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master").Scan(&n); err != nil {
		db.Close()
		return fmt.Errorf("%w: open %s: %w", types.ErrConnection, b.path, err)
	}

	b.db = db
	b.log.Info().Str("path", b.path).Msg("connected")
	return nil
}

// Close releases the database handle. Idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	if err != nil {
		return fmt.Errorf("%w: close %s: %w", types.ErrConnection, b.path, err)
	}
	b.log.Info().Msg("disconnected")
	return nil
}

// Exec runs stmt and returns the number of affected rows.
func (b *Backend) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	db, err := b.handle(stmt)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, b.queryError(stmt, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, b.queryError(stmt, err)
	}
	return n, nil
}

// Insert runs an INSERT statement and returns the generated rowid.
// AUTOINCREMENT tables alias the rowid to the id column, so idColumn is not
// needed here.
func (b *Backend) Insert(ctx context.Context, stmt, idColumn string, args ...any) (int64, error) {
	db, err := b.handle(stmt)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, b.queryError(stmt, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, b.queryError(stmt, err)
	}
	return id, nil
}

// FetchAll runs a query and returns every row keyed by column name.
func (b *Backend) FetchAll(ctx context.Context, stmt string, args ...any) ([]types.Row, error) {
	db, err := b.handle(stmt)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, b.queryError(stmt, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, b.queryError(stmt, err)
	}

	var result []types.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, b.queryError(stmt, err)
		}
		row := make(types.Row, len(cols))
		for i, col := range cols {
			if raw, ok := values[i].([]byte); ok {
				row[col] = string(raw)
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, b.queryError(stmt, err)
	}
	return result, nil
}

// EnsureSchema creates all tables if absent, in one transaction.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	b.mu.Lock()
	db := b.db
	b.mu.Unlock()
	if db == nil {
		return fmt.Errorf("%w: %w", types.ErrSchema, types.ErrClosed)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", types.ErrSchema, err)
	}
	defer tx.Rollback()

	for _, ddl := range schemaDDL {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("%w: %w", types.ErrSchema, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", types.ErrSchema, err)
	}
	b.log.Debug().Int("tables", len(schemaDDL)).Msg("schema ensured")
	return nil
}

// Ping runs a trivial round-trip query.
func (b *Backend) Ping(ctx context.Context) error {
	rows, err := b.FetchAll(ctx, "SELECT 1 AS ok")
	if err != nil {
		return err
	}
	if len(rows) != 1 {
		return fmt.Errorf("%w: ping returned %d rows", types.ErrQuery, len(rows))
	}
	return nil
}

// handle returns the open database after rejecting empty statements.
func (b *Backend) handle(stmt string) (*sql.DB, error) {
	if strings.TrimSpace(stmt) == "" {
		return nil, fmt.Errorf("%w: empty statement", types.ErrQuery)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil, fmt.Errorf("%w: %w", types.ErrConnection, types.ErrClosed)
	}
	return b.db, nil
}

// queryError maps a driver error into the storage taxonomy. Failures to reach
// the file itself are connection errors; everything else is a query error.
func (b *Backend) queryError(stmt string, err error) error {
	b.log.Error().Err(err).Str("stmt", stmt).Msg("statement failed")

	var serr *msqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() & 0xff {
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_IOERR:
			return fmt.Errorf("%w: %w", types.ErrConnection, err)
		}
	}
	return fmt.Errorf("%w: %w", types.ErrQuery, err)
}
