// Package postgres implements the client/server storage backend on top of a
// single pgx connection.
package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/wawi/pkg/types"
)

// DefaultConnectTimeout bounds how long Open waits for the server.
const DefaultConnectTimeout = 5 * time.Second

// Compile-time interface check.
var _ types.Conn = (*Backend)(nil)

// Backend implements types.Conn over one PostgreSQL connection.
type Backend struct {
	mu      sync.Mutex
	cfg     types.Config
	timeout time.Duration
	conn    *pgx.Conn
	log     zerolog.Logger
}

// NewBackend creates a backend for the server described by cfg. The backend
// is not open; call Open.
func NewBackend(cfg types.Config, log zerolog.Logger) *Backend {
	return &Backend{
		cfg:     cfg,
		timeout: DefaultConnectTimeout,
		log:     log.With().Str("backend", types.BackendClientServer).Logger(),
	}
}

// WithConnectTimeout overrides DefaultConnectTimeout.
func (b *Backend) WithConnectTimeout(d time.Duration) *Backend {
	b.timeout = d
	return b
}

// Kind returns types.BackendClientServer.
func (b *Backend) Kind() string { return types.BackendClientServer }

// connString renders cfg as a postgres URL. The secret is embedded, so the
// result must never be logged.
func (b *Backend) connString() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(b.cfg.Host, strconv.Itoa(b.cfg.Port)),
		Path:   "/" + b.cfg.Database,
	}
	if b.cfg.Secret != "" {
		u.User = url.UserPassword(b.cfg.User, b.cfg.Secret)
	} else {
		u.User = url.User(b.cfg.User)
	}
	q := url.Values{}
	q.Set("application_name", "wawi")
	u.RawQuery = q.Encode()
	return u.String()
}

// Open connects to the server. Unreachable hosts, rejected credentials and
// missing databases all return an error wrapping types.ErrConnection.
func (b *Backend) Open(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil {
		return nil
	}

	pgCfg, err := pgx.ParseConfig(b.connString())
	if err != nil {
		return fmt.Errorf("%w: parse connection settings: %w", types.ErrConnection, err)
	}
	pgCfg.ConnectTimeout = b.timeout

	b.log.Info().
		Str("host", b.cfg.Host).
		Int("port", b.cfg.Port).
		Str("user", b.cfg.User).
		Str("database", b.cfg.Database).
		Msg("connecting")

	conn, err := pgx.ConnectConfig(ctx, pgCfg)
	if err != nil {
		hint := connectHint(err)
		b.log.Error().Err(err).Str("hint", hint).Msg("connect failed")
		return fmt.Errorf("%w: %s: %w", types.ErrConnection, hint, err)
	}

	b.conn = conn
	b.log.Info().Msg("connected")
	return nil
}

// Close terminates the connection. Idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	err := b.conn.Close(ctx)
	b.conn = nil
	if err != nil {
		return fmt.Errorf("%w: close: %w", types.ErrConnection, err)
	}
	b.log.Info().Msg("disconnected")
	return nil
}

// Exec runs stmt and returns the number of affected rows.
func (b *Backend) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	conn, err := b.handle(stmt)
	if err != nil {
		return 0, err
	}
	tag, err := conn.Exec(ctx, rebind(stmt), args...)
	if err != nil {
		return 0, b.queryError(stmt, err)
	}
	return tag.RowsAffected(), nil
}

// Insert runs an INSERT statement with a RETURNING clause for idColumn and
// returns the generated key.
func (b *Backend) Insert(ctx context.Context, stmt, idColumn string, args ...any) (int64, error) {
	conn, err := b.handle(stmt)
	if err != nil {
		return 0, err
	}
	if idColumn == "" {
		return 0, fmt.Errorf("%w: insert needs an id column", types.ErrQuery)
	}
	q := rebind(strings.TrimRight(strings.TrimSpace(stmt), ";")) + " RETURNING " + idColumn

	var id int64
	if err := conn.QueryRow(ctx, q, args...).Scan(&id); err != nil {
		return 0, b.queryError(stmt, err)
	}
	return id, nil
}

// FetchAll runs a query and returns every row keyed by column name.
func (b *Backend) FetchAll(ctx context.Context, stmt string, args ...any) ([]types.Row, error) {
	conn, err := b.handle(stmt)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, rebind(stmt), args...)
	if err != nil {
		return nil, b.queryError(stmt, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var result []types.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, b.queryError(stmt, err)
		}
		row := make(types.Row, len(fields))
		for i, f := range fields {
			v, err := normalize(values[i])
			if err != nil {
				return nil, b.queryError(stmt, err)
			}
			row[f.Name] = v
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
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("%w: %w", types.ErrSchema, types.ErrClosed)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", types.ErrSchema, err)
	}
	defer tx.Rollback(ctx)

	for _, ddl := range schemaDDL {
		if _, err := tx.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("%w: %w", types.ErrSchema, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
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

func (b *Backend) handle(stmt string) (*pgx.Conn, error) {
	if strings.TrimSpace(stmt) == "" {
		return nil, fmt.Errorf("%w: empty statement", types.ErrQuery)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil || b.conn.IsClosed() {
		return nil, fmt.Errorf("%w: %w", types.ErrConnection, types.ErrClosed)
	}
	return b.conn, nil
}

func (b *Backend) queryError(stmt string, err error) error {
	b.log.Error().Err(err).Str("stmt", stmt).Msg("statement failed")
	return mapError(err)
}

// normalize converts pgx-native values into the int64/float64/string set the
// managers expect.
func normalize(v any) (any, error) {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil, nil
		}
		f, err := x.Float64Value()
		if err != nil {
			return nil, err
		}
		return f.Float64, nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float32:
		return float64(x), nil
	case []byte:
		return string(x), nil
	default:
		return v, nil
	}
}
