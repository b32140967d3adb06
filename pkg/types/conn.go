package types

import "context"

// Row is one fetched row keyed by column name. Values are driver-native
// (int64, float64, string, nil); managers coerce them into entity fields.
type Row map[string]any

// Conn is the capability set every storage backend implements. Statements use
// "?" placeholders; backends that need a different style translate them.
// All values are bound as parameters.
type Conn interface {
	// Kind returns the backend name (BackendEmbedded or BackendClientServer).
	Kind() string

	// Open acquires the underlying handle. Returns an error wrapping
	// ErrConnection when the store cannot be reached.
	Open(ctx context.Context) error

	// Close releases the handle. Idempotent.
	Close() error

	// Exec runs a statement and returns the number of affected rows.
	Exec(ctx context.Context, stmt string, args ...any) (int64, error)

	// Insert runs an INSERT statement and returns the key the store generated
	// for idColumn.
	Insert(ctx context.Context, stmt, idColumn string, args ...any) (int64, error)

	// FetchAll runs a query and returns every row.
	FetchAll(ctx context.Context, stmt string, args ...any) ([]Row, error)

	// EnsureSchema creates every known table if absent. Idempotent.
	EnsureSchema(ctx context.Context) error

	// Ping performs a trivial round-trip query.
	Ping(ctx context.Context) error
}
