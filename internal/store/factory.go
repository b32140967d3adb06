// Package store selects and opens a storage backend from configuration.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/wawi/internal/postgres"
	"github.com/mesh-intelligence/wawi/internal/sqlite"
	"github.com/mesh-intelligence/wawi/pkg/types"
)

// Factory builds open, schema-ensured connections.
type Factory struct {
	// DefaultPath is the embedded database used when the configuration names
	// no path of its own and the server backend is unavailable.
	DefaultPath string

	log zerolog.Logger
}

// NewFactory returns a Factory that falls back to defaultPath.
func NewFactory(defaultPath string, log zerolog.Logger) *Factory {
	return &Factory{
		DefaultPath: defaultPath,
		log:         log.With().Str("component", "factory").Logger(),
	}
}

// Create returns an open connection with the schema in place. A client/server
// backend that cannot be reached is replaced by the embedded backend; the
// substitution is logged, not returned. Errors come only from the embedded
// engine itself (types.ErrConnection) or from schema creation (types.ErrSchema).
func (f *Factory) Create(ctx context.Context, cfg types.Config) (types.Conn, error) {
	conn, err := f.Open(ctx, cfg)
	if err != nil {
		if cfg.Backend != types.BackendClientServer || !errors.Is(err, types.ErrConnection) {
			return nil, err
		}
		path := f.fallbackPath(cfg)
		f.log.Warn().
			Err(err).
			Str("server", cfg.String()).
			Str("path", path).
			Msg("client/server backend unavailable, falling back to embedded")

		conn, err = f.Open(ctx, types.Config{Backend: types.BackendEmbedded, Path: path})
		if err != nil {
			return nil, err
		}
	}

	if err := conn.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	f.log.Info().Str("backend", conn.Kind()).Msg("tables initialized")
	return conn, nil
}

// Open opens exactly the configured backend, without fallback and without
// touching the schema.
func (f *Factory) Open(ctx context.Context, cfg types.Config) (types.Conn, error) {
	if cfg.Backend == types.BackendEmbedded && cfg.Path == "" {
		cfg.Path = f.DefaultPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var conn types.Conn
	switch cfg.Backend {
	case types.BackendEmbedded:
		conn = sqlite.NewBackend(cfg.Path, f.log)
	case types.BackendClientServer:
		conn = postgres.NewBackend(cfg, f.log)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}

	if err := conn.Open(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}

// Probe opens the configured backend, runs a round-trip query and closes it.
func (f *Factory) Probe(ctx context.Context, cfg types.Config) error {
	conn, err := f.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.Ping(ctx)
}

func (f *Factory) fallbackPath(cfg types.Config) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	return f.DefaultPath
}
