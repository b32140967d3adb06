// Package config persists the backend selection and connection parameters
// as a YAML document in the configuration directory.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/wawi/internal/paths"
	"github.com/mesh-intelligence/wawi/internal/store"
	"github.com/mesh-intelligence/wawi/pkg/types"
)

// EnvPrefix prefixes environment overrides, e.g. WAWI_SECRET.
const EnvPrefix = "WAWI"

// Document keys.
const (
	keyBackend  = "backend"
	keyPath     = "path"
	keyHost     = "host"
	keyPort     = "port"
	keyUser     = "user"
	keySecret   = "secret"
	keyDatabase = "database"
)

// Store reads and writes config.yaml in one directory.
type Store struct {
	dir         string
	defaultPath string
	base        zerolog.Logger
	log         zerolog.Logger
}

// NewStore returns a store for the document in dir. defaultPath is the
// embedded database file used when the document names none.
func NewStore(dir, defaultPath string, log zerolog.Logger) *Store {
	return &Store{
		dir:         dir,
		defaultPath: defaultPath,
		base:        log,
		log:         log.With().Str("component", "config").Logger(),
	}
}

// File returns the path of the configuration document.
func (s *Store) File() string {
	return filepath.Join(s.dir, paths.ConfigFileName)
}

// Defaults returns the configuration used when no valid document exists.
func (s *Store) Defaults() types.Config {
	return types.DefaultConfig(s.defaultPath)
}

// Load reads the document, applies WAWI_* environment overrides and
// validates the result. Overrides apply even when there is no document. A
// missing or unreadable document yields the defaults with overrides applied;
// an invalid result yields the plain defaults. Both cases also return an
// error wrapping types.ErrConfig.
func (s *Store) Load() (types.Config, error) {
	def := s.Defaults()

	v := viper.New()
	v.SetConfigFile(s.File())
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault(keyBackend, def.Backend)
	v.SetDefault(keyPath, def.Path)
	v.SetDefault(keyHost, def.Host)
	v.SetDefault(keyPort, def.Port)
	v.SetDefault(keyUser, def.User)
	v.SetDefault(keySecret, def.Secret)
	v.SetDefault(keyDatabase, def.Database)

	var readErr error
	if _, err := os.Stat(s.File()); err != nil {
		readErr = fmt.Errorf("%w: %w", types.ErrConfig, err)
	} else if err := v.ReadInConfig(); err != nil {
		readErr = fmt.Errorf("%w: read %s: %w", types.ErrConfig, s.File(), err)
	}

	port, err := cast.ToIntE(v.Get(keyPort))
	if err != nil {
		return def, fmt.Errorf("%w: port: %w", types.ErrConfig, err)
	}
	cfg := types.Config{
		Backend:  v.GetString(keyBackend),
		Path:     v.GetString(keyPath),
		Host:     v.GetString(keyHost),
		Port:     port,
		User:     v.GetString(keyUser),
		Secret:   v.GetString(keySecret),
		Database: v.GetString(keyDatabase),
	}
	if err := cfg.Validate(); err != nil {
		return def, fmt.Errorf("%w: %w", types.ErrConfig, err)
	}
	return cfg, readErr
}

// Save validates cfg and atomically replaces the document.
func (s *Store) Save(cfg types.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", types.ErrConfig, err)
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", types.ErrConfig, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", types.ErrConfig, s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrConfig, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write: %w", types.ErrConfig, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: write: %w", types.ErrConfig, err)
	}
	// The document may carry a secret.
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("%w: %w", types.ErrConfig, err)
	}
	if err := os.Rename(tmp.Name(), s.File()); err != nil {
		return fmt.Errorf("%w: replace %s: %w", types.ErrConfig, s.File(), err)
	}

	s.log.Info().Str("backend", cfg.Backend).Str("file", s.File()).Msg("configuration saved")
	return nil
}

// EnsureDefault writes the default document if none exists.
func (s *Store) EnsureDefault() error {
	_, err := os.Stat(s.File())
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", types.ErrConfig, err)
	}
	return s.Save(s.Defaults())
}

// Test reports whether cfg can be used to open a working connection. The
// configured backend is tried as is, without fallback.
func (s *Store) Test(ctx context.Context, cfg types.Config) bool {
	f := store.NewFactory(s.defaultPath, s.base)
	if err := f.Probe(ctx, cfg); err != nil {
		s.log.Info().Err(err).Str("config", cfg.String()).Msg("connection test failed")
		return false
	}
	s.log.Info().Str("config", cfg.String()).Msg("connection test succeeded")
	return true
}
