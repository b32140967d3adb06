package types

import "fmt"

// Config holds backend selection and connection parameters. Exactly one
// backend kind is active; the parameters of the other kind are kept so the
// settings survive switching back and forth.
type Config struct {
	Backend  string `yaml:"backend"`
	Path     string `yaml:"path,omitempty"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Secret   string `yaml:"secret,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// Supported backend names.
const (
	BackendEmbedded     = "embedded"
	BackendClientServer = "client_server"
)

// Defaults for the client/server parameters.
const (
	DefaultHost     = "localhost"
	DefaultPort     = 5432
	DefaultUser     = "postgres"
	DefaultDatabase = "wawi"
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendEmbedded:     true,
	BackendClientServer: true,
}

// DefaultConfig returns the embedded-engine configuration storing its file at
// path, with client/server parameters prefilled.
func DefaultConfig(path string) Config {
	return Config{
		Backend:  BackendEmbedded,
		Path:     path,
		Host:     DefaultHost,
		Port:     DefaultPort,
		User:     DefaultUser,
		Database: DefaultDatabase,
	}
}

// Validate checks that the parameters required by the active backend are
// present. Errors wrap ErrBackendEmpty, ErrBackendUnknown or ErrConfig.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
	}
	switch c.Backend {
	case BackendEmbedded:
		if c.Path == "" {
			return fmt.Errorf("%w: embedded backend needs a path", ErrConfig)
		}
	case BackendClientServer:
		if c.Host == "" {
			return fmt.Errorf("%w: client_server backend needs a host", ErrConfig)
		}
		if c.Port < 1 || c.Port > 65535 {
			return fmt.Errorf("%w: port %d out of range", ErrConfig, c.Port)
		}
		if c.User == "" {
			return fmt.Errorf("%w: client_server backend needs a user", ErrConfig)
		}
		if c.Database == "" {
			return fmt.Errorf("%w: client_server backend needs a database", ErrConfig)
		}
	}
	return nil
}

// String renders the config without the secret.
func (c Config) String() string {
	if c.Backend == BackendClientServer {
		return fmt.Sprintf("%s %s@%s:%d/%s", c.Backend, c.User, c.Host, c.Port, c.Database)
	}
	return fmt.Sprintf("%s %s", c.Backend, c.Path)
}
