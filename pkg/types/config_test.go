package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	server := Config{
		Backend:  BackendClientServer,
		Host:     "db.local",
		Port:     5432,
		User:     "wawi",
		Database: "wawi",
	}

	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", Path: "/tmp/wawi.db"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "oracle", Path: "/tmp/wawi.db"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid embedded config",
			config:  Config{Backend: BackendEmbedded, Path: "/tmp/wawi.db"},
			wantErr: nil,
		},
		{
			name:    "embedded without path",
			config:  Config{Backend: BackendEmbedded},
			wantErr: ErrConfig,
		},
		{
			name:    "valid client_server config",
			config:  server,
			wantErr: nil,
		},
		{
			name:    "client_server without host",
			config:  func() Config { c := server; c.Host = ""; return c }(),
			wantErr: ErrConfig,
		},
		{
			name:    "client_server with port out of range",
			config:  func() Config { c := server; c.Port = 70000; return c }(),
			wantErr: ErrConfig,
		},
		{
			name:    "client_server without database",
			config:  func() Config { c := server; c.Database = ""; return c }(),
			wantErr: ErrConfig,
		},
		{
			name:    "defaults are valid",
			config:  DefaultConfig("/tmp/wawi.db"),
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigErrorsAreConfigErrors(t *testing.T) {
	assert.ErrorIs(t, ErrBackendEmpty, ErrConfig)
	assert.ErrorIs(t, ErrBackendUnknown, ErrConfig)
}

func TestConfigStringOmitsSecret(t *testing.T) {
	c := Config{Backend: BackendClientServer, Host: "h", Port: 1, User: "u", Secret: "hunter2", Database: "d"}
	assert.NotContains(t, c.String(), "hunter2")
	assert.Equal(t, "client_server u@h:1/d", c.String())
}
