package postgres

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mesh-intelligence/wawi/pkg/types"
)

// SQLSTATE values and classes that mean the server cannot be used at all.
const (
	sqlstateInvalidCatalog = "3D000"
	classConnection        = "08"
	classInvalidAuth       = "28"
)

// connectHint describes why a connection attempt failed, for the log and the
// settings screen.
func connectHint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, classInvalidAuth):
			return "authentication failed, check user and secret"
		case pgErr.Code == sqlstateInvalidCatalog:
			return "database does not exist, check the database name"
		}
	}
	return "cannot reach server, check host and port"
}

// mapError maps a pgx error into the storage taxonomy.
func mapError(err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("%w: %w", types.ErrConnection, err)
	}
	return fmt.Errorf("%w: %w", types.ErrQuery, err)
}

func isConnectionError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, classConnection) ||
			strings.HasPrefix(pgErr.Code, classInvalidAuth) ||
			pgErr.Code == sqlstateInvalidCatalog
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}
