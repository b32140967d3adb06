package postgres

import (
	"context"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/wawi/pkg/types"
)

func TestBackend_ConnString(t *testing.T) {
	b := NewBackend(types.Config{
		Backend:  types.BackendClientServer,
		Host:     "db.example.com",
		Port:     6543,
		User:     "wawi",
		Secret:   "p@ss word",
		Database: "stock",
	}, zerolog.Nop())

	u, err := url.Parse(b.connString())
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.example.com:6543", u.Host)
	assert.Equal(t, "/stock", u.Path)
	assert.Equal(t, "wawi", u.User.Username())
	pw, ok := u.User.Password()
	assert.True(t, ok)
	assert.Equal(t, "p@ss word", pw)
	assert.Equal(t, "wawi", u.Query().Get("application_name"))
}

func TestBackend_ConnStringWithoutSecret(t *testing.T) {
	b := NewBackend(types.Config{Host: "h", Port: 5432, User: "u", Database: "d"}, zerolog.Nop())
	u, err := url.Parse(b.connString())
	require.NoError(t, err)
	_, ok := u.User.Password()
	assert.False(t, ok)
}

func TestBackend_OpenUnreachable(t *testing.T) {
	b := NewBackend(types.Config{
		Backend:  types.BackendClientServer,
		Host:     "127.0.0.1",
		Port:     1,
		User:     "wawi",
		Database: "wawi",
	}, zerolog.Nop()).WithConnectTimeout(2 * time.Second)

	err := b.Open(context.Background())
	assert.ErrorIs(t, err, types.ErrConnection)
	assert.Equal(t, types.BackendClientServer, b.Kind())
}

func TestBackend_NotOpen(t *testing.T) {
	b := NewBackend(types.Config{Host: "h", Port: 1, User: "u", Database: "d"}, zerolog.Nop())
	ctx := context.Background()

	_, err := b.Exec(ctx, "DELETE FROM products")
	assert.ErrorIs(t, err, types.ErrConnection)

	_, err = b.FetchAll(ctx, "SELECT 1")
	assert.ErrorIs(t, err, types.ErrClosed)

	_, err = b.Exec(ctx, "")
	assert.ErrorIs(t, err, types.ErrQuery, "empty statements are rejected before the handle check")

	assert.ErrorIs(t, b.EnsureSchema(ctx), types.ErrSchema)
	assert.NoError(t, b.Close())
}

func TestNormalize(t *testing.T) {
	v, err := normalize(int32(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	v, err = normalize([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	v, err = normalize(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

// liveConfig returns server settings from WAWI_TEST_PG_* variables, skipping
// the test when no server is configured.
func liveConfig(t *testing.T) types.Config {
	t.Helper()
	host := os.Getenv("WAWI_TEST_PG_HOST")
	if host == "" {
		t.Skip("WAWI_TEST_PG_HOST not set")
	}
	port, err := strconv.Atoi(os.Getenv("WAWI_TEST_PG_PORT"))
	if err != nil {
		port = types.DefaultPort
	}
	return types.Config{
		Backend:  types.BackendClientServer,
		Host:     host,
		Port:     port,
		User:     os.Getenv("WAWI_TEST_PG_USER"),
		Secret:   os.Getenv("WAWI_TEST_PG_SECRET"),
		Database: os.Getenv("WAWI_TEST_PG_DATABASE"),
	}
}

func TestBackend_Live(t *testing.T) {
	cfg := liveConfig(t)
	ctx := context.Background()

	b := NewBackend(cfg, zerolog.Nop())
	require.NoError(t, b.Open(ctx))
	defer b.Close()
	require.NoError(t, b.EnsureSchema(ctx))
	require.NoError(t, b.EnsureSchema(ctx))
	require.NoError(t, b.Ping(ctx))

	id, err := b.Insert(ctx, "INSERT INTO products (name, price, quantity) VALUES (?, ?, ?)", "product_id", "Laptop", 999.99, 10)
	require.NoError(t, err)
	t.Cleanup(func() { b.Exec(ctx, "DELETE FROM products WHERE product_id = ?", id) })

	rows, err := b.FetchAll(ctx, "SELECT product_id, name, price, quantity FROM products WHERE product_id = ?", id)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0]["product_id"])
	assert.InDelta(t, 999.99, rows[0]["price"], 1e-9)
	assert.Equal(t, int64(10), rows[0]["quantity"])

	for _, price := range []float64{1.234, 1e9} {
		pid, err := b.Insert(ctx, "INSERT INTO products (name, price, quantity) VALUES (?, ?, ?)", "product_id", "Precise", price, 1)
		require.NoError(t, err)
		t.Cleanup(func() { b.Exec(ctx, "DELETE FROM products WHERE product_id = ?", pid) })
		rows, err := b.FetchAll(ctx, "SELECT price FROM products WHERE product_id = ?", pid)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, price, rows[0]["price"])
	}

	_, err = b.Insert(ctx, "INSERT INTO products (name, price, quantity) VALUES (?, ?, ?)", "product_id", "Bad", -1.0, 1)
	assert.ErrorIs(t, err, types.ErrQuery)
}
