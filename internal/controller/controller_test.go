package controller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/wawi/internal/config"
	"github.com/mesh-intelligence/wawi/internal/store"
	"github.com/mesh-intelligence/wawi/pkg/types"
)

func newController(t *testing.T) (*Controller, *config.Store) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "data", "wawi.db")
	settings := config.NewStore(filepath.Join(dir, "conf"), dbPath, zerolog.Nop())
	factory := store.NewFactory(dbPath, zerolog.Nop())

	c, err := New(context.Background(), settings, factory, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, settings
}

func ptr(s string) *string { return &s }

func TestNew_DefaultsWithoutDocument(t *testing.T) {
	c, settings := newController(t)
	assert.Equal(t, settings.Defaults(), c.Settings())
	assert.Equal(t, types.BackendEmbedded, c.Backend())
	assert.Zero(t, c.Products.Len())
	assert.Zero(t, c.Customers.Len())
}

func TestController_AddProduct(t *testing.T) {
	tests := []struct {
		name    string
		form    ProductForm
		wantErr error
		field   string
	}{
		{"valid", ProductForm{"Laptop", "999.99", "10"}, nil, ""},
		{"comma decimal", ProductForm{"Mouse", "19,99", "50"}, nil, ""},
		{"empty name", ProductForm{"  ", "1", "1"}, types.ErrValidation, "name"},
		{"bad price", ProductForm{"x", "abc", "1"}, types.ErrValidation, "price"},
		{"negative price", ProductForm{"x", "-1", "1"}, types.ErrValidation, "price"},
		{"bad quantity", ProductForm{"x", "1", "1.5"}, types.ErrValidation, "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t)
			p, err := c.AddProduct(context.Background(), tt.form)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var verr *types.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.field, verr.Field)
				assert.Zero(t, c.Products.Len())
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, p.ID)
			assert.Equal(t, 1, c.Products.Len())
		})
	}
}

func TestController_UpdateProduct(t *testing.T) {
	c, _ := newController(t)
	ctx := context.Background()

	p, err := c.AddProduct(ctx, ProductForm{"Laptop", "999.99", "10"})
	require.NoError(t, err)

	got, err := c.UpdateProduct(ctx, p.ID, ProductPatch{Quantity: ptr("15")})
	require.NoError(t, err)
	assert.Equal(t, 15, got.Quantity)
	assert.InDelta(t, 999.99, got.Price, 1e-9)
	assert.Equal(t, "Laptop", got.Name)

	_, err = c.UpdateProduct(ctx, p.ID, ProductPatch{Price: ptr("free")})
	require.ErrorIs(t, err, types.ErrValidation)

	_, err = c.UpdateProduct(ctx, 999, ProductPatch{Name: ptr("x")})
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestController_RemoveProducts(t *testing.T) {
	c, _ := newController(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		p, err := c.AddProduct(ctx, ProductForm{fmt.Sprintf("p%d", i), "1", "1"})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	removed, err := c.RemoveProducts(ctx, []int64{ids[0], 77, ids[1]}, false)
	assert.Equal(t, []int64{ids[0], ids[1]}, removed)
	var batch *types.BatchError
	require.True(t, errors.As(err, &batch))
	assert.Equal(t, []int64{77}, batch.IDs())
	assert.Equal(t, 1, c.Products.Len())

	_, err = c.RemoveProducts(ctx, []int64{77}, true)
	require.NoError(t, err)
}

func TestController_Customers(t *testing.T) {
	c, _ := newController(t)
	ctx := context.Background()

	cu, err := c.AddCustomer(ctx, CustomerForm{"John Doe", "123 Main St", "john@example.com", "555-1234"})
	require.NoError(t, err)

	_, err = c.AddCustomer(ctx, CustomerForm{"x", "y", "nope", ""})
	require.ErrorIs(t, err, types.ErrValidation)

	got, err := c.UpdateCustomer(ctx, cu.ID, CustomerPatch{Phone: ptr(""), Address: ptr(" 1 New Rd ")})
	require.NoError(t, err)
	assert.Empty(t, got.Phone)
	assert.Equal(t, "1 New Rd", got.Address)
	assert.Equal(t, "john@example.com", got.Email)

	_, err = c.UpdateCustomer(ctx, cu.ID, CustomerPatch{Email: ptr("broken")})
	require.ErrorIs(t, err, types.ErrValidation)

	removed, err := c.RemoveCustomers(ctx, []int64{cu.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{cu.ID}, removed)
	assert.Zero(t, c.Customers.Len())
}

func TestController_ImportSampleData(t *testing.T) {
	c, _ := newController(t)
	ctx := context.Background()

	products, customers, err := c.ImportSampleData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, products)
	assert.Equal(t, 3, customers)

	products, customers, err = c.ImportSampleData(ctx)
	require.NoError(t, err)
	assert.Zero(t, products)
	assert.Zero(t, customers)
	assert.Equal(t, 4, c.Products.Len())
	assert.Equal(t, 3, c.Customers.Len())
}

func TestController_ImportSkipsCaseInsensitive(t *testing.T) {
	c, _ := newController(t)
	ctx := context.Background()

	_, err := c.AddProduct(ctx, ProductForm{"LAPTOP", "1", "1"})
	require.NoError(t, err)
	_, err = c.AddCustomer(ctx, CustomerForm{"J", "A", "JOHN@example.com", ""})
	require.NoError(t, err)

	products, customers, err := c.ImportSampleData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, products)
	assert.Equal(t, 2, customers)
}

func TestController_ApplySettingsSwitchesStore(t *testing.T) {
	c, settings := newController(t)
	ctx := context.Background()
	original := c.Settings()

	_, err := c.AddProduct(ctx, ProductForm{"Laptop", "999.99", "10"})
	require.NoError(t, err)

	other := types.Config{Backend: types.BackendEmbedded, Path: filepath.Join(t.TempDir(), "other.db")}
	require.NoError(t, c.ApplySettings(ctx, other))
	assert.Zero(t, c.Products.Len())
	assert.Equal(t, other, c.Settings())

	saved, err := settings.Load()
	require.NoError(t, err)
	assert.Equal(t, other.Path, saved.Path)

	require.NoError(t, c.ApplySettings(ctx, original))
	assert.Equal(t, 1, c.Products.Len())
}

func TestController_ApplySettingsFallsBack(t *testing.T) {
	c, _ := newController(t)
	ctx := context.Background()

	_, err := c.AddProduct(ctx, ProductForm{"Laptop", "999.99", "10"})
	require.NoError(t, err)

	server := types.Config{
		Backend: types.BackendClientServer, Host: "127.0.0.1", Port: 1, User: "u", Database: "d",
	}
	require.NoError(t, c.ApplySettings(ctx, server))
	assert.Equal(t, types.BackendClientServer, c.Settings().Backend)
	assert.Equal(t, types.BackendEmbedded, c.Backend())
	assert.Equal(t, 1, c.Products.Len(), "fallback uses the default file")
}

func TestController_ApplySettingsRejectsInvalid(t *testing.T) {
	c, _ := newController(t)
	before := c.Settings()

	err := c.ApplySettings(context.Background(), types.Config{Backend: "oracle"})
	require.ErrorIs(t, err, types.ErrConfig)
	assert.Equal(t, before, c.Settings())

	_, err = c.AddProduct(context.Background(), ProductForm{"Still", "1", "1"})
	require.NoError(t, err, "connection untouched")
}

func TestController_ApplySettingsKeepsStateWhenStorageFails(t *testing.T) {
	c, settings := newController(t)
	ctx := context.Background()

	good := types.Config{Backend: types.BackendEmbedded, Path: filepath.Join(t.TempDir(), "good.db")}
	require.NoError(t, c.ApplySettings(ctx, good))
	_, err := c.AddProduct(ctx, ProductForm{"Laptop", "999.99", "10"})
	require.NoError(t, err)

	// A regular file where a directory is needed makes the embedded open fail.
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	broken := types.Config{Backend: types.BackendEmbedded, Path: filepath.Join(blocker, "sub", "wawi.db")}

	err = c.ApplySettings(ctx, broken)
	require.ErrorIs(t, err, types.ErrConnection)
	assert.Equal(t, good, c.Settings())
	assert.Equal(t, types.BackendEmbedded, c.Backend())

	saved, err := settings.Load()
	require.NoError(t, err)
	assert.Equal(t, good.Path, saved.Path, "broken settings not written")

	_, err = c.AddProduct(ctx, ProductForm{"Mouse", "19.99", "50"})
	require.NoError(t, err, "previous connection still open")
	assert.Equal(t, 2, c.Products.Len())
}

func TestIsUserError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&types.ValidationError{Field: "name", Message: "x"}, true},
		{fmt.Errorf("wrapped: %w", types.ErrNotFound), true},
		{types.ErrState, true},
		{types.ErrConnection, false},
		{fmt.Errorf("%w: boom", types.ErrQuery), false},
		{&types.BatchError{Failed: map[int64]error{1: types.ErrNotFound}}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsUserError(tt.err), "%v", tt.err)
	}
}
