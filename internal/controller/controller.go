// Package controller mediates between a front end and the product and
// customer managers. It owns the storage connection and rebuilds it when the
// settings change.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/wawi/internal/config"
	"github.com/mesh-intelligence/wawi/internal/manager"
	"github.com/mesh-intelligence/wawi/internal/store"
	"github.com/mesh-intelligence/wawi/pkg/types"
)

// Controller holds one connection shared by both managers.
type Controller struct {
	settings *config.Store
	factory  *store.Factory
	cfg      types.Config
	conn     types.Conn

	Products  *manager.Products
	Customers *manager.Customers

	log zerolog.Logger
}

// New loads the settings (falling back to defaults), opens storage through
// factory and loads both tables.
func New(ctx context.Context, settings *config.Store, factory *store.Factory, log zerolog.Logger) (*Controller, error) {
	c := &Controller{
		settings: settings,
		factory:  factory,
		log:      log.With().Str("component", "controller").Logger(),
	}

	cfg, err := settings.Load()
	if err != nil {
		c.log.Debug().Err(err).Msg("using default settings")
	}
	c.cfg = cfg

	conn, err := factory.Create(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.conn = conn

	if c.Products, err = manager.NewProducts(ctx, conn, log); err != nil {
		conn.Close()
		return nil, err
	}
	if c.Customers, err = manager.NewCustomers(ctx, conn, log); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Backend names the backend actually in use, which differs from the
// settings after a fallback.
func (c *Controller) Backend() string { return c.conn.Kind() }

// Settings returns the active settings.
func (c *Controller) Settings() types.Config { return c.cfg }

// ApplySettings opens storage for cfg and, once that succeeds, saves cfg,
// replaces the connection and reloads both managers. If the new storage
// cannot be opened the saved settings and the current connection are kept.
func (c *Controller) ApplySettings(ctx context.Context, cfg types.Config) error {
	conn, err := c.factory.Create(ctx, cfg)
	if err != nil {
		return err
	}
	if err := c.settings.Save(cfg); err != nil {
		conn.Close()
		return err
	}

	if err := c.conn.Close(); err != nil {
		c.log.Warn().Err(err).Msg("closing previous connection")
	}
	c.cfg = cfg
	c.conn = conn
	c.Products.SetConn(conn)
	c.Customers.SetConn(conn)

	if err := c.Products.LoadAll(ctx); err != nil {
		return err
	}
	if err := c.Customers.LoadAll(ctx); err != nil {
		return err
	}
	c.log.Info().Str("backend", conn.Kind()).Msg("settings applied")
	return nil
}

// TestSettings reports whether cfg yields a working connection.
func (c *Controller) TestSettings(ctx context.Context, cfg types.Config) bool {
	return c.settings.Test(ctx, cfg)
}

// Close releases the connection.
func (c *Controller) Close() error {
	return c.conn.Close()
}

// ProductForm carries product input as typed by a user.
type ProductForm struct {
	Name     string
	Price    string
	Quantity string
}

// ProductPatch lists the product fields to change; nil keeps the current value.
type ProductPatch struct {
	Name     *string
	Price    *string
	Quantity *string
}

// AddProduct parses f and stores a new product.
func (c *Controller) AddProduct(ctx context.Context, f ProductForm) (*types.Product, error) {
	p, err := types.ParseProduct(f.Name, f.Price, f.Quantity)
	if err != nil {
		return nil, err
	}
	if err := c.Products.Add(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct applies patch to the cached product with id and stores it.
func (c *Controller) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*types.Product, error) {
	p, ok := c.Products.Get(id)
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, types.ErrNotFound)
	}
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		price, err := types.ParsePrice(*patch.Price)
		if err != nil {
			return nil, err
		}
		p.Price = price
	}
	if patch.Quantity != nil {
		q, err := types.ParseQuantity(*patch.Quantity)
		if err != nil {
			return nil, err
		}
		p.Quantity = q
	}
	if err := c.Products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveProducts removes every id and reports the ones that failed in a
// *types.BatchError.
func (c *Controller) RemoveProducts(ctx context.Context, ids []int64, silent bool) ([]int64, error) {
	return c.Products.RemoveMany(ctx, ids, removeOpts(silent)...)
}

// CustomerForm carries customer input as typed by a user.
type CustomerForm struct {
	Name    string
	Address string
	Email   string
	Phone   string
}

// CustomerPatch lists the customer fields to change; nil keeps the current
// value and an empty phone clears it.
type CustomerPatch struct {
	Name    *string
	Address *string
	Email   *string
	Phone   *string
}

// AddCustomer stores a new customer built from f.
func (c *Controller) AddCustomer(ctx context.Context, f CustomerForm) (*types.Customer, error) {
	cu, err := types.NewCustomer(f.Name, f.Address, f.Email, f.Phone)
	if err != nil {
		return nil, err
	}
	if err := c.Customers.Add(ctx, cu); err != nil {
		return nil, err
	}
	return cu, nil
}

// UpdateCustomer applies patch to the cached customer with id and stores it.
func (c *Controller) UpdateCustomer(ctx context.Context, id int64, patch CustomerPatch) (*types.Customer, error) {
	cu, ok := c.Customers.Get(id)
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", id, types.ErrNotFound)
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&cu.Name, patch.Name)
	set(&cu.Address, patch.Address)
	set(&cu.Email, patch.Email)
	set(&cu.Phone, patch.Phone)

	if err := c.Customers.Update(ctx, cu); err != nil {
		return nil, err
	}
	return cu, nil
}

// RemoveCustomers removes every id and reports the ones that failed in a
// *types.BatchError.
func (c *Controller) RemoveCustomers(ctx context.Context, ids []int64, silent bool) ([]int64, error) {
	return c.Customers.RemoveMany(ctx, ids, removeOpts(silent)...)
}

func removeOpts(silent bool) []manager.RemoveOption {
	if silent {
		return []manager.RemoveOption{manager.Silent()}
	}
	return nil
}

// IsUserError reports whether err stems from bad input rather than a storage
// or environment failure.
func IsUserError(err error) bool {
	return errors.Is(err, types.ErrValidation) ||
		errors.Is(err, types.ErrNotFound) ||
		errors.Is(err, types.ErrState)
}
