package manager

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/wawi/pkg/types"
)

// Customers manages the customers table.
type Customers = Manager[*types.Customer]

// CustomerMapping maps Customer fields to the customers table.
func CustomerMapping() Mapping[*types.Customer] {
	return Mapping[*types.Customer]{
		Table:    types.CustomersTable,
		IDColumn: "customer_id",
		New:      func() *types.Customer { return &types.Customer{} },
		Fields: []Field[*types.Customer]{
			StringField("name",
				func(c *types.Customer) string { return c.Name },
				func(c *types.Customer, v string) { c.Name = v }),
			StringField("address",
				func(c *types.Customer) string { return c.Address },
				func(c *types.Customer, v string) { c.Address = v }),
			StringField("email",
				func(c *types.Customer) string { return c.Email },
				func(c *types.Customer, v string) { c.Email = v }),
			StringField("phone",
				func(c *types.Customer) string { return c.Phone },
				func(c *types.Customer, v string) { c.Phone = v }),
		},
	}
}

// NewCustomers builds the customer manager and loads the table.
func NewCustomers(ctx context.Context, conn types.Conn, log zerolog.Logger) (*Customers, error) {
	return New(ctx, conn, CustomerMapping(), log)
}
