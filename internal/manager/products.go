package manager

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/wawi/pkg/types"
)

// Products manages the products table.
type Products = Manager[*types.Product]

// ProductMapping maps Product fields to the products table.
func ProductMapping() Mapping[*types.Product] {
	return Mapping[*types.Product]{
		Table:    types.ProductsTable,
		IDColumn: "product_id",
		New:      func() *types.Product { return &types.Product{} },
		Fields: []Field[*types.Product]{
			StringField("name",
				func(p *types.Product) string { return p.Name },
				func(p *types.Product, v string) { p.Name = v }),
			FloatField("price",
				func(p *types.Product) float64 { return p.Price },
				func(p *types.Product, v float64) { p.Price = v }),
			IntField("quantity",
				func(p *types.Product) int { return p.Quantity },
				func(p *types.Product, v int) { p.Quantity = v }),
		},
	}
}

// NewProducts builds the product manager and loads the table.
func NewProducts(ctx context.Context, conn types.Conn, log zerolog.Logger) (*Products, error) {
	return New(ctx, conn, ProductMapping(), log)
}
