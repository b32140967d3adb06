package controller

import (
	"context"
	"strings"

	"github.com/mesh-intelligence/wawi/pkg/types"
)

var sampleProducts = []types.Product{
	{Name: "Laptop", Price: 999.99, Quantity: 10},
	{Name: "Mouse", Price: 19.99, Quantity: 50},
	{Name: "Keyboard", Price: 49.99, Quantity: 30},
	{Name: "Monitor", Price: 299.99, Quantity: 15},
}

var sampleCustomers = []types.Customer{
	{Name: "John Doe", Address: "123 Main St", Email: "john@example.com", Phone: "555-1234"},
	{Name: "Jane Smith", Address: "456 Oak Ave", Email: "jane@example.com", Phone: "555-5678"},
	{Name: "Bob Johnson", Address: "789 Pine Rd", Email: "bob@example.com", Phone: "555-9012"},
}

// ImportSampleData adds the demo products and customers. Products whose name
// and customers whose email already exist are skipped, so repeated imports
// add nothing. It returns how many of each were added.
func (c *Controller) ImportSampleData(ctx context.Context) (products, customers int, err error) {
	names := make(map[string]bool)
	for _, p := range c.Products.Items() {
		names[strings.ToLower(p.Name)] = true
	}
	for _, sample := range sampleProducts {
		if names[strings.ToLower(sample.Name)] {
			continue
		}
		p := sample
		if err := c.Products.Add(ctx, &p); err != nil {
			return products, customers, err
		}
		products++
	}

	emails := make(map[string]bool)
	for _, cu := range c.Customers.Items() {
		emails[strings.ToLower(cu.Email)] = true
	}
	for _, sample := range sampleCustomers {
		if emails[strings.ToLower(sample.Email)] {
			continue
		}
		cu := sample
		if err := c.Customers.Add(ctx, &cu); err != nil {
			return products, customers, err
		}
		customers++
	}

	c.log.Info().Int("products", products).Int("customers", customers).Msg("sample data imported")
	return products, customers, nil
}
