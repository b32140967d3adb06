package types

// Table names.
const (
	ProductsTable  = "products"
	CustomersTable = "customers"
)

// StandardTableNames lists all table names in creation order.
var StandardTableNames = []string{
	ProductsTable,
	CustomersTable,
}
