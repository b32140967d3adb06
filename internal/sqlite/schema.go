// Package sqlite implements the embedded single-file storage backend.
package sqlite

// Schema DDL for all tables, in creation order.
const (
	createProducts = `CREATE TABLE IF NOT EXISTS products (
    product_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    price REAL NOT NULL CHECK (price >= 0),
    quantity INTEGER NOT NULL CHECK (quantity >= 0)
);`

	createCustomers = `CREATE TABLE IF NOT EXISTS customers (
    customer_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    address TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT
);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createProducts,
	createCustomers,
}
