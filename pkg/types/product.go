package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Product is a stock item.
type Product struct {
	ID       int64   `json:"product_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

var _ Entity = (*Product)(nil)

// NewProduct builds a validated Product.
func NewProduct(name string, price float64, quantity int) (*Product, error) {
	p := &Product{Name: strings.TrimSpace(name), Price: price, Quantity: quantity}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseProduct builds a Product from form input. Price accepts a comma as
// decimal separator.
func ParseProduct(name, price, quantity string) (*Product, error) {
	pr, err := ParsePrice(price)
	if err != nil {
		return nil, err
	}
	q, err := ParseQuantity(quantity)
	if err != nil {
		return nil, err
	}
	return NewProduct(name, pr, q)
}

// ParsePrice parses a non-negative price such as "9.99" or "9,99".
func ParsePrice(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, invalid("price", "price must be a valid number")
	}
	v, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid("price", "price must be a valid number")
	}
	if v < 0 {
		return 0, invalid("price", "price cannot be negative")
	}
	return v, nil
}

// ParseQuantity parses a non-negative whole quantity.
func ParseQuantity(s string) (int, error) {
	// strconv rather than cast: cast accepts base prefixes like "0x10".
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, invalid("quantity", "quantity must be an integer")
	}
	if v < 0 {
		return 0, invalid("quantity", "quantity cannot be negative")
	}
	return v, nil
}

// EntityID returns the storage-assigned id, zero if not yet persisted.
func (p *Product) EntityID() int64 { return p.ID }

// SetEntityID records the storage-assigned id.
func (p *Product) SetEntityID(id int64) { p.ID = id }

// Validate checks the product invariants.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "product name cannot be empty")
	}
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return invalid("price", "price must be a valid number")
	}
	if p.Price < 0 {
		return invalid("price", "price cannot be negative")
	}
	if p.Quantity < 0 {
		return invalid("quantity", "quantity cannot be negative")
	}
	return nil
}

func (p *Product) String() string {
	return fmt.Sprintf("Product(id=%d, name=%s, price=%.2f, quantity=%d)", p.ID, p.Name, p.Price, p.Quantity)
}
