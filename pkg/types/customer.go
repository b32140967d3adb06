package types

import (
	"fmt"
	"regexp"
	"strings"
)

// emailPattern accepts name@domain.tld with word characters, dots and dashes.
var emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

// Customer is a contact record.
type Customer struct {
	ID      int64  `json:"customer_id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
}

var _ Entity = (*Customer)(nil)

// NewCustomer builds a validated Customer. Phone is optional.
func NewCustomer(name, address, email, phone string) (*Customer, error) {
	c := &Customer{
		Name:    strings.TrimSpace(name),
		Address: strings.TrimSpace(address),
		Email:   strings.TrimSpace(email),
		Phone:   strings.TrimSpace(phone),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// EntityID returns the storage-assigned id, zero if not yet persisted.
func (c *Customer) EntityID() int64 { return c.ID }

// SetEntityID records the storage-assigned id.
func (c *Customer) SetEntityID(id int64) { c.ID = id }

// Validate checks the customer invariants.
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "customer name cannot be empty")
	}
	if strings.TrimSpace(c.Address) == "" {
		return invalid("address", "customer address cannot be empty")
	}
	if c.Email == "" {
		return invalid("email", "customer email cannot be empty")
	}
	if !emailPattern.MatchString(c.Email) {
		return invalid("email", "invalid email format, use name@example.com")
	}
	return nil
}

func (c *Customer) String() string {
	return fmt.Sprintf("Customer(id=%d, name=%s, address=%s, email=%s, phone=%s)", c.ID, c.Name, c.Address, c.Email, c.Phone)
}
