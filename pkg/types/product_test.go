package types

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tests := []struct {
		name      string
		pname     string
		price     float64
		quantity  int
		wantField string
	}{
		{name: "valid product", pname: "Laptop", price: 999.99, quantity: 10},
		{name: "zero price and quantity", pname: "Sample", price: 0, quantity: 0},
		{name: "empty name", pname: "", price: 1, quantity: 1, wantField: "name"},
		{name: "blank name", pname: "   ", price: 1, quantity: 1, wantField: "name"},
		{name: "negative price", pname: "Mouse", price: -0.01, quantity: 1, wantField: "price"},
		{name: "NaN price", pname: "Mouse", price: math.NaN(), quantity: 1, wantField: "price"},
		{name: "negative quantity", pname: "Mouse", price: 1, quantity: -1, wantField: "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct(tt.pname, tt.price, tt.quantity)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, int64(0), p.ID)
				return
			}
			require.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Nil(t, p)
		})
	}
}

func TestParseProduct(t *testing.T) {
	t.Run("comma decimal separator", func(t *testing.T) {
		p, err := ParseProduct("Keyboard", "49,99", "30")
		require.NoError(t, err)
		assert.InDelta(t, 49.99, p.Price, 1e-9)
		assert.Equal(t, 30, p.Quantity)
	})

	t.Run("trims name", func(t *testing.T) {
		p, err := ParseProduct("  Monitor ", "299.99", " 15 ")
		require.NoError(t, err)
		assert.Equal(t, "Monitor", p.Name)
	})

	fieldOf := func(err error) string {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return verr.Field
		}
		return ""
	}

	tests := []struct {
		name, price, quantity, field string
	}{
		{"price not a number", "abc", "1", "price"},
		{"price empty", "", "1", "price"},
		{"price infinite", "Inf", "1", "price"},
		{"quantity fractional", "1", "1.5", "quantity"},
		{"quantity not a number", "1", "many", "quantity"},
		{"quantity negative", "1", "-3", "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProduct("Item", tt.price, tt.quantity)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.field, fieldOf(err))
		})
	}
}

func TestProductEntityID(t *testing.T) {
	p := &Product{Name: "Laptop"}
	assert.Zero(t, p.EntityID())
	p.SetEntityID(7)
	assert.Equal(t, int64(7), p.EntityID())
	assert.Contains(t, p.String(), "id=7")
}
