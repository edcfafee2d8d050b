package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCartTotal(t *testing.T) {
	lines := []CartLine{
		{Service: Service{Price: decimal.RequireFromString("5.50")}, Quantity: 3},
		{Service: Service{Price: decimal.NewFromInt(8)}, Quantity: 1},
	}
	if got := lines[0].Subtotal(); !got.Equal(decimal.RequireFromString("16.5")) {
		t.Fatalf("Subtotal = %s", got)
	}
	if got := CartTotal(lines); !got.Equal(decimal.RequireFromString("24.5")) {
		t.Fatalf("CartTotal = %s", got)
	}
	if got := CartTotal(nil); !got.IsZero() {
		t.Fatalf("CartTotal(nil) = %s", got)
	}
}
