package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Cents is an amount of money in the smallest currency unit.
// Charges and refunds are computed in cents so that unit prices multiply exactly.
type Cents int64

// NewUnitPrice validates a per-label price.
func NewUnitPrice(amount int64) (Cents, error) {
	if amount <= 0 {
		return 0, errs.NewValueIsOutOfRangeError("unit price", amount, 1, "unbounded")
	}
	return Cents(amount), nil
}

// Times returns the price of n units.
func (c Cents) Times(n int) Cents {
	return c * Cents(n)
}

func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
