package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

var hundred = decimal.NewFromInt(100)

// RecomputeTotal sets TotalPrice to the sum of quantity × price over the items.
func RecomputeTotal(cart *models.Cart) {
	total := decimal.Zero
	for _, it := range cart.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	cart.TotalPrice = total
}

// ApplyDiscount keeps TotalPriceAfterDiscount in step with Discount: set to
// total − total×discount/100, rounded to cents, or cleared when there is no discount.
func ApplyDiscount(cart *models.Cart) {
	if !cart.Discount.Valid || cart.Discount.Decimal.IsZero() {
		cart.TotalPriceAfterDiscount = decimal.NullDecimal{}
		return
	}
	off := cart.TotalPrice.Mul(cart.Discount.Decimal).Div(hundred)
	cart.TotalPriceAfterDiscount = decimal.NewNullDecimal(cart.TotalPrice.Sub(off).Round(2))
}

// Reprice runs both steps; every cart mutation ends with it.
func Reprice(cart *models.Cart) {
	RecomputeTotal(cart)
	ApplyDiscount(cart)
}

// Payable is what the customer is charged: the discounted total when present.
func Payable(cart *models.Cart) decimal.Decimal {
	if cart.TotalPriceAfterDiscount.Valid {
		return cart.TotalPriceAfterDiscount.Decimal
	}
	return cart.TotalPrice
}
