// Package pricing computes line and order totals from resolved catalog rows.
// The same arithmetic runs on the estimating side (quote) and inside the order
// submission transaction; the server recomputation is the one that counts.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Delivery fee policy. The threshold and fee are part of the public contract
// with the SPA and must not drift.
var (
	DeliveryFeeThreshold = decimal.New(2500, -2) // 25.00
	DeliveryFeeAmount    = decimal.New(250, -2)  // 2.50
)

// Line is one cart line after every reference has been resolved against the
// catalog. For a dish line Base is the plat's base price; for a standalone
// sauce line Base is the sauce's own price and every other field is zero.
// Removed ingredients deliberately have no representation here: removal is a
// preparation instruction, never a discount.
type Line struct {
	Base         decimal.Decimal
	VersionExtra decimal.Decimal
	// SaucePrice is the plat's sauce-slot price, set only when the plat
	// includes a sauce slot and a sauce was chosen for it. Zero means the
	// sauce is included free.
	SaucePrice decimal.Decimal
	Extras     []decimal.Decimal
	Quantity   int32
}

// UnitPrice returns base + version extra + sauce-slot price + extras,
// rounded to 2 places.
func (l Line) UnitPrice() decimal.Decimal {
	unit := l.Base.Add(l.VersionExtra).Add(l.SaucePrice)
	for _, e := range l.Extras {
		unit = unit.Add(e)
	}
	return unit.Round(2)
}

// Total returns UnitPrice multiplied by the line quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt32(l.Quantity)).Round(2)
}

// Subtotal sums all line totals before the delivery fee.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum.Round(2)
}

// DeliveryFee returns the fee for the given pre-fee subtotal. Takeout orders
// never carry a fee; delivery orders under the threshold pay the flat fee.
func DeliveryFee(subtotal decimal.Decimal, delivery bool) decimal.Decimal {
	if !delivery {
		return decimal.Zero
	}
	if subtotal.GreaterThanOrEqual(DeliveryFeeThreshold) {
		return decimal.Zero
	}
	return DeliveryFeeAmount
}

// OrderTotal is the final amount charged: subtotal plus delivery fee.
func OrderTotal(lines []Line, delivery bool) decimal.Decimal {
	sub := Subtotal(lines)
	return sub.Add(DeliveryFee(sub, delivery)).Round(2)
}
