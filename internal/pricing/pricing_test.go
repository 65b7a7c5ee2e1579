package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func assertEqual(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestUnitPrice_DishWithEverything(t *testing.T) {
	// Large fries with a paid sauce slot and two extras.
	line := Line{
		Base:         dec("4.50"),
		VersionExtra: dec("1.50"),
		SaucePrice:   dec("1.50"),
		Quantity:     2,
	}
	assertEqual(t, line.UnitPrice(), "7.50")
	assertEqual(t, line.Total(), "15.00")
}

func TestUnitPrice_WithExtras(t *testing.T) {
	line := Line{
		Base:     dec("8.00"),
		Extras:   []decimal.Decimal{dec("1.00"), dec("0.50")},
		Quantity: 1,
	}
	assertEqual(t, line.UnitPrice(), "9.50")
	assertEqual(t, line.Total(), "9.50")
}

func TestUnitPrice_SauceOnlyLine(t *testing.T) {
	line := Line{Base: dec("1.20"), Quantity: 3}
	assertEqual(t, line.UnitPrice(), "1.20")
	assertEqual(t, line.Total(), "3.60")
}

func TestSubtotal_SumsLineTotals(t *testing.T) {
	lines := []Line{
		{Base: dec("4.50"), VersionExtra: dec("1.50"), SaucePrice: dec("1.50"), Quantity: 2},
		{Base: dec("1.20"), Quantity: 1},
	}
	assertEqual(t, Subtotal(lines), "16.20")
}

func TestDeliveryFee_TakeoutNeverCharged(t *testing.T) {
	assertEqual(t, DeliveryFee(dec("5.00"), false), "0")
	assertEqual(t, DeliveryFee(dec("100.00"), false), "0")
}

func TestDeliveryFee_UnderThreshold(t *testing.T) {
	assertEqual(t, DeliveryFee(dec("24.99"), true), "2.50")
}

func TestDeliveryFee_AtThreshold(t *testing.T) {
	assertEqual(t, DeliveryFee(dec("25.00"), true), "0")
}

func TestDeliveryFee_AboveThreshold(t *testing.T) {
	assertEqual(t, DeliveryFee(dec("25.01"), true), "0")
}

func TestOrderTotal_DeliveryUnderThreshold(t *testing.T) {
	lines := []Line{{Base: dec("10.00"), Quantity: 2}}
	assertEqual(t, OrderTotal(lines, true), "22.50")
	assertEqual(t, OrderTotal(lines, false), "20.00")
}

func TestOrderTotal_FeeDecidedOnPreFeeSubtotal(t *testing.T) {
	// 24.99 + 2.50 crosses 25.00, but the threshold test uses the pre-fee
	// subtotal, so the fee still applies.
	lines := []Line{{Base: dec("24.99"), Quantity: 1}}
	assertEqual(t, OrderTotal(lines, true), "27.49")
}

func TestOrderTotal_AddingItemsNeverLowersTotal(t *testing.T) {
	// Crossing the free-delivery threshold drops the fee but the total can
	// only move up: the added item costs at least as much as the fee saved.
	base := []Line{{Base: dec("23.00"), Quantity: 1}}
	bigger := []Line{{Base: dec("23.00"), Quantity: 1}, {Base: dec("2.50"), Quantity: 1}}

	before := OrderTotal(base, true)
	after := OrderTotal(bigger, true)
	if after.LessThan(before) {
		t.Fatalf("total decreased after adding an item: %s -> %s", before, after)
	}
}
