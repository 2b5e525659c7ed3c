package orders

import (
	"github.com/shopspring/decimal"
)

var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShippingRate      = decimal.NewFromInt(10)
	taxRate               = decimal.NewFromFloat(0.15)
	centsPerUnit          = decimal.NewFromInt(100)
)

// Quote is the price breakdown for a cart snapshot. All amounts carry
// 2-decimal semantics; comparisons go through decimal, never float.
type Quote struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// QuoteLine is one cart line as seen by the calculator.
type QuoteLine struct {
	UnitPriceCents int
	Qty            int
}

// ComputeQuote derives the full price breakdown from cart lines. Shipping is
// free above the threshold, otherwise a flat rate; tax is 15% of the items
// subtotal rounded to 2 decimals.
func ComputeQuote(lines []QuoteLine) Quote {
	itemsPrice := decimal.Zero
	for _, line := range lines {
		unit := decimal.NewFromInt(int64(line.UnitPriceCents)).Div(centsPerUnit)
		itemsPrice = itemsPrice.Add(unit.Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	itemsPrice = itemsPrice.Round(2)

	shippingPrice := flatShippingRate
	if itemsPrice.GreaterThan(freeShippingThreshold) {
		shippingPrice = decimal.Zero
	}

	taxPrice := itemsPrice.Mul(taxRate).Round(2)
	totalPrice := itemsPrice.Add(shippingPrice).Add(taxPrice).Round(2)

	return Quote{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    totalPrice,
	}
}

// MatchesTotal reports whether the submitted total agrees with the computed
// one within a cent of rounding tolerance.
func (q Quote) MatchesTotal(submitted decimal.Decimal) bool {
	diff := q.TotalPrice.Sub(submitted).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(0.01))
}

// ItemsCents returns the items subtotal in minor units.
func (q Quote) ItemsCents() int {
	return toCents(q.ItemsPrice)
}

// ShippingCents returns the shipping amount in minor units.
func (q Quote) ShippingCents() int {
	return toCents(q.ShippingPrice)
}

// TaxCents returns the tax amount in minor units.
func (q Quote) TaxCents() int {
	return toCents(q.TaxPrice)
}

// TotalCents returns the contract total in minor units, rounded to the
// nearest cent.
func (q Quote) TotalCents() int {
	return toCents(q.TotalPrice)
}

func toCents(amount decimal.Decimal) int {
	return int(amount.Mul(centsPerUnit).Round(0).IntPart())
}
