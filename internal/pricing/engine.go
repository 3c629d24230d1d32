package pricing

import "github.com/shopspring/decimal"

// Money represents a monetary value stored in minor units.
type Money = int64

// Line describes a priced quantity used for price suggestions.
type Line struct {
	Qty       int
	UnitPrice Money
}

var hundred = decimal.NewFromInt(100)

// Sum returns the total of qty × unit price. Lines with a non-positive quantity are skipped.
func Sum(lines []Line) Money {
	var total Money
	for _, l := range lines {
		if l.Qty <= 0 {
			continue
		}
		total += Money(l.Qty) * l.UnitPrice
	}
	return total
}

// TaxAmount applies a percentage rate to a taxable amount and rounds half up to the nearest minor unit.
func TaxAmount(taxable Money, percent decimal.Decimal) Money {
	if taxable == 0 || percent.IsZero() {
		return 0
	}
	return decimal.NewFromInt(taxable).Mul(percent).Div(hundred).Round(0).IntPart()
}
