package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	lines := []Line{{Qty: 2, UnitPrice: 1000}, {Qty: 1, UnitPrice: 500}}
	require.Equal(t, Money(2500), Sum(lines))
	require.Equal(t, Money(0), Sum(nil))
	require.Equal(t, Money(500), Sum([]Line{{Qty: 0, UnitPrice: 999}, {Qty: 1, UnitPrice: 500}}))
}

func TestTaxAmount(t *testing.T) {
	cases := []struct {
		name    string
		taxable Money
		rate    string
		want    Money
	}{
		{name: "fractional rate", taxable: 10000, rate: "8.25", want: 825},
		{name: "state", taxable: 20000, rate: "6", want: 1200},
		{name: "local", taxable: 20000, rate: "2", want: 400},
		{name: "half rounds up", taxable: 50, rate: "1", want: 1},
		{name: "below half rounds down", taxable: 49, rate: "1", want: 0},
		{name: "zero rate", taxable: 12345, rate: "0", want: 0},
		{name: "four places", taxable: 99999, rate: "7.1234", want: 7123},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, TaxAmount(tc.taxable, decimal.RequireFromString(tc.rate)))
		})
	}
}
