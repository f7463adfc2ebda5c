package render

import "fmt"

// Item is one billable invoice row as the rendering core sees it. Amount
// is the stored line amount; it is what totals sum, so a manually
// overridden amount is respected over Quantity*Rate.
type Item struct {
	Description string
	Quantity    float64
	Rate        float64
	Amount      float64
}

// Totals holds the derived money amounts for one invoice. Values keep
// full float precision; rounding happens only in FormatMoney.
type Totals struct {
	Subtotal  float64
	TaxAmount float64
	Total     float64
}

// ComputeTotals derives totals from line items and a tax rate given in
// percent (0-100). It never fails; an empty item list yields zeros.
func ComputeTotals(items []Item, taxRatePercent float64) Totals {
	var t Totals
	for _, it := range items {
		t.Subtotal += it.Amount
	}
	t.TaxAmount = t.Subtotal * taxRatePercent / 100
	t.Total = t.Subtotal + t.TaxAmount
	return t
}

// FormatMoney renders a monetary value for display: currency code, one
// space, amount rounded to two decimals.
func FormatMoney(currency string, v float64) string {
	return fmt.Sprintf("%s %.2f", currency, v)
}
