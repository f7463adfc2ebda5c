package render

import (
	"math"
	"testing"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name    string
		items   []Item
		taxRate float64
		want    Totals
	}{
		{
			"single item 20% tax",
			[]Item{{Description: "Website redesign", Quantity: 1, Rate: 2500, Amount: 2500}},
			20,
			Totals{Subtotal: 2500, TaxAmount: 500, Total: 3000},
		},
		{
			"multiple items",
			[]Item{{Amount: 100}, {Amount: 250.5}, {Amount: 49.5}},
			25,
			Totals{Subtotal: 400, TaxAmount: 100, Total: 500},
		},
		{
			"zero tax",
			[]Item{{Amount: 99.99}},
			0,
			Totals{Subtotal: 99.99, TaxAmount: 0, Total: 99.99},
		},
		{
			"empty items",
			nil,
			20,
			Totals{},
		},
		{
			// stored amounts win over quantity*rate
			"overridden amount respected",
			[]Item{{Quantity: 2, Rate: 100, Amount: 150}},
			10,
			Totals{Subtotal: 150, TaxAmount: 15, Total: 165},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.items, tt.taxRate)
			if math.Abs(got.Subtotal-tt.want.Subtotal) > 1e-9 ||
				math.Abs(got.TaxAmount-tt.want.TaxAmount) > 1e-9 ||
				math.Abs(got.Total-tt.want.Total) > 1e-9 {
				t.Errorf("ComputeTotals() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTotalsInvariant(t *testing.T) {
	items := []Item{{Amount: 0.1}, {Amount: 0.2}, {Amount: 1234.567}, {Amount: 0.003}}
	got := ComputeTotals(items, 12.5)

	var sum float64
	for _, it := range items {
		sum += it.Amount
	}
	if math.Abs(got.Subtotal-sum) > 1e-9 {
		t.Errorf("subtotal %v != item sum %v", got.Subtotal, sum)
	}
	if math.Abs(got.Total-(got.Subtotal+got.TaxAmount)) > 1e-9 {
		t.Errorf("total %v != subtotal+tax %v", got.Total, got.Subtotal+got.TaxAmount)
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney("USD", 2500); got != "USD 2500.00" {
		t.Errorf("FormatMoney = %q", got)
	}
	if got := FormatMoney("DKK", 99.999); got != "DKK 100.00" {
		t.Errorf("FormatMoney rounding = %q", got)
	}
}
