package models

import "github.com/shopspring/decimal"

// LineItem is one priced row of a Document. Amount is always derived from
// Quantity and UnitPrice and cannot be set independently.
type LineItem struct {
	ItemName    string
	Quantity    int
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // fractional, e.g. 0.10 for 10%
	Description *string
}

// Amount returns the pre-tax amount: Quantity × UnitPrice.
func (i LineItem) Amount() decimal.Decimal {
	return decimal.NewFromInt(int64(i.Quantity)).Mul(i.UnitPrice)
}
