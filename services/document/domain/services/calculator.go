package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ghuser/procuredesk/services/document/domain/models"
)

// RateBreakdown is the taxable base and tax for one distinct tax rate.
type RateBreakdown struct {
	Rate          decimal.Decimal
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
}

// Rounding policy: arithmetic is exact decimal; each item's tax is floored to
// the integer currency unit before summation. Every path (forms, persistence,
// bulk, reassessment, breakdowns) goes through itemTax, so stored and
// displayed figures agree.

// itemTax returns floor(amount × rate) for one item.
func itemTax(item models.LineItem) decimal.Decimal {
	return item.Amount().Mul(item.TaxRate).Floor()
}

// Subtotal sums Quantity × UnitPrice over items. Zero for an empty list.
func Subtotal(items []models.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Amount())
	}
	return sum
}

// TaxAmount sums the floored per-item tax. Zero for an empty list or all-zero rates.
func TaxAmount(items []models.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(itemTax(item))
	}
	return sum
}

// Total is Subtotal + TaxAmount.
func Total(items []models.LineItem) decimal.Decimal {
	return Subtotal(items).Add(TaxAmount(items))
}

// ByRate groups items by distinct tax rate, ordered by ascending rate.
// Rates that compare equal (0.1 and 0.10) share a group.
func ByRate(items []models.LineItem) []RateBreakdown {
	groups := make([]RateBreakdown, 0)
	for _, item := range items {
		idx := -1
		for i := range groups {
			if groups[i].Rate.Equal(item.TaxRate) {
				idx = i
				break
			}
		}
		if idx < 0 {
			groups = append(groups, RateBreakdown{
				Rate:          item.TaxRate,
				TaxableAmount: decimal.Zero,
				TaxAmount:     decimal.Zero,
			})
			idx = len(groups) - 1
		}
		groups[idx].TaxableAmount = groups[idx].TaxableAmount.Add(item.Amount())
		groups[idx].TaxAmount = groups[idx].TaxAmount.Add(itemTax(item))
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Rate.LessThan(groups[j].Rate)
	})
	return groups
}

// Recalculate stores the derived amounts of doc's current items.
// It reports whether either stored amount changed.
func Recalculate(doc *models.Document) bool {
	total, tax := Subtotal(doc.Items), TaxAmount(doc.Items)
	changed := !doc.TotalAmount.Equal(total) || !doc.TaxAmount.Equal(tax)
	doc.TotalAmount = total
	doc.TaxAmount = tax
	return changed
}
