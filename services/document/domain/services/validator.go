package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/procuredesk/services/document/domain"
	"github.com/ghuser/procuredesk/services/document/domain/models"
)

const (
	maxItemNameLength = 255
	maxQuantity       = math.MaxInt32

	// Decimal places stored for prices and tax rates.
	priceScale = 2
	rateScale  = 4
)

// Exclusive upper bounds matching the NUMERIC(15,2) money and NUMERIC(5,4)
// rate columns.
var (
	maxAmount  = decimal.New(1, 13)
	maxTaxRate = decimal.New(1, 1)
)

// Draft is the payload of a create or full update. Nil pointers mean "not supplied".
type Draft struct {
	VendorID  uuid.UUID
	IssueDate *time.Time
	DueDate   *time.Time
	Status    *models.Status
	Subject   string
	Notes     string
	Items     []models.LineItem
}

// ValidateDraft checks a create payload and returns a *domain.ValidationError
// listing every failure found. A supplied status must belong to the kind; it is
// not checked against the transition table since there is no prior status.
func ValidateDraft(kind models.Kind, d Draft) error {
	var v domain.ValidationError
	collectDraft(&v, kind, d)
	return v.OrNil()
}

// ValidateUpdate checks a full-update payload against the persisted document.
// Shape failures are reported first as a *domain.ValidationError; a status that
// differs from the current one must then be a permitted transition.
func ValidateUpdate(current *models.Document, d Draft) error {
	var v domain.ValidationError
	collectDraft(&v, current.Kind, d)
	if err := v.OrNil(); err != nil {
		return err
	}
	if d.Status != nil && *d.Status != current.Status {
		return ValidateStatusChange(current.Kind, current.Status, *d.Status)
	}
	return nil
}

func collectDraft(v *domain.ValidationError, kind models.Kind, d Draft) {
	if !kind.IsValid() {
		v.Add("kind", fmt.Sprintf("unknown document kind %q", kind))
		return
	}

	if d.VendorID == uuid.Nil {
		v.Add("vendor_id", "vendor is required")
	}

	if len(d.Items) == 0 {
		v.Add("items", "at least one item required")
	}
	itemsValid := true
	for i, item := range d.Items {
		itemsValid = collectItem(v, i, item) && itemsValid
	}
	if itemsValid && len(d.Items) > 0 {
		if Subtotal(d.Items).GreaterThanOrEqual(maxAmount) || TaxAmount(d.Items).GreaterThanOrEqual(maxAmount) {
			v.Add("items", fmt.Sprintf("document total and tax must be below %s", maxAmount))
		}
	}

	if d.IssueDate != nil && d.DueDate != nil &&
		models.DateOnly(*d.DueDate).Before(models.DateOnly(*d.IssueDate)) {
		v.Add(kind.DueDateField(), fmt.Sprintf("%s must be on or after %s", kind.DueDateField(), kind.IssueDateField()))
	}

	if d.Status != nil && !kind.HasStatus(*d.Status) {
		v.Add("status", fmt.Sprintf("%q is not a valid %s status", *d.Status, kind))
	}
}

// collectItem reports whether the item passed every check.
func collectItem(v *domain.ValidationError, i int, item models.LineItem) bool {
	before := len(v.Fields)
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

	switch name := strings.TrimSpace(item.ItemName); {
	case name == "":
		v.Add(field("item_name"), "item name is required")
	case len(item.ItemName) > maxItemNameLength:
		v.Add(field("item_name"), fmt.Sprintf("item name must not exceed %d characters", maxItemNameLength))
	}

	switch {
	case item.Quantity < 1:
		v.Add(field("quantity"), "quantity must be at least 1")
	case item.Quantity > maxQuantity:
		v.Add(field("quantity"), fmt.Sprintf("quantity must not exceed %d", maxQuantity))
	}

	switch p := item.UnitPrice; {
	case p.IsNegative():
		v.Add(field("unit_price"), "unit price must not be negative")
	case !hasScale(p, priceScale):
		v.Add(field("unit_price"), fmt.Sprintf("unit price must have at most %d decimal places", priceScale))
	case p.GreaterThanOrEqual(maxAmount):
		v.Add(field("unit_price"), fmt.Sprintf("unit price must be below %s", maxAmount))
	}

	switch r := item.TaxRate; {
	case r.IsNegative():
		v.Add(field("tax_rate"), "tax rate must not be negative")
	case !hasScale(r, rateScale):
		v.Add(field("tax_rate"), fmt.Sprintf("tax rate must have at most %d decimal places", rateScale))
	case r.GreaterThanOrEqual(maxTaxRate):
		v.Add(field("tax_rate"), fmt.Sprintf("tax rate must be below %s", maxTaxRate))
	}

	return len(v.Fields) == before
}

// hasScale reports whether d has no significant digits past places.
func hasScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}
