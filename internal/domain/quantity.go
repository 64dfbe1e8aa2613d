package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// QuantityPolicy constrains sale-quantity entry for a unit: the smallest
// sellable amount, the input step, and the quick-pick shortcuts offered on
// the point-of-sale screen.
type QuantityPolicy struct {
	Min        decimal.Decimal
	Step       decimal.Decimal
	QuickPicks []decimal.Decimal
}

func qty(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// PolicyFor maps a unit to its quantity-entry policy. Units without a
// fractional policy (piece, packet, bundle, anything unknown) sell in
// whole steps of one with no quick picks.
func PolicyFor(u Unit) QuantityPolicy {
	switch u {
	case UnitKg:
		return QuantityPolicy{
			Min:        qty("0.1"),
			Step:       qty("0.1"),
			QuickPicks: []decimal.Decimal{qty("0.5"), qty("0.2"), qty("0.1")},
		}
	case UnitGram:
		return QuantityPolicy{
			Min:        qty("1"),
			Step:       qty("50"),
			QuickPicks: []decimal.Decimal{qty("100"), qty("200"), qty("500")},
		}
	case UnitLiter:
		return QuantityPolicy{
			Min:        qty("0.1"),
			Step:       qty("0.1"),
			QuickPicks: []decimal.Decimal{qty("0.5"), qty("0.25")},
		}
	case UnitMl:
		return QuantityPolicy{
			Min:        qty("50"),
			Step:       qty("50"),
			QuickPicks: []decimal.Decimal{qty("250"), qty("500")},
		}
	default:
		return QuantityPolicy{Min: qty("1"), Step: qty("1")}
	}
}

// QuantityError carries the user-facing message shown when a sale entry is
// rejected before submission.
type QuantityError struct {
	Message string
}

func (e *QuantityError) Error() string {
	return e.Message
}

// CheckQuantity is the client-side convenience check run before a sale is
// submitted: the quantity must be positive and must not exceed the stock as
// last fetched. The backend stays authoritative and may still reject for a
// different current stock value.
func CheckQuantity(p *Product, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return &QuantityError{Message: "Please enter valid quantity"}
	}
	if quantity.GreaterThan(p.Stock) {
		return &QuantityError{
			Message: fmt.Sprintf("Only %s %s available in stock", p.Stock.String(), p.Unit),
		}
	}
	return nil
}

// SaleTotal recomputes the displayed total for a pending entry.
func SaleTotal(p *Product, quantity decimal.Decimal) decimal.Decimal {
	return quantity.Mul(p.SellingPrice)
}
