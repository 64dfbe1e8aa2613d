package domain

import (
	"github.com/shopspring/decimal"
)

// Unit is the measurement unit of a product. It governs the granularity of
// sale-quantity entry (see PolicyFor).
type Unit string

const (
	UnitPiece  Unit = "piece"
	UnitKg     Unit = "kg"
	UnitGram   Unit = "gram"
	UnitLiter  Unit = "liter"
	UnitMl     Unit = "ml"
	UnitPacket Unit = "packet"
	UnitBundle Unit = "bundle"
)

// Units lists every selectable unit, in the order forms present them.
func Units() []Unit {
	return []Unit{UnitPiece, UnitKg, UnitGram, UnitLiter, UnitMl, UnitPacket, UnitBundle}
}

func (u Unit) Valid() bool {
	for _, known := range Units() {
		if u == known {
			return true
		}
	}
	return false
}

func (u Unit) String() string {
	return string(u)
}

// CategoryRef is the embedded category reference carried on a product.
type CategoryRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Category is a full category record as returned by the backend.
type Category struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	NameKannada string `json:"nameKannada"`
	Description string `json:"description"`
}

// Product is a transient, re-fetchable copy of a backend product record.
// The backend owns and mutates the entity; the console never caches beyond
// a single request.
type Product struct {
	ID            string          `json:"_id"`
	Name          string          `json:"name"`
	NameKannada   string          `json:"nameKannada"`
	Category      CategoryRef     `json:"category"`
	BuyingPrice   decimal.Decimal `json:"buyingPrice"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	Stock         decimal.Decimal `json:"stock"`
	MinStockLevel decimal.Decimal `json:"minStockLevel"`
	Unit          Unit            `json:"unit"`
	Description   string          `json:"description"`
	Image         string          `json:"image"`
}

// StockStatus classifies stock against the configured minimum level.
type StockStatus string

const (
	StockStatusIn  StockStatus = "in-stock"
	StockStatusLow StockStatus = "low-stock"
	StockStatusOut StockStatus = "out-of-stock"
)

// StockStatus returns out-of-stock iff stock = 0, low-stock iff
// 0 < stock <= minStockLevel, else in-stock.
func (p *Product) StockStatus() StockStatus {
	if p.Stock.IsZero() {
		return StockStatusOut
	}
	if p.Stock.LessThanOrEqual(p.MinStockLevel) {
		return StockStatusLow
	}
	return StockStatusIn
}

// InStock reports whether any quantity remains to sell.
func (p *Product) InStock() bool {
	return p.Stock.IsPositive()
}

// Profit is the per-unit margin. Selling below cost yields a negative
// value; buying and selling price are entered independently.
func (p *Product) Profit() decimal.Decimal {
	return p.SellingPrice.Sub(p.BuyingPrice)
}

// ProfitMargin returns the margin as a percentage of the buying price.
// The second return is false when the buying price is zero.
func (p *Product) ProfitMargin() (decimal.Decimal, bool) {
	if p.BuyingPrice.IsZero() {
		return decimal.Zero, false
	}
	margin := p.Profit().Div(p.BuyingPrice).Mul(decimal.NewFromInt(100))
	return margin.Round(1), true
}

// ImageURL resolves the stored relative image path against the configured
// file base URL. Empty when the product has no image.
func (p *Product) ImageURL(filesBase string) string {
	if p.Image == "" {
		return ""
	}
	return filesBase + p.Image
}
