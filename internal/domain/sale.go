package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleProduct is the product snapshot embedded in a sale record.
type SaleProduct struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	NameKannada string `json:"nameKannada"`
	Unit        Unit   `json:"unit"`
}

// SoldBy references the account that recorded the sale.
type SoldBy struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Sale is a completed transaction. Totals, profit and the stock decrement
// are computed server-side; the console only displays them.
type Sale struct {
	ID           string          `json:"_id"`
	Product      SaleProduct     `json:"product"`
	Quantity     decimal.Decimal `json:"quantity"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Profit       decimal.Decimal `json:"profit"`
	SaleDate     time.Time       `json:"saleDate"`
	SoldBy       SoldBy          `json:"soldBy"`
}

// SalesSummary aggregates a fetched ledger for the summary cards.
type SalesSummary struct {
	TotalRevenue decimal.Decimal
	TotalProfit  decimal.Decimal
	TotalSales   int
}

// Summarize totals a ledger. An empty ledger yields zeros.
func Summarize(sales []Sale) SalesSummary {
	summary := SalesSummary{
		TotalRevenue: decimal.Zero,
		TotalProfit:  decimal.Zero,
		TotalSales:   len(sales),
	}
	for _, s := range sales {
		summary.TotalRevenue = summary.TotalRevenue.Add(s.TotalAmount)
		summary.TotalProfit = summary.TotalProfit.Add(s.Profit)
	}
	return summary
}
