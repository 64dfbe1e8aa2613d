package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"grocery-console/internal/domain"

	"github.com/shopspring/decimal"
)

// SaleFilter parameterizes a ledger fetch. Dates are normalized to
// YYYY-MM-DD before they reach the query string.
type SaleFilter struct {
	StartDate string
	EndDate   string
	ProductID string
}

// ListSales fetches the sales ledger matching the filter.
func (c *Client) ListSales(ctx context.Context, token string, filter SaleFilter) ([]domain.Sale, error) {
	query := url.Values{}
	if filter.StartDate != "" {
		query.Set("startDate", filter.StartDate)
	}
	if filter.EndDate != "" {
		query.Set("endDate", filter.EndDate)
	}
	if filter.ProductID != "" {
		query.Set("product", filter.ProductID)
	}

	var sales []domain.Sale
	if err := c.get(ctx, token, "/sales", query, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

type recordSaleRequest struct {
	Product  string      `json:"product"`
	Quantity json.Number `json:"quantity"`
}

// RecordSale submits a quantity against a product. The backend computes the
// totals and profit and decrements stock; the returned sale reflects its
// authoritative values.
func (c *Client) RecordSale(ctx context.Context, token, productID string, quantity decimal.Decimal) (*domain.Sale, error) {
	req := recordSaleRequest{
		Product:  productID,
		Quantity: json.Number(quantity.String()),
	}

	var sale domain.Sale
	if err := c.sendJSON(ctx, http.MethodPost, token, "/sales", req, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}
