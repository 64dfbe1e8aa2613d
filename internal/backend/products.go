package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"grocery-console/internal/domain"

	"github.com/shopspring/decimal"
)

// ProductFilter parameterizes a product list fetch. Zero values mean "no
// filter"; filtering happens server-side by re-issuing the fetch.
type ProductFilter struct {
	Search   string
	Category string
	LowStock bool
}

// ProductInput carries the multipart fields for product create/update. The
// image is optional; when Image is nil no file part is written.
type ProductInput struct {
	Name          string
	NameKannada   string
	CategoryID    string
	BuyingPrice   decimal.Decimal
	SellingPrice  decimal.Decimal
	Stock         decimal.Decimal
	MinStockLevel decimal.Decimal
	Unit          domain.Unit
	Description   string
	Image         io.Reader
	ImageFilename string
}

// ListProducts fetches products matching the filter.
func (c *Client) ListProducts(ctx context.Context, token string, filter ProductFilter) ([]domain.Product, error) {
	query := url.Values{}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.LowStock {
		query.Set("lowStock", "true")
	}

	var products []domain.Product
	if err := c.get(ctx, token, "/products", query, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, token, id string) (*domain.Product, error) {
	var product domain.Product
	if err := c.get(ctx, token, "/products/"+id, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct submits a new product as multipart form data.
func (c *Client) CreateProduct(ctx context.Context, token string, in ProductInput) error {
	return c.sendProduct(ctx, http.MethodPost, token, "/products", in)
}

// UpdateProduct updates an existing product as multipart form data.
func (c *Client) UpdateProduct(ctx context.Context, token, id string, in ProductInput) error {
	return c.sendProduct(ctx, http.MethodPut, token, "/products/"+id, in)
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.delete(ctx, token, "/products/"+id)
}

func (c *Client) sendProduct(ctx context.Context, method, token, path string, in ProductInput) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"name":          in.Name,
		"nameKannada":   in.NameKannada,
		"category":      in.CategoryID,
		"buyingPrice":   in.BuyingPrice.String(),
		"sellingPrice":  in.SellingPrice.String(),
		"stock":         in.Stock.String(),
		"minStockLevel": in.MinStockLevel.String(),
		"unit":          in.Unit.String(),
		"description":   in.Description,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	if in.Image != nil {
		part, err := writer.CreateFormFile("image", in.ImageFilename)
		if err != nil {
			return fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := io.Copy(part, in.Image); err != nil {
			return fmt.Errorf("failed to copy image data: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, token, nil)
}
