package backend

import (
	"context"
	"net/http"

	"grocery-console/internal/domain"
)

// CategoryInput carries the fields for category create/update.
type CategoryInput struct {
	Name        string `json:"name"`
	NameKannada string `json:"nameKannada"`
	Description string `json:"description"`
}

// ListCategories fetches all categories.
func (c *Client) ListCategories(ctx context.Context, token string) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.get(ctx, token, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory adds a category.
func (c *Client) CreateCategory(ctx context.Context, token string, in CategoryInput) error {
	return c.sendJSON(ctx, http.MethodPost, token, "/categories", in, nil)
}

// UpdateCategory updates a category.
func (c *Client) UpdateCategory(ctx context.Context, token, id string, in CategoryInput) error {
	return c.sendJSON(ctx, http.MethodPut, token, "/categories/"+id, in, nil)
}

// DeleteCategory removes a category. Deleting one still referenced by
// products is rejected by the backend with a validation error.
func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	return c.delete(ctx, token, "/categories/"+id)
}
