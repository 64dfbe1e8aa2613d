package backend

import (
	"context"
	"net/url"
	"strconv"

	"grocery-console/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Stats is the aggregate counter block on the admin dashboard.
type Stats struct {
	Revenue            decimal.Decimal `json:"revenue"`
	Profit             decimal.Decimal `json:"profit"`
	TotalSales         int             `json:"totalSales"`
	TotalProducts      int             `json:"totalProducts"`
	LowStockProducts   int             `json:"lowStockProducts"`
	OutOfStockProducts int             `json:"outOfStockProducts"`
}

// FastMover is a top-selling product aggregate.
type FastMover struct {
	ID      string `json:"_id"`
	Product struct {
		Name        string `json:"name"`
		NameKannada string `json:"nameKannada"`
	} `json:"product"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

// TrendPoint is one day on the sales trend chart.
type TrendPoint struct {
	Date    string          `json:"_id"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

// CategorySales is revenue/profit aggregated per category.
type CategorySales struct {
	CategoryName string          `json:"categoryName"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalProfit  decimal.Decimal `json:"totalProfit"`
}

// Dashboard bundles the five admin dashboard resources.
type Dashboard struct {
	Stats         Stats
	FastMoving    []FastMover
	LowStock      []domain.Product
	SalesTrend    []TrendPoint
	CategorySales []CategorySales
}

// DashboardStats fetches the aggregate counters.
func (c *Client) DashboardStats(ctx context.Context, token string) (*Stats, error) {
	var stats Stats
	if err := c.get(ctx, token, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// FastMoving fetches the top-selling products, most sold first.
func (c *Client) FastMoving(ctx context.Context, token string, limit int) ([]FastMover, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	var movers []FastMover
	if err := c.get(ctx, token, "/dashboard/fast-moving", query, &movers); err != nil {
		return nil, err
	}
	return movers, nil
}

// LowStock fetches products at or below their minimum stock level.
func (c *Client) LowStock(ctx context.Context, token string) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, token, "/dashboard/low-stock", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SalesTrend fetches daily revenue/profit points for the trailing window.
func (c *Client) SalesTrend(ctx context.Context, token string, days int) ([]TrendPoint, error) {
	query := url.Values{"days": {strconv.Itoa(days)}}
	var trend []TrendPoint
	if err := c.get(ctx, token, "/dashboard/sales-trend", query, &trend); err != nil {
		return nil, err
	}
	return trend, nil
}

// CategorySales fetches per-category revenue/profit aggregates.
func (c *Client) CategorySales(ctx context.Context, token string) ([]CategorySales, error) {
	var sales []CategorySales
	if err := c.get(ctx, token, "/dashboard/category-sales", nil, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// FetchDashboard issues the five dashboard fetches concurrently. Any single
// failure fails the whole fetch: the screen renders all charts or none.
func (c *Client) FetchDashboard(ctx context.Context, token string, days, limit int) (*Dashboard, error) {
	var dashboard Dashboard

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := c.DashboardStats(ctx, token)
		if err != nil {
			return err
		}
		dashboard.Stats = *stats
		return nil
	})
	g.Go(func() error {
		movers, err := c.FastMoving(ctx, token, limit)
		if err != nil {
			return err
		}
		dashboard.FastMoving = movers
		return nil
	})
	g.Go(func() error {
		products, err := c.LowStock(ctx, token)
		if err != nil {
			return err
		}
		dashboard.LowStock = products
		return nil
	})
	g.Go(func() error {
		trend, err := c.SalesTrend(ctx, token, days)
		if err != nil {
			return err
		}
		dashboard.SalesTrend = trend
		return nil
	})
	g.Go(func() error {
		sales, err := c.CategorySales(ctx, token)
		if err != nil {
			return err
		}
		dashboard.CategorySales = sales
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dashboard, nil
}
