package web

import (
	"fmt"
	"net/http"
	"strings"

	"grocery-console/internal/backend"
	"grocery-console/internal/domain"
	"grocery-console/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// POSHandler serves the shopkeeper dashboard: an in-stock product grid with
// a sale form per product.
type POSHandler struct {
	client    *backend.Client
	sessions  service.SessionService
	renderer  *Renderer
	filesBase string
	logger    *zap.Logger
}

// NewPOSHandler creates a new POSHandler
func NewPOSHandler(client *backend.Client, sessions service.SessionService, renderer *Renderer, filesBase string, logger *zap.Logger) *POSHandler {
	return &POSHandler{
		client:    client,
		sessions:  sessions,
		renderer:  renderer,
		filesBase: filesBase,
		logger:    logger,
	}
}

// RegisterRoutes registers the shopkeeper routes.
func (h *POSHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Post("/sales", h.RecordSale)
}

// posProduct decorates a product with its quantity policy for the sale form.
type posProduct struct {
	domain.Product
	Policy   domain.QuantityPolicy
	Picks    []quickPick
	ImageURL string
}

// quickPick is one shortcut chip with the total that quantity would ring up.
type quickPick struct {
	Quantity decimal.Decimal
	Total    decimal.Decimal
}

type posData struct {
	Products   []posProduct
	Categories []domain.Category
	Search     string
	Category   string
}

// Dashboard renders the in-stock grid. Search and category narrow the
// already-fetched list rather than re-issuing a filtered fetch; the full
// in-stock set is small enough to carry.
func (h *POSHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	page := Page{
		Title:    "Point of sale",
		Active:   "pos",
		Identity: identityFrom(r),
		Flash:    PopFlash(w, r),
	}

	token, err := bearerToken(r, h.sessions)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")
	data := posData{Search: search, Category: category}

	products, err := h.client.ListProducts(r.Context(), token, backend.ProductFilter{})
	if err != nil {
		h.logger.Error("Product fetch failed", zap.Error(err))
		page.Flash = &Flash{Kind: "error", Message: "Could not load products. Please try again."}
		page.Data = data
		h.renderer.Render(w, http.StatusOK, "shopkeeper_dashboard.html", page)
		return
	}

	categories, err := h.client.ListCategories(r.Context(), token)
	if err != nil {
		h.logger.Warn("Category list fetch failed", zap.Error(err))
	}
	data.Categories = categories

	for _, p := range products {
		if !p.InStock() {
			continue
		}
		if !matchesSearch(p, search) {
			continue
		}
		if category != "" && p.Category.ID != category {
			continue
		}
		policy := domain.PolicyFor(p.Unit)
		picks := make([]quickPick, 0, len(policy.QuickPicks))
		for _, q := range policy.QuickPicks {
			picks = append(picks, quickPick{Quantity: q, Total: domain.SaleTotal(&p, q)})
		}
		data.Products = append(data.Products, posProduct{
			Product:  p,
			Policy:   policy,
			Picks:    picks,
			ImageURL: p.ImageURL(h.filesBase),
		})
	}

	page.Data = data
	h.renderer.Render(w, http.StatusOK, "shopkeeper_dashboard.html", page)
}

// matchesSearch matches the entered text against both product names,
// case-insensitively.
func matchesSearch(p domain.Product, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.NameKannada), needle)
}

// RecordSale checks the entered quantity against the stock and price the
// grid displayed (carried in hidden fields) and only then submits. A
// quantity beyond the displayed stock is rejected without touching the
// backend.
func (h *POSHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r, h.sessions)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		SetFlash(w, "error", "Please check the sale entry and try again")
		http.Redirect(w, r, "/shopkeeper/dashboard", http.StatusSeeOther)
		return
	}

	productID := r.PostFormValue("product")
	name := r.PostFormValue("name")
	unit := domain.Unit(r.PostFormValue("unit"))

	// A quick-pick chip overrides the typed quantity.
	rawQuantity := r.PostFormValue("quantity")
	if pick := r.PostFormValue("pick"); pick != "" {
		rawQuantity = pick
	}
	quantity, err := decimal.NewFromString(rawQuantity)
	if err != nil {
		SetFlash(w, "error", "Please enter valid quantity")
		http.Redirect(w, r, "/shopkeeper/dashboard", http.StatusSeeOther)
		return
	}

	// Stock and price as displayed when the grid rendered.
	stock, err := decimal.NewFromString(r.PostFormValue("stock"))
	if err != nil {
		SetFlash(w, "error", "Please check the sale entry and try again")
		http.Redirect(w, r, "/shopkeeper/dashboard", http.StatusSeeOther)
		return
	}
	price, err := decimal.NewFromString(r.PostFormValue("price"))
	if err != nil {
		SetFlash(w, "error", "Please check the sale entry and try again")
		http.Redirect(w, r, "/shopkeeper/dashboard", http.StatusSeeOther)
		return
	}

	displayed := domain.Product{
		ID:           productID,
		Name:         name,
		Unit:         unit,
		Stock:        stock,
		SellingPrice: price,
	}
	if err := domain.CheckQuantity(&displayed, quantity); err != nil {
		SetFlash(w, "error", err.Error())
		http.Redirect(w, r, "/shopkeeper/dashboard", http.StatusSeeOther)
		return
	}

	sale, err := h.client.RecordSale(r.Context(), token, productID, quantity)
	if err != nil {
		h.logger.Error("Sale submission failed", zap.String("product", productID), zap.Error(err))
		SetFlash(w, "error", backend.UserMessage(err, "Could not record the sale. Please try again."))
		http.Redirect(w, r, "/shopkeeper/dashboard", http.StatusSeeOther)
		return
	}

	SetFlash(w, "success", fmt.Sprintf("Sold %s %s %s for %s",
		sale.Quantity.String(), sale.Product.Unit, sale.Product.Name,
		domain.FormatMoney(sale.TotalAmount)))
	http.Redirect(w, r, "/shopkeeper/dashboard", http.StatusSeeOther)
}
