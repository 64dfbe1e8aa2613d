package web

import (
	"net/http"
	"time"

	"grocery-console/internal/backend"
	"grocery-console/internal/domain"
	"grocery-console/internal/service"

	"github.com/araddon/dateparse"
	"github.com/go-chi/chi/v5"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

// SalesHandler serves the admin sales ledger and its CSV export.
type SalesHandler struct {
	client   *backend.Client
	sessions service.SessionService
	renderer *Renderer
	logger   *zap.Logger
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(client *backend.Client, sessions service.SessionService, renderer *Renderer, logger *zap.Logger) *SalesHandler {
	return &SalesHandler{
		client:   client,
		sessions: sessions,
		renderer: renderer,
		logger:   logger,
	}
}

// RegisterRoutes registers the admin sales routes.
func (h *SalesHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sales", h.List)
	r.Get("/sales/export", h.ExportCSV)
}

// filterFromQuery reads the ledger filters, parsing dates leniently and
// normalizing them to YYYY-MM-DD. Hand-typed dates here are usually
// day-first (28/08/2026), so ambiguous ones retry with day and month
// swapped. Unparseable dates are dropped.
func (h *SalesHandler) filterFromQuery(r *http.Request) backend.SaleFilter {
	filter := backend.SaleFilter{ProductID: r.URL.Query().Get("product")}
	if raw := r.URL.Query().Get("startDate"); raw != "" {
		if t, err := dateparse.ParseAny(raw, dateparse.RetryAmbiguousDateWithSwap(true)); err == nil {
			filter.StartDate = t.Format("2006-01-02")
		}
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		if t, err := dateparse.ParseAny(raw, dateparse.RetryAmbiguousDateWithSwap(true)); err == nil {
			filter.EndDate = t.Format("2006-01-02")
		}
	}
	return filter
}

type salesListData struct {
	Sales     []domain.Sale
	Summary   domain.SalesSummary
	Products  []domain.Product
	StartDate string
	EndDate   string
	ProductID string
}

// List renders the ledger with summary cards and the filter bar.
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	page := Page{
		Title:    "Sales",
		Active:   "sales",
		Identity: identityFrom(r),
		Flash:    PopFlash(w, r),
	}

	token, err := bearerToken(r, h.sessions)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	filter := h.filterFromQuery(r)
	data := salesListData{
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
		ProductID: filter.ProductID,
	}

	sales, err := h.client.ListSales(r.Context(), token, filter)
	if err != nil {
		h.logger.Error("Sales fetch failed", zap.Error(err))
		page.Flash = &Flash{Kind: "error", Message: "Could not load sales. Please try again."}
		page.Data = data
		h.renderer.Render(w, http.StatusOK, "sales.html", page)
		return
	}

	products, err := h.client.ListProducts(r.Context(), token, backend.ProductFilter{})
	if err != nil {
		h.logger.Warn("Product list fetch failed", zap.Error(err))
	}

	data.Sales = sales
	data.Summary = domain.Summarize(sales)
	data.Products = products

	page.Data = data
	h.renderer.Render(w, http.StatusOK, "sales.html", page)
}

// csvSaleRow is one exported ledger line.
type csvSaleRow struct {
	Date     string `csv:"Date"`
	Product  string `csv:"Product"`
	Quantity string `csv:"Quantity"`
	Price    string `csv:"Price"`
	Total    string `csv:"Total"`
	Profit   string `csv:"Profit"`
	SoldBy   string `csv:"Sold By"`
}

// ExportCSV downloads the filtered ledger. An empty ledger yields the
// header row only.
func (h *SalesHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r, h.sessions)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	sales, err := h.client.ListSales(r.Context(), token, h.filterFromQuery(r))
	if err != nil {
		h.logger.Error("Sales export fetch failed", zap.Error(err))
		SetFlash(w, "error", "Could not export sales. Please try again.")
		http.Redirect(w, r, "/admin/sales", http.StatusSeeOther)
		return
	}

	rows := make([]csvSaleRow, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, csvSaleRow{
			Date:     s.SaleDate.Format("02 Jan 2006, 3:04 PM"),
			Product:  s.Product.Name,
			Quantity: s.Quantity.String() + " " + s.Product.Unit.String(),
			Price:    domain.FormatMoney(s.SellingPrice),
			Total:    domain.FormatMoney(s.TotalAmount),
			Profit:   domain.FormatMoney(s.Profit),
			SoldBy:   s.SoldBy.Name,
		})
	}

	filename := "sales-" + time.Now().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := gocsv.Marshal(&rows, w); err != nil {
		h.logger.Error("CSV write failed", zap.Error(err))
	}
}
