package web

import (
	"net/http"

	"grocery-console/internal/backend"
	"grocery-console/internal/domain"
	"grocery-console/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxProductFormMemory = 10 << 20 // 10 MB, images included

// ProductHandler serves the admin product catalogue screens.
type ProductHandler struct {
	client    *backend.Client
	sessions  service.SessionService
	renderer  *Renderer
	filesBase string
	logger    *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(client *backend.Client, sessions service.SessionService, renderer *Renderer, filesBase string, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		client:    client,
		sessions:  sessions,
		renderer:  renderer,
		filesBase: filesBase,
		logger:    logger,
	}
}

// RegisterRoutes registers the admin product routes.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.List)
	r.Get("/products/new", h.NewForm)
	r.Post("/products", h.Create)
	r.Get("/products/{id}/edit", h.EditForm)
	r.Post("/products/{id}", h.Update)
	r.Post("/products/{id}/delete", h.Delete)
}

// productView decorates a product with everything the card grid shows.
type productView struct {
	domain.Product
	Status   domain.StockStatus
	ImageURL string
	Margin   string
}

func (h *ProductHandler) view(p domain.Product) productView {
	view := productView{
		Product:  p,
		Status:   p.StockStatus(),
		ImageURL: p.ImageURL(h.filesBase),
	}
	if margin, ok := p.ProfitMargin(); ok {
		view.Margin = margin.String() + "%"
	}
	return view
}

type productListData struct {
	Products   []productView
	Categories []domain.Category
	Search     string
	Category   string
	LowStock   bool
}

// List renders the catalogue grid. Filters re-issue a parameterized fetch.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page := Page{
		Title:    "Products",
		Active:   "products",
		Identity: identityFrom(r),
		Flash:    PopFlash(w, r),
	}

	token, err := bearerToken(r, h.sessions)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	filter := backend.ProductFilter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		LowStock: r.URL.Query().Get("lowStock") == "true",
	}

	data := productListData{
		Search:   filter.Search,
		Category: filter.Category,
		LowStock: filter.LowStock,
	}

	products, err := h.client.ListProducts(r.Context(), token, filter)
	if err != nil {
		h.logger.Error("Product list fetch failed", zap.Error(err))
		page.Flash = &Flash{Kind: "error", Message: "Could not load products. Please try again."}
		page.Data = data
		h.renderer.Render(w, http.StatusOK, "products.html", page)
		return
	}

	categories, err := h.client.ListCategories(r.Context(), token)
	if err != nil {
		h.logger.Warn("Category list fetch failed", zap.Error(err))
	}

	data.Categories = categories
	for _, p := range products {
		data.Products = append(data.Products, h.view(p))
	}

	page.Data = data
	h.renderer.Render(w, http.StatusOK, "products.html", page)
}

// productFormData feeds both the create and edit forms.
type productFormData struct {
	Form       ProductForm
	Action     string
	Heading    string
	ImageURL   string
	Categories []domain.Category
	Units      []domain.Unit
}

// NewForm renders the empty product form.
func (h *ProductHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r, h.sessions)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	categories, err := h.client.ListCategories(r.Context(), token)
	if err != nil {
		h.logger.Error("Category list fetch failed", zap.Error(err))
		SetFlash(w, "error", "Could not load categories. Please try again.")
		http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
		return
	}

	h.renderer.Render(w, http.StatusOK, "product_form.html", Page{
		Title:    "Add product",
		Active:   "products",
		Identity: identityFrom(r),
		Flash:    PopFlash(w, r),
		Data: productFormData{
			Form:       ProductForm{Unit: domain.UnitPiece.String()},
			Action:     "/admin/products",
			Heading:    "Add product",
			Categories: categories,
			Units:      domain.Units(),
		},
	})
}

// EditForm renders the form pre-filled from a fresh fetch.
func (h *ProductHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	token, err := bearerToken(r, h.sessions)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	product, err := h.client.GetProduct(r.Context(), token, id)
	if err != nil {
		h.logger.Error("Product fetch failed", zap.String("id", id), zap.Error(err))
		SetFlash(w, "error", backend.UserMessage(err, "Could not load the product."))
		http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
		return
	}

	categories, err := h.client.ListCategories(r.Context(), token)
	if err != nil {
		h.logger.Warn("Category list fetch failed", zap.Error(err))
	}

	h.renderer.Render(w, http.StatusOK, "product_form.html", Page{
		Title:    "Edit product",
		Active:   "products",
		Identity: identityFrom(r),
		Flash:    PopFlash(w, r),
		Data: productFormData{
			Form: ProductForm{
				Name:          product.Name,
				NameKannada:   product.NameKannada,
				CategoryID:    product.Category.ID,
				BuyingPrice:   product.BuyingPrice.String(),
				SellingPrice:  product.SellingPrice.String(),
				Stock:         product.Stock.String(),
				MinStockLevel: product.MinStockLevel.String(),
				Unit:          product.Unit.String(),
				Description:   product.Description,
			},
			Action:     "/admin/products/" + product.ID,
			Heading:    "Edit product",
			ImageURL:   product.ImageURL(h.filesBase),
			Categories: categories,
			Units:      domain.Units(),
		},
	})
}

// Create handles the new-product form post.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", "/admin/products/new")
}

// Update handles the edit form post.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.save(w, r, id, "/admin/products/"+id+"/edit")
}

func (h *ProductHandler) save(w http.ResponseWriter, r *http.Request, id, backTo string) {
	token, err := bearerToken(r, h.sessions)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseMultipartForm(maxProductFormMemory); err != nil {
		SetFlash(w, "error", "Please check the form and try again")
		http.Redirect(w, r, backTo, http.StatusSeeOther)
		return
	}

	form := ProductForm{
		Name:          r.PostFormValue("name"),
		NameKannada:   r.PostFormValue("nameKannada"),
		CategoryID:    r.PostFormValue("category"),
		BuyingPrice:   r.PostFormValue("buyingPrice"),
		SellingPrice:  r.PostFormValue("sellingPrice"),
		Stock:         r.PostFormValue("stock"),
		MinStockLevel: r.PostFormValue("minStockLevel"),
		Unit:          r.PostFormValue("unit"),
		Description:   r.PostFormValue("description"),
	}
	if msg := ValidateForm(form); msg != "" {
		SetFlash(w, "error", msg)
		http.Redirect(w, r, backTo, http.StatusSeeOther)
		return
	}

	input, msg := h.parseProductInput(form)
	if msg != "" {
		SetFlash(w, "error", msg)
		http.Redirect(w, r, backTo, http.StatusSeeOther)
		return
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		input.Image = file
		input.ImageFilename = header.Filename
	}

	if id == "" {
		err = h.client.CreateProduct(r.Context(), token, input)
	} else {
		err = h.client.UpdateProduct(r.Context(), token, id, input)
	}
	if err != nil {
		h.logger.Error("Product save failed", zap.Error(err))
		SetFlash(w, "error", backend.UserMessage(err, "Could not save the product. Please try again."))
		http.Redirect(w, r, backTo, http.StatusSeeOther)
		return
	}

	if id == "" {
		SetFlash(w, "success", "Product added")
	} else {
		SetFlash(w, "success", "Product updated")
	}
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

func (h *ProductHandler) parseProductInput(form ProductForm) (backend.ProductInput, string) {
	unit := domain.Unit(form.Unit)
	if !unit.Valid() {
		return backend.ProductInput{}, "Please pick a valid unit"
	}

	buying, err := decimal.NewFromString(form.BuyingPrice)
	if err != nil || buying.IsNegative() {
		return backend.ProductInput{}, "Please enter a valid buying price"
	}
	selling, err := decimal.NewFromString(form.SellingPrice)
	if err != nil || selling.IsNegative() {
		return backend.ProductInput{}, "Please enter a valid selling price"
	}
	stock, err := decimal.NewFromString(form.Stock)
	if err != nil || stock.IsNegative() {
		return backend.ProductInput{}, "Please enter a valid stock amount"
	}
	minStock, err := decimal.NewFromString(form.MinStockLevel)
	if err != nil || minStock.IsNegative() {
		return backend.ProductInput{}, "Please enter a valid minimum stock level"
	}

	return backend.ProductInput{
		Name:          form.Name,
		NameKannada:   form.NameKannada,
		CategoryID:    form.CategoryID,
		BuyingPrice:   buying,
		SellingPrice:  selling,
		Stock:         stock,
		MinStockLevel: minStock,
		Unit:          unit,
		Description:   form.Description,
	}, ""
}

// Delete removes a product and re-fetches the list.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	token, err := bearerToken(r, h.sessions)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.client.DeleteProduct(r.Context(), token, id); err != nil {
		h.logger.Error("Product delete failed", zap.String("id", id), zap.Error(err))
		SetFlash(w, "error", backend.UserMessage(err, "Could not delete the product."))
	} else {
		SetFlash(w, "success", "Product deleted")
	}
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}
