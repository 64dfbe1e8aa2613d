package web

import (
	"net/http"

	"grocery-console/internal/backend"
	"grocery-console/internal/domain"
	"grocery-console/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryHandler serves the admin category screens.
type CategoryHandler struct {
	client   *backend.Client
	sessions service.SessionService
	renderer *Renderer
	logger   *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(client *backend.Client, sessions service.SessionService, renderer *Renderer, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		client:   client,
		sessions: sessions,
		renderer: renderer,
		logger:   logger,
	}
}

// RegisterRoutes registers the admin category routes.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.List)
	r.Post("/categories", h.Create)
	r.Post("/categories/{id}", h.Update)
	r.Post("/categories/{id}/delete", h.Delete)
}

type categoryListData struct {
	Categories []domain.Category
	// Editing holds the category loaded into the edit form, nil for create.
	Editing *domain.Category
}

// List renders the category table with the create/edit form alongside.
// `?edit={id}` pre-fills the form from the fetched list.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page := Page{
		Title:    "Categories",
		Active:   "categories",
		Identity: identityFrom(r),
		Flash:    PopFlash(w, r),
	}

	token, err := bearerToken(r, h.sessions)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	categories, err := h.client.ListCategories(r.Context(), token)
	if err != nil {
		h.logger.Error("Category list fetch failed", zap.Error(err))
		page.Flash = &Flash{Kind: "error", Message: "Could not load categories. Please try again."}
		page.Data = categoryListData{}
		h.renderer.Render(w, http.StatusOK, "categories.html", page)
		return
	}

	data := categoryListData{Categories: categories}
	if editID := r.URL.Query().Get("edit"); editID != "" {
		for i := range categories {
			if categories[i].ID == editID {
				data.Editing = &categories[i]
				break
			}
		}
	}

	page.Data = data
	h.renderer.Render(w, http.StatusOK, "categories.html", page)
}

// Create handles the new-category form post.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// Update handles the edit form post.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"))
}

func (h *CategoryHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	token, err := bearerToken(r, h.sessions)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		SetFlash(w, "error", "Please check the form and try again")
		http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
		return
	}

	form := CategoryForm{
		Name:        r.PostFormValue("name"),
		NameKannada: r.PostFormValue("nameKannada"),
		Description: r.PostFormValue("description"),
	}
	if msg := ValidateForm(form); msg != "" {
		SetFlash(w, "error", msg)
		http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
		return
	}

	input := backend.CategoryInput{
		Name:        form.Name,
		NameKannada: form.NameKannada,
		Description: form.Description,
	}

	if id == "" {
		err = h.client.CreateCategory(r.Context(), token, input)
	} else {
		err = h.client.UpdateCategory(r.Context(), token, id, input)
	}
	if err != nil {
		h.logger.Error("Category save failed", zap.Error(err))
		SetFlash(w, "error", backend.UserMessage(err, "Could not save the category. Please try again."))
		http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
		return
	}

	if id == "" {
		SetFlash(w, "success", "Category added")
	} else {
		SetFlash(w, "success", "Category updated")
	}
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// Delete removes a category. The backend rejects deleting one that products
// still reference; that message is surfaced as-is.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	token, err := bearerToken(r, h.sessions)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.client.DeleteCategory(r.Context(), token, id); err != nil {
		h.logger.Warn("Category delete rejected", zap.String("id", id), zap.Error(err))
		SetFlash(w, "error", backend.UserMessage(err, "Could not delete the category."))
	} else {
		SetFlash(w, "success", "Category deleted")
	}
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}
