package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"grocery-console/internal/domain"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is the envelope every template renders with.
type Page struct {
	Title    string
	Active   string
	Identity *domain.Identity
	Flash    *Flash
	Data     any
}

// Renderer holds the parsed template set. Each page template is parsed
// together with the shared layout at startup.
type Renderer struct {
	templates map[string]*template.Template
	logger    *zap.Logger
}

var templateFuncs = template.FuncMap{
	"money": domain.FormatMoney,
	"date": func(t time.Time) string {
		return t.Format("02 Jan 2006")
	},
	"datetime": func(t time.Time) string {
		return t.Format("02 Jan 2006, 3:04 PM")
	},
}

var pageTemplates = []string{
	"login.html",
	"admin_dashboard.html",
	"products.html",
	"product_form.html",
	"categories.html",
	"sales.html",
	"shopkeeper_dashboard.html",
	"error.html",
}

// NewRenderer parses the embedded template set.
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pageTemplates))
	for _, page := range pageTemplates {
		t, err := template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = t
	}
	return &Renderer{templates: templates, logger: logger}, nil
}

// Render writes a page. Template failures after headers are unrecoverable,
// so the page executes directly against the response.
func (r *Renderer) Render(w http.ResponseWriter, statusCode int, page string, data Page) {
	t, ok := r.templates[page]
	if !ok {
		r.logger.Error("Unknown template requested", zap.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		r.logger.Error("Template execution failed",
			zap.String("page", page),
			zap.Error(err),
		)
	}
}

// RenderError shows the standalone error page.
func (r *Renderer) RenderError(w http.ResponseWriter, statusCode int, message string, identity *domain.Identity) {
	r.Render(w, statusCode, "error.html", Page{
		Title:    http.StatusText(statusCode),
		Identity: identity,
		Data:     message,
	})
}
