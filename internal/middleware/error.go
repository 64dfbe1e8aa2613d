package middleware

import (
	"fmt"
	"html"
	"net/http"

	"go.uber.org/zap"
)

const errorPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>%d %s</title></head>
<body>
<h1>%d %s</h1>
<p>%s</p>
<p><a href="/">Back to the console</a></p>
</body>
</html>`

// respondWithErrorPage writes a minimal standalone error page. The full
// template set is not available at this layer.
func respondWithErrorPage(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	status := http.StatusText(statusCode)
	fmt.Fprintf(w, errorPage, statusCode, status, statusCode, status, html.EscapeString(message))
}

// ErrorHandlingMiddleware catches panics and converts them to 500 pages
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					respondWithErrorPage(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
