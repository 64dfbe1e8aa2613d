package web

import (
	"encoding/base64"
	"net/http"
	"strings"
)

const flashCookieName = "grocery_flash"

// Flash is a one-shot notification carried across a redirect.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

// SetFlash queues a notification for the next rendered page.
func SetFlash(w http.ResponseWriter, kind, message string) {
	value := base64.URLEncoding.EncodeToString([]byte(kind + "\n" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears the pending notification, if any.
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	kind, message, found := strings.Cut(string(decoded), "\n")
	if !found {
		return nil
	}
	return &Flash{Kind: kind, Message: message}
}
