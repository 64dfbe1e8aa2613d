package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"grocery-console/internal/backend"
	"grocery-console/internal/domain"
	"grocery-console/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubSessions satisfies the parts of the session service handlers touch.
type stubSessions struct {
	token    string
	identity domain.Identity
}

func (s *stubSessions) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	return nil, nil
}
func (s *stubSessions) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.Session, error) {
	return nil, nil
}
func (s *stubSessions) Logout(ctx context.Context, cookieValue string) error { return nil }
func (s *stubSessions) Resolve(ctx context.Context, cookieValue string) (*domain.Identity, error) {
	identity := s.identity
	return &identity, nil
}
func (s *stubSessions) Rehydrate(ctx context.Context, cookieValue string) (*domain.Identity, error) {
	identity := s.identity
	return &identity, nil
}
func (s *stubSessions) IssueCookieValue(session *domain.Session) (string, error) { return "", nil }
func (s *stubSessions) Token(ctx context.Context, cookieValue string) (string, error) {
	return s.token, nil
}

// authenticated stamps the request context the way SessionAuth does.
func authenticated(r *http.Request, identity domain.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.IdentityKey, &identity)
	ctx = context.WithValue(ctx, middleware.SessionCookieKey, "cookie")
	return r.WithContext(ctx)
}

func flashFromRecorder(t *testing.T, w *httptest.ResponseRecorder) *Flash {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name != flashCookieName || cookie.Value == "" {
			continue
		}
		decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
		require.NoError(t, err)
		kind, message, _ := strings.Cut(string(decoded), "\n")
		return &Flash{Kind: kind, Message: message}
	}
	return nil
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	renderer, err := NewRenderer(zap.NewNop())
	require.NoError(t, err)
	return renderer
}

func TestRecordSaleRejectsOverstockWithoutBackendCall(t *testing.T) {
	var backendCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&backendCalls, 1)
	}))
	defer srv.Close()

	client := backend.NewClient(srv.URL, srv.URL, zap.NewNop())
	sessions := &stubSessions{token: "tok", identity: domain.Identity{Name: "Ravi", Role: domain.RoleShopkeeper}}
	handler := NewPOSHandler(client, sessions, newTestRenderer(t), srv.URL, zap.NewNop())

	form := url.Values{
		"product":  {"p1"},
		"name":     {"Rice"},
		"unit":     {"kg"},
		"stock":    {"5"},
		"price":    {"62"},
		"quantity": {"5.5"},
	}
	req := httptest.NewRequest(http.MethodPost, "/shopkeeper/sales", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = authenticated(req, sessions.identity)
	w := httptest.NewRecorder()

	handler.RecordSale(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/shopkeeper/dashboard", w.Header().Get("Location"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&backendCalls), "over-stock entries must never reach the backend")

	flash := flashFromRecorder(t, w)
	require.NotNil(t, flash)
	assert.Equal(t, "error", flash.Kind)
	assert.Equal(t, "Only 5 kg available in stock", flash.Message)
}

func TestRecordSaleSubmitsValidQuantity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sales", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `0.5`, string(body["quantity"]))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"_id":         "s1",
				"product":     map[string]string{"_id": "p1", "name": "Rice", "unit": "kg"},
				"quantity":    0.5,
				"totalAmount": 31,
			},
		})
	}))
	defer srv.Close()

	client := backend.NewClient(srv.URL, srv.URL, zap.NewNop())
	sessions := &stubSessions{token: "tok", identity: domain.Identity{Name: "Ravi", Role: domain.RoleShopkeeper}}
	handler := NewPOSHandler(client, sessions, newTestRenderer(t), srv.URL, zap.NewNop())

	form := url.Values{
		"product":  {"p1"},
		"name":     {"Rice"},
		"unit":     {"kg"},
		"stock":    {"5"},
		"price":    {"62"},
		"quantity": {"0.5"},
	}
	req := httptest.NewRequest(http.MethodPost, "/shopkeeper/sales", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = authenticated(req, sessions.identity)
	w := httptest.NewRecorder()

	handler.RecordSale(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	flash := flashFromRecorder(t, w)
	require.NotNil(t, flash)
	assert.Equal(t, "success", flash.Kind)
	assert.Equal(t, "Sold 0.5 kg Rice for ₹31.00", flash.Message)
}

func TestDashboardFiltersOverFetchedList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products":
			// No filter params: the grid narrows the fetched list itself.
			assert.Empty(t, r.URL.RawQuery)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data": []map[string]interface{}{
					{"_id": "p1", "name": "Rice", "unit": "kg", "stock": 5, "sellingPrice": 62,
						"category": map[string]string{"_id": "c1", "name": "Grains"}},
					{"_id": "p2", "name": "Sugar", "unit": "kg", "stock": 0, "sellingPrice": 45,
						"category": map[string]string{"_id": "c1", "name": "Grains"}},
					{"_id": "p3", "name": "Soap", "unit": "piece", "stock": 12, "sellingPrice": 30,
						"category": map[string]string{"_id": "c2", "name": "Household"}},
				},
			})
		case "/categories":
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": []interface{}{}})
		}
	}))
	defer srv.Close()

	client := backend.NewClient(srv.URL, srv.URL, zap.NewNop())
	sessions := &stubSessions{token: "tok", identity: domain.Identity{Name: "Ravi", Role: domain.RoleShopkeeper}}
	handler := NewPOSHandler(client, sessions, newTestRenderer(t), srv.URL, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/shopkeeper/dashboard?search=ri&category=c1", nil)
	req = authenticated(req, sessions.identity)
	w := httptest.NewRecorder()

	handler.Dashboard(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Rice")
	// Sugar is out of stock, Soap fails both filters.
	assert.NotContains(t, body, "Sugar")
	assert.NotContains(t, body, "Soap")
}

func TestDashboardRendersQuantityPolicy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data": []map[string]interface{}{
					{"_id": "p1", "name": "Milk", "unit": "liter", "stock": 20, "sellingPrice": 28,
						"category": map[string]string{"_id": "c1", "name": "Dairy"}},
				},
			})
		case "/categories":
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": []interface{}{}})
		}
	}))
	defer srv.Close()

	client := backend.NewClient(srv.URL, srv.URL, zap.NewNop())
	sessions := &stubSessions{token: "tok", identity: domain.Identity{Name: "Ravi", Role: domain.RoleShopkeeper}}
	handler := NewPOSHandler(client, sessions, newTestRenderer(t), srv.URL, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/shopkeeper/dashboard", nil)
	req = authenticated(req, sessions.identity)
	w := httptest.NewRecorder()

	handler.Dashboard(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	// Liter policy: min 0.1, step 0.1, quick picks 0.5 and 0.25.
	assert.Contains(t, body, `min="0.1"`)
	assert.Contains(t, body, `step="0.1"`)
	assert.Contains(t, body, `value="0.25"`)
	// Each chip shows the total that quantity rings up at ₹28/liter.
	assert.Contains(t, body, "₹14.00")
	assert.Contains(t, body, "₹7.00")
}
