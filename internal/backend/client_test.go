package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"grocery-console/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func envelopeBody(t *testing.T, data interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"success": true,
		"message": "",
		"data":    data,
	})
	require.NoError(t, err)
	return raw
}

func TestClientInjectsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write(envelopeBody(t, []domain.Product{}))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, zap.NewNop())
	_, err := client.ListProducts(context.Background(), "secret-token", ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestClientDecodesEnvelopeData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "rice", r.URL.Query().Get("search"))
		assert.Equal(t, "true", r.URL.Query().Get("lowStock"))
		w.Write(envelopeBody(t, []map[string]interface{}{{
			"_id":           "p1",
			"name":          "Rice",
			"nameKannada":   "ಅಕ್ಕಿ",
			"category":      map[string]string{"_id": "c1", "name": "Grains"},
			"buyingPrice":   40,
			"sellingPrice":  62.5,
			"stock":         5,
			"minStockLevel": 10,
			"unit":          "kg",
		}}))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, zap.NewNop())
	products, err := client.ListProducts(context.Background(), "t", ProductFilter{Search: "rice", LowStock: true})
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Rice", p.Name)
	assert.Equal(t, "Grains", p.Category.Name)
	assert.Equal(t, domain.UnitKg, p.Unit)
	assert.True(t, p.SellingPrice.Equal(decimal.RequireFromString("62.5")))
	assert.Equal(t, domain.StockStatusLow, p.StockStatus())
}

func TestClientErrorTaxonomy(t *testing.T) {
	tests := []struct {
		status  int
		message string
		check   func(error) bool
		name    string
	}{
		{http.StatusUnauthorized, "Not authorized", IsAuthentication, "authentication"},
		{http.StatusForbidden, "Admin only", IsAuthorization, "authorization"},
		{http.StatusNotFound, "Product not found", IsNotFound, "not found"},
		{http.StatusBadRequest, "Invalid quantity", IsValidation, "validation 400"},
		{http.StatusConflict, "Category in use", IsValidation, "validation 409"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"message": tt.message,
				})
			}))
			defer srv.Close()

			client := NewClient(srv.URL, srv.URL, zap.NewNop())
			_, err := client.GetProduct(context.Background(), "t", "p1")
			require.Error(t, err)
			assert.True(t, tt.check(err))
			assert.Equal(t, tt.message, UserMessage(err, "fallback"))
		})
	}
}

func TestClientWrapsTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL, srv.URL, zap.NewNop())
	_, err := client.ListCategories(context.Background(), "t")
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, "fallback", UserMessage(err, "fallback"))
}

func TestClientToleratesNonEnvelopeErrorBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>proxy error</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, zap.NewNop())
	_, err := client.ListCategories(context.Background(), "t")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Message)
}

func TestRecordSaleSendsQuantityAsNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sales", r.URL.Path)

		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `"p1"`, string(body["product"]))
		// json.Number keeps 0.5 a number on the wire, not a string
		assert.JSONEq(t, `0.5`, string(body["quantity"]))

		w.Write(envelopeBody(t, map[string]interface{}{
			"_id":         "s1",
			"product":     map[string]string{"_id": "p1", "name": "Rice", "unit": "kg"},
			"quantity":    0.5,
			"totalAmount": 31.25,
		}))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, zap.NewNop())
	sale, err := client.RecordSale(context.Background(), "t", "p1", decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	assert.Equal(t, "s1", sale.ID)
	assert.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("31.25")))
}

func TestFetchDashboardIsAllOrNothing(t *testing.T) {
	var mu sync.Mutex
	calls := map[string]int{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls[r.URL.Path]++
		mu.Unlock()

		switch r.URL.Path {
		case "/dashboard/stats":
			w.Write(envelopeBody(t, map[string]interface{}{"revenue": 100, "totalSales": 3}))
		case "/dashboard/fast-moving":
			w.Write(envelopeBody(t, []interface{}{}))
		case "/dashboard/low-stock":
			w.Write(envelopeBody(t, []interface{}{}))
		case "/dashboard/sales-trend":
			// one of the five fails
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "aggregation failed"})
		case "/dashboard/category-sales":
			w.Write(envelopeBody(t, []interface{}{}))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, zap.NewNop())
	dashboard, err := client.FetchDashboard(context.Background(), "t", 7, 5)
	require.Error(t, err)
	assert.Nil(t, dashboard, "a single failed fetch must not yield partial charts")
}

func TestFetchDashboardBundlesAllFive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dashboard/stats":
			w.Write(envelopeBody(t, map[string]interface{}{
				"revenue": 1500, "profit": 300, "totalSales": 12,
				"totalProducts": 40, "lowStockProducts": 3, "outOfStockProducts": 1,
			}))
		case "/dashboard/fast-moving":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			w.Write(envelopeBody(t, []map[string]interface{}{{
				"_id":           "p1",
				"product":       map[string]string{"name": "Rice"},
				"totalQuantity": 25,
				"totalRevenue":  1550,
			}}))
		case "/dashboard/low-stock":
			w.Write(envelopeBody(t, []map[string]interface{}{{"_id": "p2", "name": "Dal", "stock": 2, "minStockLevel": 5, "unit": "kg"}}))
		case "/dashboard/sales-trend":
			assert.Equal(t, "7", r.URL.Query().Get("days"))
			w.Write(envelopeBody(t, []map[string]interface{}{{"_id": "2026-08-28", "revenue": 500, "profit": 90}}))
		case "/dashboard/category-sales":
			w.Write(envelopeBody(t, []map[string]interface{}{{"categoryName": "Grains", "totalRevenue": 900, "totalProfit": 200}}))
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, zap.NewNop())
	dashboard, err := client.FetchDashboard(context.Background(), "t", 7, 5)
	require.NoError(t, err)

	assert.Equal(t, 12, dashboard.Stats.TotalSales)
	require.Len(t, dashboard.FastMoving, 1)
	assert.Equal(t, "Rice", dashboard.FastMoving[0].Product.Name)
	require.Len(t, dashboard.LowStock, 1)
	assert.Equal(t, "Dal", dashboard.LowStock[0].Name)
	require.Len(t, dashboard.SalesTrend, 1)
	assert.Equal(t, "2026-08-28", dashboard.SalesTrend[0].Date)
	require.Len(t, dashboard.CategorySales, 1)
}

func TestAuthRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req["password"] != "secret123" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Invalid credentials"})
				return
			}
			w.Write(envelopeBody(t, map[string]string{"token": "tok", "name": "Asha", "role": "admin"}))
		case "/auth/me":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Not authorized"})
				return
			}
			w.Write(envelopeBody(t, map[string]string{"name": "Asha", "role": "admin"}))
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, zap.NewNop())

	_, err := client.Login(context.Background(), "asha@store.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsAuthentication(err))

	result, err := client.Login(context.Background(), "asha@store.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok", result.Token)
	assert.Equal(t, domain.RoleAdmin, result.Identity.Role)

	identity, err := client.Me(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Asha", identity.Name)

	_, err = client.Me(context.Background(), "expired")
	require.Error(t, err)
	assert.True(t, IsAuthentication(err))
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(envelopeBody(t, map[string]string{"token": "tok", "name": "X", "role": "superuser"}))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, zap.NewNop())
	_, err := client.Login(context.Background(), "x@store.com", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownRole)
}
