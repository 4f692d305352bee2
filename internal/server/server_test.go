package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockSentinel/internal/model"
	"StockSentinel/internal/service"
	"StockSentinel/internal/store"
)

var now = time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore(store.WithClock(func() time.Time { return now }))
	svc := service.New(service.Deps{Products: st, Sales: st, Forecasts: st, Alerts: st}, service.Options{})
	return New(svc, st, st, st, st), st
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func addProduct(t *testing.T, st *store.MemoryStore, name string, qty int) model.Product {
	t.Helper()
	p, err := st.AddProduct(context.Background(), model.Product{Name: name, Category: "Electronics", CurrentQuantity: qty, PurchasePrice: 10, SellingPrice: 15})
	require.NoError(t, err)
	return p
}

func path(format string, id int64) string {
	return strings.Replace(format, ":id", strconv.FormatInt(id, 10), 1)
}

func TestHealth(t *testing.T) {
	s, _ := setup(t)
	code, body := do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestProductRoutes(t *testing.T) {
	s, st := setup(t)
	p := addProduct(t, st, "Cable", 40)

	code, body := do(t, s, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["products"], 1)

	code, body = do(t, s, http.MethodGet, path("/api/products/:id", p.ID), "")
	assert.Equal(t, http.StatusOK, code)
	product := body["product"].(map[string]any)
	assert.Equal(t, "Cable", product["product_name"])

	code, _ = do(t, s, http.MethodGet, "/api/products/999", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, s, http.MethodGet, "/api/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSaleAndPurchase(t *testing.T) {
	s, st := setup(t)
	p := addProduct(t, st, "Cable", 10)

	code, body := do(t, s, http.MethodPost, path("/api/products/:id/sale", p.ID), `{"quantity":4,"date":"2026-06-29"}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "2026-06-29", body["date"])
	assert.Equal(t, 60.0, body["total_revenue"])

	code, _ = do(t, s, http.MethodPost, path("/api/products/:id/sale", p.ID), `{"quantity":50}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, _ = do(t, s, http.MethodPost, path("/api/products/:id/sale", p.ID), `{"quantity":1,"date":"29/06/2026"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, s, http.MethodPost, "/api/products/999/sale", `{"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = do(t, s, http.MethodPost, path("/api/products/:id/purchase", p.ID), `{"quantity":100}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 106.0, body["product"].(map[string]any)["current_quantity"])
}

func TestForecastRoutes(t *testing.T) {
	s, st := setup(t)
	ctx := context.Background()
	p := addProduct(t, st, "Charger", 2000)
	for d := 149; d >= 0; d-- {
		_, err := st.RecordSale(ctx, p.ID, 5, now.AddDate(0, 0, -d))
		require.NoError(t, err)
	}
	thin := addProduct(t, st, "Rare", 10)

	code, body := do(t, s, http.MethodPost, path("/api/forecast/:id", p.ID), `{"days":10}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, true, body["success"])
	forecast := body["forecast"].([]any)
	require.Len(t, forecast, 10)
	first := forecast[0].(map[string]any)
	assert.Equal(t, "2026-07-01", first["date"])
	assert.InDelta(t, 5.0, first["demand"], 1e-9)
	assert.InDelta(t, 4.0, first["lower"], 1e-9)

	code, body = do(t, s, http.MethodGet, path("/api/forecast/:id/saved", p.ID), "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["forecast"], 10)
	assert.InDelta(t, 50.0, body["total_demand"], 1e-9)
	assert.InDelta(t, 100.0, body["accuracy"], 1e-6)

	code, body = do(t, s, http.MethodGet, path("/api/forecast/:id", p.ID)+"?days=3", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["forecast"], 3)

	code, body = do(t, s, http.MethodGet, path("/api/forecast/:id", thin.ID), "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "insufficient_data", body["error_kind"])
	assert.Equal(t, false, body["success"])

	code, _ = do(t, s, http.MethodGet, "/api/forecast/999", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, s, http.MethodGet, path("/api/forecast/:id", p.ID)+"?days=-4", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAlertRoutes(t *testing.T) {
	s, st := setup(t)
	addProduct(t, st, "Empty", 0)
	addProduct(t, st, "Plenty", 100)

	code, body := do(t, s, http.MethodPost, "/api/alerts/analyze", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, body["count"])
	alert := body["alerts"].([]any)[0].(map[string]any)
	assert.Equal(t, "critical", alert["severity"])
	assert.Equal(t, "emergency_restock", alert["recommendation_kind"])
	assert.Contains(t, alert["recommendation"], "Order 100 units")

	code, body = do(t, s, http.MethodGet, "/api/alerts", "")
	require.Equal(t, http.StatusOK, code)
	alerts := body["alerts"].([]any)
	require.Len(t, alerts, 1)
	id := alerts[0].(map[string]any)["alert_id"].(string)

	code, _ = do(t, s, http.MethodPost, "/api/alerts/"+id+"/resolve", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, s, http.MethodPost, "/api/alerts/missing/resolve", "")
	assert.Equal(t, http.StatusNotFound, code)

	_, body = do(t, s, http.MethodGet, "/api/alerts", "")
	assert.Empty(t, body["alerts"])
}
