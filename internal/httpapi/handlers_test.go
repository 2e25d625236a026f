package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/service"
	"warungpos/backend/internal/store/memory"
)

func newTestAPI(t *testing.T) (*API, http.Handler) {
	t.Helper()
	st := memory.NewSeeded("warung-test")
	svc := service.New(st)
	auth := newTestAuth(t)
	api := New(svc, auth, "http://127.0.0.1:3000")
	return api, api.Handler()
}

func loginToken(t *testing.T, handler http.Handler, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func doJSON(t *testing.T, api *API, handler http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("X-CSRF-Token", api.generateCSRFToken())
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	_, handler := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestEndpointsRequireAuth(t *testing.T) {
	api, handler := newTestAPI(t)

	rec := doJSON(t, api, handler, http.MethodGet, "/api/v1/products", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestCheckoutEndToEnd(t *testing.T) {
	api, handler := newTestAPI(t)
	token := loginToken(t, handler, "staff", "staff-password")

	payload := map[string]any{
		"transactionId": "tx-http-1",
		"paymentMethod": "cash",
		"cashTendered":  20000,
		"items": []map[string]any{
			{"productId": "prd-demo-indomie", "productName": "Indomie Goreng", "unitName": "Pcs", "conversion": 1, "price": 3500, "quantity": 4},
		},
	}
	rec := doJSON(t, api, handler, http.MethodPost, "/api/v1/checkout", token, payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var result domain.CheckoutResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Transaction.TotalAmount != 14000 || result.Transaction.Change != 6000 {
		t.Fatalf("unexpected checkout result: %+v", result.Transaction)
	}

	// Resubmission replays the stored fact with 200.
	rec = doJSON(t, api, handler, http.MethodPost, "/api/v1/checkout", token, payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on duplicate, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode duplicate result: %v", err)
	}
	if !result.Duplicate {
		t.Fatalf("expected duplicate flag on resubmission")
	}
}

func TestCheckoutValidationErrorsMapTo422(t *testing.T) {
	api, handler := newTestAPI(t)
	token := loginToken(t, handler, "staff", "staff-password")

	payload := map[string]any{
		"paymentMethod": "cash",
		"cashTendered":  1000,
		"items": []map[string]any{
			{"productId": "prd-demo-indomie", "conversion": 1, "price": 3500, "quantity": 4},
		},
	}
	rec := doJSON(t, api, handler, http.MethodPost, "/api/v1/checkout", token, payload)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp["code"] != domain.CodeInsufficientPayment {
		t.Fatalf("expected payment code, got %v", resp["code"])
	}
}

func TestCheckoutRejectsMalformedPayload(t *testing.T) {
	api, handler := newTestAPI(t)
	token := loginToken(t, handler, "staff", "staff-password")

	rec := doJSON(t, api, handler, http.MethodPost, "/api/v1/checkout", token, map[string]any{
		"paymentMethod": "barter",
		"items":         []map[string]any{{"productId": "x", "conversion": 1, "price": 1, "quantity": 1}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown payment method, got %d", rec.Code)
	}
}

func TestOwnerOnlyRoutesRejectStaff(t *testing.T) {
	api, handler := newTestAPI(t)
	staffToken := loginToken(t, handler, "staff", "staff-password")

	rec := doJSON(t, api, handler, http.MethodPost, "/api/v1/procurements", staffToken, map[string]any{
		"items": []map[string]any{{"productId": "prd-demo-indomie", "quantity": 10, "buyPrice": 2900}},
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff procurement, got %d", rec.Code)
	}

	rec = doJSON(t, api, handler, http.MethodDelete, "/api/v1/products/prd-demo-indomie", staffToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff product delete, got %d", rec.Code)
	}
}

func TestProcurementEndpointAddsStock(t *testing.T) {
	api, handler := newTestAPI(t)
	ownerToken := loginToken(t, handler, "owner", "owner-password")

	rec := doJSON(t, api, handler, http.MethodPost, "/api/v1/procurements", ownerToken, map[string]any{
		"supplierId": "sup-demo-sembako",
		"items":      []map[string]any{{"productId": "prd-demo-indomie", "quantity": 200, "buyPrice": 2900}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, api, handler, http.MethodGet, "/api/v1/products/prd-demo-indomie", ownerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var p domain.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if p.Stock != 600 {
		t.Fatalf("expected stock 600 after procurement, got %d", p.Stock)
	}
}

func TestMutatingRequestsNeedCSRFToken(t *testing.T) {
	_, handler := newTestAPI(t)
	token := loginToken(t, handler, "staff", "staff-password")

	body, _ := json.Marshal(map[string]any{"customerId": "cus-demo-siti", "amount": 1000})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/debt-payments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without CSRF token, got %d", rec.Code)
	}
}

func TestUnknownRecordMapsTo404(t *testing.T) {
	api, handler := newTestAPI(t)
	token := loginToken(t, handler, "owner", "owner-password")

	rec := doJSON(t, api, handler, http.MethodGet, "/api/v1/transactions/tx-missing", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
