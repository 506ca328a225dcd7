package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/partshub/internal/config"
	"github.com/partshub/internal/models"
	"github.com/partshub/internal/provider"
	"github.com/partshub/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type routerFixture struct {
	engine *gin.Engine
}

func setupRouterTest(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterGin(); err != nil {
		t.Fatalf("register validators failed: %v", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	prevDB := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = prevDB })

	cfg := &config.Config{
		App:         config.AppConfig{Name: "PartsHub API", Currency: "NGN"},
		Server:      config.ServerConfig{Mode: "debug"},
		JWT:         config.JWTConfig{SecretKey: "router-test-secret", ExpireHours: 1},
		Security:    config.SecurityConfig{PasswordMinLength: 6},
		Idempotency: config.IdempotencyConfig{Backend: "none"},
		Order:       config.OrderConfig{ListLimit: 50},
	}
	container := provider.NewContainer(cfg)
	return &routerFixture{engine: SetupRouter(cfg, container)}
}

func (fx *routerFixture) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	fx.engine.ServeHTTP(w, req)

	var resp envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s %s response failed: %v body=%s", method, path, err, w.Body.String())
		}
	}
	return w.Code, resp
}

func (fx *routerFixture) register(t *testing.T, name, email, role string) string {
	t.Helper()
	body := map[string]string{
		"full_name": name,
		"email":     email,
		"password":  "secret123",
		"phone":     "08031234567",
		"role":      role,
	}
	if role == "vendor" {
		body["business_name"] = name + " Motors"
	}
	code, resp := fx.do(t, http.MethodPost, "/api/v1/auth/register", "", body)
	if code != http.StatusOK {
		t.Fatalf("register %s failed: code=%d msg=%s", email, code, resp.Msg)
	}
	var auth struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(resp.Data, &auth); err != nil {
		t.Fatalf("decode auth result failed: %v", err)
	}
	if auth.AccessToken == "" || auth.TokenType != "bearer" {
		t.Fatalf("unexpected auth result: %+v", auth)
	}
	return auth.AccessToken
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	fx := setupRouterTest(t)

	code, resp := fx.do(t, http.MethodGet, "/health", "", nil)
	if code != http.StatusOK || !strings.Contains(string(resp.Data), "PartsHub API") {
		t.Fatalf("health should report app name, code=%d data=%s", code, resp.Data)
	}
	code, _ = fx.do(t, http.MethodGet, "/api/v1/parts", "", nil)
	if code != http.StatusOK {
		t.Fatalf("part list should be public, got %d", code)
	}
	code, resp = fx.do(t, http.MethodGet, "/api/v1/categories", "", nil)
	if code != http.StatusOK || string(resp.Data) != "[]" {
		t.Fatalf("categories should be an empty array, code=%d data=%s", code, resp.Data)
	}
	code, _ = fx.do(t, http.MethodGet, "/api/v1/orders", "", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("orders without token want 401 got %d", code)
	}
}

func TestRoleGatedOrderFlow(t *testing.T) {
	fx := setupRouterTest(t)
	clientToken := fx.register(t, "Ada Client", "ada@example.com", "client")
	vendorToken := fx.register(t, "Bola Vendor", "bola@example.com", "vendor")
	dispatcherToken := fx.register(t, "Chidi Rider", "chidi@example.com", "dispatcher")

	partBody := map[string]interface{}{
		"name":     "Brake Pad",
		"category": "Brakes",
		"price":    "5000",
		"quantity": 4,
		"sku":      "BP-001",
	}
	code, resp := fx.do(t, http.MethodPost, "/api/v1/parts", clientToken, partBody)
	if code != http.StatusForbidden {
		t.Fatalf("client creating part want 403 got %d msg=%s", code, resp.Msg)
	}
	code, resp = fx.do(t, http.MethodPost, "/api/v1/parts", vendorToken, partBody)
	if code != http.StatusOK {
		t.Fatalf("vendor create part failed: code=%d msg=%s", code, resp.Msg)
	}
	var part struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &part); err != nil || part.ID == 0 {
		t.Fatalf("decode part failed: %v data=%s", err, resp.Data)
	}

	orderBody := map[string]interface{}{
		"items":            []map[string]interface{}{{"part_id": part.ID, "quantity": 2}},
		"delivery_address": "12 Allen Avenue, Ikeja",
		"delivery_phone":   "08031234567",
	}
	code, resp = fx.do(t, http.MethodPost, "/api/v1/orders", vendorToken, orderBody)
	if code != http.StatusForbidden {
		t.Fatalf("vendor placing order want 403 got %d", code)
	}
	code, resp = fx.do(t, http.MethodPost, "/api/v1/orders", clientToken, orderBody)
	if code != http.StatusOK {
		t.Fatalf("client create order failed: code=%d msg=%s", code, resp.Msg)
	}
	var order struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Data, &order); err != nil || order.ID == 0 {
		t.Fatalf("decode order failed: %v data=%s", err, resp.Data)
	}
	if order.Status != "pending" {
		t.Fatalf("new order status want pending got %s", order.Status)
	}

	assignPath := fmt.Sprintf("/api/v1/orders/%d/assign", order.ID)
	code, resp = fx.do(t, http.MethodPut, assignPath, dispatcherToken, nil)
	if code != http.StatusBadRequest || !strings.Contains(resp.Msg, "invalid transition") {
		t.Fatalf("assigning unpaid order want 400 invalid transition, got %d msg=%s", code, resp.Msg)
	}

	statusPath := fmt.Sprintf("/api/v1/orders/%d/status?new_status=confirmed", order.ID)
	code, resp = fx.do(t, http.MethodPut, statusPath, vendorToken, nil)
	if code != http.StatusOK {
		t.Fatalf("vendor confirm failed: code=%d msg=%s", code, resp.Msg)
	}

	code, resp = fx.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", order.ID), clientToken, nil)
	if code != http.StatusOK {
		t.Fatalf("client get order failed: code=%d msg=%s", code, resp.Msg)
	}
	var detail struct {
		Status  string `json:"status"`
		Actions []struct {
			Target string `json:"target"`
		} `json:"actions"`
	}
	if err := json.Unmarshal(resp.Data, &detail); err != nil {
		t.Fatalf("decode detail failed: %v", err)
	}
	if detail.Status != "confirmed" {
		t.Fatalf("order status want confirmed got %s", detail.Status)
	}

	code, _ = fx.do(t, http.MethodGet, "/api/v1/admin/stats", clientToken, nil)
	if code != http.StatusForbidden {
		t.Fatalf("client reading admin stats want 403 got %d", code)
	}

	code, resp = fx.do(t, http.MethodGet, "/api/v1/notifications/unread-count", vendorToken, nil)
	if code != http.StatusOK || !strings.Contains(string(resp.Data), "unread_count") {
		t.Fatalf("unread count failed: code=%d data=%s", code, resp.Data)
	}
}

func TestCartSnapshotRoundTrip(t *testing.T) {
	fx := setupRouterTest(t)
	clientToken := fx.register(t, "Ada Client", "ada@example.com", "client")

	body := map[string]interface{}{
		"items": []map[string]interface{}{
			{"part": map[string]interface{}{"id": 3, "name": "Filter", "sku": "F-1", "price": "1500", "vendor_id": 2}, "quantity": 2},
			{"part": map[string]interface{}{"id": 3, "name": "Filter", "sku": "F-1", "price": "1500", "vendor_id": 2}, "quantity": 1},
		},
	}
	code, resp := fx.do(t, http.MethodPut, "/api/v1/cart", clientToken, body)
	if code != http.StatusOK {
		t.Fatalf("save cart failed: code=%d msg=%s", code, resp.Msg)
	}

	code, resp = fx.do(t, http.MethodGet, "/api/v1/cart", clientToken, nil)
	if code != http.StatusOK {
		t.Fatalf("get cart failed: code=%d msg=%s", code, resp.Msg)
	}
	var view struct {
		ItemCount int    `json:"item_count"`
		Total     string `json:"total"`
	}
	if err := json.Unmarshal(resp.Data, &view); err != nil {
		t.Fatalf("decode cart failed: %v", err)
	}
	if view.ItemCount != 3 || view.Total != "4500" {
		t.Fatalf("unexpected cart view: %+v", view)
	}

	code, _ = fx.do(t, http.MethodDelete, "/api/v1/cart", clientToken, nil)
	if code != http.StatusOK {
		t.Fatalf("clear cart failed: %d", code)
	}
	_, resp = fx.do(t, http.MethodGet, "/api/v1/cart", clientToken, nil)
	if err := json.Unmarshal(resp.Data, &view); err != nil || view.ItemCount != 0 {
		t.Fatalf("cart should be empty after clear: %+v err=%v", view, err)
	}
}
