package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/partshub/internal/cart"
	"github.com/partshub/internal/checkout"
	"github.com/partshub/internal/config"
	"github.com/partshub/internal/models"

	"github.com/shopspring/decimal"
)

func writeEnvelope(w http.ResponseWriter, status int, code int, msg string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status_code": code,
		"msg":         msg,
		"data":        data,
	})
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Client: config.ClientConfig{BaseURL: baseURL, TimeoutMS: 2000},
		Poll:   config.PollConfig{LocationIntervalSeconds: 1, NotificationIntervalSeconds: 1},
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestUnauthorizedPollStopsAllPollers(t *testing.T) {
	var notificationHits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/notifications":
			notificationHits.Add(1)
			writeEnvelope(w, http.StatusUnauthorized, 401, "token expired", nil)
		default:
			writeEnvelope(w, http.StatusOK, 0, "success", []interface{}{})
		}
	}))
	defer server.Close()

	ctx := context.Background()
	runtime := New(ctx, testConfig(server.URL), Options{})
	if err := runtime.Session().Set(ctx, "stale", &models.User{ID: 1, Email: "ada@example.com", Role: "admin"}); err != nil {
		t.Fatalf("set session failed: %v", err)
	}

	locations := runtime.WatchLocations(ctx, nil)
	var delivered atomic.Int64
	notifications := runtime.WatchNotifications(ctx, func([]models.Notification) { delivered.Add(1) })

	waitFor(t, "pollers to stop", func() bool {
		return !locations.Active() && !notifications.Active() && runtime.Pollers().Len() == 0
	})
	if runtime.Session().Authenticated() {
		t.Fatalf("session should be torn down after 401")
	}
	if delivered.Load() != 0 {
		t.Fatalf("unauthorized poll must not deliver results")
	}
	hits := notificationHits.Load()
	time.Sleep(1200 * time.Millisecond)
	if notificationHits.Load() != hits {
		t.Fatalf("stopped poller kept polling: %d -> %d", hits, notificationHits.Load())
	}
}

func TestLogoutStopsReporter(t *testing.T) {
	var reports atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/location" && r.Method == http.MethodPut {
			reports.Add(1)
		}
		writeEnvelope(w, http.StatusOK, 0, "success", nil)
	}))
	defer server.Close()

	ctx := context.Background()
	runtime := New(ctx, testConfig(server.URL), Options{})
	if err := runtime.Session().Set(ctx, "token", &models.User{ID: 3, Role: "dispatcher"}); err != nil {
		t.Fatalf("set session failed: %v", err)
	}
	task := runtime.ReportLocation(ctx, func() (float64, float64, bool) { return 6.52, 3.37, true })
	waitFor(t, "first location report", func() bool { return reports.Load() >= 1 })

	runtime.Logout(ctx)
	if task.Active() || runtime.Pollers().Len() != 0 {
		t.Fatalf("logout should stop the reporter")
	}
	if runtime.Session().Authenticated() {
		t.Fatalf("logout should clear the session")
	}
}

func TestCheckoutUsesSessionEmailAndSharedCart(t *testing.T) {
	var initEmail string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/orders":
			writeEnvelope(w, http.StatusOK, 0, "success", map[string]interface{}{"id": 7, "status": "pending", "payment_status": "pending", "total_amount": "10000"})
		case "/api/v1/payments/initialize":
			var body map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			initEmail, _ = body["email"].(string)
			writeEnvelope(w, http.StatusOK, 0, "success", map[string]interface{}{
				"authorization_url": "https://checkout.paystack.com/xyz",
				"reference":         "ph_7_abc",
			})
		default:
			writeEnvelope(w, http.StatusNotFound, 404, "not found", nil)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	persister := cart.NewMemoryPersister()
	runtime := New(ctx, testConfig(server.URL), Options{Persister: persister})
	if err := runtime.Session().Set(ctx, "token", &models.User{ID: 1, Email: "ada@example.com", Role: "client"}); err != nil {
		t.Fatalf("set session failed: %v", err)
	}
	if err := runtime.Cart().AddItem(ctx, cart.PartRef{ID: 1, Price: decimal.NewFromInt(5000)}, 2); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	coordinator := runtime.Checkout()
	if runtime.Checkout() != coordinator {
		t.Fatalf("coordinator should be reused for the same user")
	}
	result, err := coordinator.Checkout(ctx, checkout.Details{Address: "12 Allen Avenue", Phone: "08031234567"})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if result.Order.ID != 7 || result.RedirectURL != "https://checkout.paystack.com/xyz" {
		t.Fatalf("unexpected checkout result: %+v", result)
	}
	if initEmail != "ada@example.com" {
		t.Fatalf("payment init should carry session email, got %q", initEmail)
	}

	runtime.Session().Teardown(ctx)
	if runtime.Checkout() == coordinator {
		t.Fatalf("teardown should drop the coordinator")
	}
}
