package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/partshub/internal/cart"

	"github.com/shopspring/decimal"
)

type fakeBackend struct {
	mu            sync.Mutex
	createCalls   int
	initCalls     int
	verifyCalls   int
	createErr     error
	initErrs      []error
	authURL       string
	keys          []string
	lastRequest   OrderRequest
	nextOrderID   uint
	blockCreate   chan struct{}
	verifyErr     error
	createEntered chan struct{}
}

func (f *fakeBackend) CreateOrder(_ context.Context, req OrderRequest, key string) (OrderRef, error) {
	if f.createEntered != nil {
		f.createEntered <- struct{}{}
	}
	if f.blockCreate != nil {
		<-f.blockCreate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.keys = append(f.keys, key)
	f.lastRequest = req
	if f.createErr != nil {
		return OrderRef{}, f.createErr
	}
	f.nextOrderID++
	return OrderRef{ID: f.nextOrderID, Status: "pending", Total: decimal.NewFromInt(11500)}, nil
}

func (f *fakeBackend) InitializePayment(_ context.Context, orderID uint, _ string) (PaymentInit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	if len(f.initErrs) > 0 {
		err := f.initErrs[0]
		f.initErrs = f.initErrs[1:]
		if err != nil {
			return PaymentInit{}, err
		}
	}
	url := f.authURL
	if url == "" {
		url = "/payment/mock?reference=mock_1"
	}
	return PaymentInit{AuthorizationURL: url, Reference: "mock_1"}, nil
}

func (f *fakeBackend) VerifyPayment(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	return f.verifyErr
}

func (f *fakeBackend) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls + f.initCalls + f.verifyCalls
}

func filledCart(t *testing.T) *cart.Store {
	t.Helper()
	ctx := context.Background()
	store := cart.New(ctx, "client:1", cart.NewMemoryPersister())
	if err := store.AddItem(ctx, cart.PartRef{ID: 1, Price: decimal.NewFromInt(5000)}, 2); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if err := store.AddItem(ctx, cart.PartRef{ID: 2, Price: decimal.NewFromInt(1500)}, 1); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	return store
}

var validDetails = Details{Address: "12 Allen Avenue, Ikeja", Phone: "08031234567"}

func TestCheckoutEmptyCartNeverCallsBackend(t *testing.T) {
	backend := &fakeBackend{}
	store := cart.New(context.Background(), "empty", nil)
	coordinator := NewCoordinator(backend, store, Options{Email: "ada@example.com"})

	_, err := coordinator.Checkout(context.Background(), validDetails)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Field != "cart" {
		t.Fatalf("expected cart field, got %s", validationErr.Field)
	}
	if backend.totalCalls() != 0 {
		t.Fatalf("expected no backend calls, got %d", backend.totalCalls())
	}
	if coordinator.State() != StateIdle {
		t.Fatalf("expected idle state, got %s", coordinator.State())
	}
}

func TestCheckoutMissingDetailsNeverCallsBackend(t *testing.T) {
	cases := []struct {
		details Details
		field   string
	}{
		{Details{Phone: "08031234567"}, "address"},
		{Details{Address: "   ", Phone: "08031234567"}, "address"},
		{Details{Address: "Ikeja", Phone: " \t "}, "phone"},
		{Details{Address: "Ikeja"}, "phone"},
		{Details{Address: "Ikeja", Phone: "12345"}, "phone"},
	}
	for _, tc := range cases {
		backend := &fakeBackend{}
		coordinator := NewCoordinator(backend, filledCart(t), Options{})
		_, err := coordinator.Checkout(context.Background(), tc.details)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) || validationErr.Field != tc.field {
			t.Fatalf("expected %s ValidationError, got %v", tc.field, err)
		}
		if backend.totalCalls() != 0 {
			t.Fatalf("expected no backend calls, got %d", backend.totalCalls())
		}
	}
}

func TestCheckoutInternalConfirmationClearsCart(t *testing.T) {
	backend := &fakeBackend{}
	store := filledCart(t)
	coordinator := NewCoordinator(backend, store, Options{Email: "ada@example.com"})

	result, err := coordinator.Checkout(context.Background(), validDetails)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if !result.Confirmed || result.Order.ID == 0 {
		t.Fatalf("expected confirmed result with order, got %+v", result)
	}
	if !store.IsEmpty() {
		t.Fatalf("expected cart cleared")
	}
	if coordinator.State() != StateConfirmed {
		t.Fatalf("expected confirmed state, got %s", coordinator.State())
	}
	if backend.verifyCalls != 1 {
		t.Fatalf("expected internal reference to be verified once, got %d", backend.verifyCalls)
	}
	if len(backend.lastRequest.Items) != 2 || backend.lastRequest.Items[0].PartID != 1 || backend.lastRequest.Items[0].Quantity != 2 {
		t.Fatalf("unexpected order lines: %+v", backend.lastRequest.Items)
	}
	if backend.lastRequest.DeliveryPhone != "+2348031234567" {
		t.Fatalf("expected normalized phone, got %s", backend.lastRequest.DeliveryPhone)
	}
}

func TestCheckoutInternalVerifyFailureIsReported(t *testing.T) {
	verifyErr := errors.New("verify timeout")
	backend := &fakeBackend{verifyErr: verifyErr}
	store := filledCart(t)
	coordinator := NewCoordinator(backend, store, Options{})

	result, err := coordinator.Checkout(context.Background(), validDetails)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if !result.Confirmed || !errors.Is(result.VerifyErr, verifyErr) {
		t.Fatalf("expected confirmed result carrying verify error, got %+v", result)
	}
	if !errors.Is(coordinator.LastError(), verifyErr) {
		t.Fatalf("expected last error to be verify error, got %v", coordinator.LastError())
	}
	if !store.IsEmpty() {
		t.Fatalf("order exists on the server, cart should be cleared")
	}
}

func TestCheckoutExternalRedirectKeepsCart(t *testing.T) {
	backend := &fakeBackend{authURL: "https://checkout.paystack.com/abc"}
	store := filledCart(t)
	coordinator := NewCoordinator(backend, store, Options{})

	result, err := coordinator.Checkout(context.Background(), validDetails)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if result.Confirmed || result.RedirectURL != "https://checkout.paystack.com/abc" {
		t.Fatalf("expected redirect result, got %+v", result)
	}
	if store.IsEmpty() {
		t.Fatalf("cart should be kept until payment completes")
	}
	if coordinator.State() != StateRedirecting {
		t.Fatalf("expected redirecting state, got %s", coordinator.State())
	}
	if backend.verifyCalls != 0 {
		t.Fatalf("external payment must not be verified by coordinator")
	}
}

func TestCheckoutCreateFailureLeavesCartUnchanged(t *testing.T) {
	backend := &fakeBackend{createErr: errors.New("insufficient stock")}
	store := filledCart(t)
	coordinator := NewCoordinator(backend, store, Options{})

	if _, err := coordinator.Checkout(context.Background(), validDetails); err == nil {
		t.Fatalf("expected failure")
	}
	if store.ItemCount() != 3 {
		t.Fatalf("expected cart unchanged, got %d items", store.ItemCount())
	}
	if coordinator.State() != StateFailed {
		t.Fatalf("expected failed state, got %s", coordinator.State())
	}
	if backend.initCalls != 0 {
		t.Fatalf("payment init should not run after create failure")
	}
}

func TestCheckoutRetryReusesCreatedOrder(t *testing.T) {
	backend := &fakeBackend{initErrs: []error{errors.New("gateway timeout")}}
	store := filledCart(t)
	coordinator := NewCoordinator(backend, store, Options{})

	if _, err := coordinator.Checkout(context.Background(), validDetails); err == nil {
		t.Fatalf("expected payment init failure")
	}
	if store.IsEmpty() {
		t.Fatalf("cart must survive payment init failure")
	}

	coordinator.Reset()
	result, err := coordinator.Checkout(context.Background(), validDetails)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if backend.createCalls != 1 {
		t.Fatalf("expected a single order creation, got %d", backend.createCalls)
	}
	if !result.Reused || result.Order.ID != 1 {
		t.Fatalf("expected reused order 1, got %+v", result)
	}
}

func TestCheckoutRetryAfterCreateFailureReusesIdempotencyKey(t *testing.T) {
	backend := &fakeBackend{createErr: errors.New("connection reset")}
	keys := []string{"key-1", "key-2"}
	coordinator := NewCoordinator(backend, filledCart(t), Options{NewKey: func() string {
		k := keys[0]
		keys = keys[1:]
		return k
	}})

	_, _ = coordinator.Checkout(context.Background(), validDetails)
	backend.createErr = nil
	if _, err := coordinator.Checkout(context.Background(), validDetails); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(backend.keys) != 2 || backend.keys[0] != "key-1" || backend.keys[1] != "key-1" {
		t.Fatalf("expected idempotency key reuse, got %v", backend.keys)
	}
}

func TestCheckoutChangedCartCreatesNewOrder(t *testing.T) {
	backend := &fakeBackend{initErrs: []error{errors.New("gateway timeout")}}
	store := filledCart(t)
	coordinator := NewCoordinator(backend, store, Options{})

	_, _ = coordinator.Checkout(context.Background(), validDetails)
	if err := store.UpdateQuantity(context.Background(), 2, 3); err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}
	result, err := coordinator.Checkout(context.Background(), validDetails)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if backend.createCalls != 2 || result.Reused {
		t.Fatalf("expected a fresh order for a changed cart, calls=%d reused=%v", backend.createCalls, result.Reused)
	}
}

func TestCheckoutRejectsConcurrentSubmission(t *testing.T) {
	backend := &fakeBackend{blockCreate: make(chan struct{}), createEntered: make(chan struct{}, 1)}
	coordinator := NewCoordinator(backend, filledCart(t), Options{})

	done := make(chan error, 1)
	go func() {
		_, err := coordinator.Checkout(context.Background(), validDetails)
		done <- err
	}()

	select {
	case <-backend.createEntered:
	case <-time.After(2 * time.Second):
		t.Fatalf("first checkout did not reach backend")
	}
	if !coordinator.InFlight() {
		t.Fatalf("expected in-flight flag")
	}
	if _, err := coordinator.Checkout(context.Background(), validDetails); !errors.Is(err, ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}

	close(backend.blockCreate)
	if err := <-done; err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}
	if backend.createCalls != 1 {
		t.Fatalf("expected one order, got %d", backend.createCalls)
	}
}
