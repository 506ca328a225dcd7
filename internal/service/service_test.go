package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/partshub/internal/config"
	"github.com/partshub/internal/constants"
	"github.com/partshub/internal/events"
	"github.com/partshub/internal/idempotency"
	"github.com/partshub/internal/models"
	"github.com/partshub/internal/orderflow"
	"github.com/partshub/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingRecorder struct {
	mu     sync.Mutex
	counts map[string]float64
}

func (r *recordingRecorder) Count(_ context.Context, metric string, n float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]float64{}
	}
	r.counts[metric] += n
	return nil
}

// memoryIdempotencyStore 测试用内存幂等存储
type memoryIdempotencyStore struct {
	mu      sync.Mutex
	records map[string]*idempotency.Record
}

func (m *memoryIdempotencyStore) Begin(_ context.Context, key, scope string) (*idempotency.Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = map[string]*idempotency.Record{}
	}
	id := scope + "#" + key
	if existing, ok := m.records[id]; ok && existing.Status != idempotency.StatusFailed {
		copied := *existing
		return &copied, false, nil
	}
	record := &idempotency.Record{Key: key, Scope: scope, Status: idempotency.StatusInProgress}
	m.records[id] = record
	copied := *record
	return &copied, true, nil
}

func (m *memoryIdempotencyStore) Complete(_ context.Context, key, scope string, orderID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record := m.records[scope+"#"+key]
	record.Status = idempotency.StatusDone
	record.OrderID = orderID
	return nil
}

func (m *memoryIdempotencyStore) Fail(_ context.Context, key, scope, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record := m.records[scope+"#"+key]
	record.Status = idempotency.StatusFailed
	record.Note = note
	return nil
}

type serviceFixture struct {
	db            *gorm.DB
	auth          *AuthService
	orders        *OrderService
	parts         *PartService
	payments      *PaymentService
	admin         *AdminService
	notifications *NotificationService
	publisher     *recordingPublisher
	recorder      *recordingRecorder
	idem          *memoryIdempotencyStore
}

func setupServiceTest(t *testing.T) *serviceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}

	cfg := &config.Config{
		JWT:      config.JWTConfig{SecretKey: "test-secret", ExpireHours: 1},
		Security: config.SecurityConfig{PasswordMinLength: 6},
	}
	userRepo := repository.NewUserRepository(db)
	partRepo := repository.NewPartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	fx := &serviceFixture{
		db:        db,
		publisher: &recordingPublisher{},
		recorder:  &recordingRecorder{},
		idem:      &memoryIdempotencyStore{},
	}
	dispatcher := NewDispatcher(nil, notificationRepo, fx.publisher, fx.recorder)
	fx.auth = NewAuthService(cfg, userRepo)
	fx.parts = NewPartService(partRepo, userRepo)
	fx.orders = NewOrderService(db, orderRepo, partRepo, userRepo, fx.idem, dispatcher, 100)
	fx.payments = NewPaymentService(db, orderRepo, paymentRepo, userRepo, nil, dispatcher, "NGN")
	fx.admin = NewAdminService(userRepo, repository.NewStatsRepository(db))
	fx.notifications = NewNotificationService(notificationRepo)
	return fx
}

func (fx *serviceFixture) register(t *testing.T, email, role string) *models.User {
	t.Helper()
	input := RegisterInput{
		FullName: strings.Split(email, "@")[0],
		Email:    email,
		Phone:    "0803 123 4567",
		Password: "secret123",
		Role:     role,
	}
	if role == constants.RoleVendor {
		input.BusinessName = "Ikeja Motors"
	}
	result, err := fx.auth.Register(input)
	if err != nil {
		t.Fatalf("register %s failed: %v", email, err)
	}
	return result.User
}

func (fx *serviceFixture) createAdmin(t *testing.T) *models.User {
	t.Helper()
	admin := &models.User{FullName: "Admin", Email: "admin@example.com", PasswordHash: "x", Role: constants.RoleAdmin, IsActive: true}
	if err := fx.db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func (fx *serviceFixture) createPart(t *testing.T, vendor *models.User, name string, price int64, qty int) *models.Part {
	t.Helper()
	part, err := fx.parts.Create(actorOf(vendor), PartInput{
		Name:     name,
		Category: "Brakes",
		Price:    decimal.NewFromInt(price),
		Quantity: qty,
	})
	if err != nil {
		t.Fatalf("create part failed: %v", err)
	}
	return part
}

func (fx *serviceFixture) stock(t *testing.T, partID uint) int {
	t.Helper()
	part, err := fx.parts.Get(partID)
	if err != nil {
		t.Fatalf("get part failed: %v", err)
	}
	return part.Quantity
}

func actorOf(user *models.User) orderflow.Actor {
	return orderflow.Actor{ID: user.ID, Role: orderflow.Role(user.Role)}
}

func orderInput(client *models.User, items ...CreateOrderItem) CreateOrderInput {
	return CreateOrderInput{
		ClientID:        client.ID,
		Items:           items,
		DeliveryAddress: "12 Allen Avenue, Ikeja",
		DeliveryPhone:   "08031234567",
	}
}

func TestRegisterRules(t *testing.T) {
	fx := setupServiceTest(t)

	if _, err := fx.auth.Register(RegisterInput{FullName: "Root", Email: "root@example.com", Phone: "08031234567", Password: "secret123", Role: constants.RoleAdmin}); !errors.Is(err, ErrRoleNotAllowed) {
		t.Fatalf("expected ErrRoleNotAllowed for admin, got %v", err)
	}
	if _, err := fx.auth.Register(RegisterInput{FullName: "Vee", Email: "vee@example.com", Phone: "08031234567", Password: "secret123", Role: constants.RoleVendor}); !errors.Is(err, ErrBusinessNameRequired) {
		t.Fatalf("expected ErrBusinessNameRequired, got %v", err)
	}
	if _, err := fx.auth.Register(RegisterInput{FullName: "Short", Email: "short@example.com", Phone: "08031234567", Password: "123", Role: constants.RoleClient}); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}

	user := fx.register(t, "Ada@Example.com", constants.RoleClient)
	if user.Email != "ada@example.com" {
		t.Fatalf("expected lowercased email, got %s", user.Email)
	}
	if user.Phone != "+2348031234567" {
		t.Fatalf("expected normalized phone, got %s", user.Phone)
	}
	if _, err := fx.auth.Register(RegisterInput{FullName: "Ada", Email: "ada@example.com", Phone: "08031234567", Password: "secret123", Role: constants.RoleClient}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestLoginAndToken(t *testing.T) {
	fx := setupServiceTest(t)
	user := fx.register(t, "ada@example.com", constants.RoleClient)

	if _, err := fx.auth.Login("ada@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	result, err := fx.auth.Login(" ADA@example.com ", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.TokenType != "bearer" || result.AccessToken == "" {
		t.Fatalf("unexpected auth result: %+v", result)
	}
	claims, err := fx.auth.ParseJWT(result.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != constants.RoleClient || claims.Email != "ada@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := fx.auth.ParseJWT(result.AccessToken + "x"); err == nil {
		t.Fatalf("tampered token should fail")
	}
}

func TestDeactivatedUserCannotLogin(t *testing.T) {
	fx := setupServiceTest(t)
	admin := fx.createAdmin(t)
	user := fx.register(t, "ada@example.com", constants.RoleClient)

	if err := fx.admin.SetUserStatus(context.Background(), admin.ID, admin.ID, false); !errors.Is(err, ErrCannotDeactivateSelf) {
		t.Fatalf("expected ErrCannotDeactivateSelf, got %v", err)
	}
	if err := fx.admin.SetUserStatus(context.Background(), admin.ID, user.ID, false); err != nil {
		t.Fatalf("deactivate user failed: %v", err)
	}
	if _, err := fx.auth.Login("ada@example.com", "secret123"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}
	state, err := fx.auth.ResolveAuthState(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("resolve auth state failed: %v", err)
	}
	if state.IsActive {
		t.Fatalf("auth state should reflect deactivation")
	}
	if err := fx.admin.SetUserStatus(context.Background(), admin.ID, 9999, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestCreateOrderDecrementsStockAndNotifiesVendors(t *testing.T) {
	fx := setupServiceTest(t)
	client := fx.register(t, "ada@example.com", constants.RoleClient)
	vendor := fx.register(t, "vendor@example.com", constants.RoleVendor)
	pad := fx.createPart(t, vendor, "Brake Pad", 5000, 5)
	filter := fx.createPart(t, vendor, "Oil Filter", 1500, 2)

	result, err := fx.orders.Create(context.Background(), orderInput(client,
		CreateOrderItem{PartID: pad.ID, Quantity: 1},
		CreateOrderItem{PartID: filter.ID, Quantity: 1},
		CreateOrderItem{PartID: pad.ID, Quantity: 1},
	))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	order := result.Order
	if !order.TotalAmount.Decimal.Equal(decimal.NewFromInt(11500)) {
		t.Fatalf("expected total 11500, got %s", order.TotalAmount.String())
	}
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("unexpected initial state: %s/%s", order.Status, order.PaymentStatus)
	}
	if order.DeliveryPhone != "+2348031234567" {
		t.Fatalf("expected normalized delivery phone, got %s", order.DeliveryPhone)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected merged items, got %d", len(order.Items))
	}
	if got := fx.stock(t, pad.ID); got != 3 {
		t.Fatalf("expected pad stock 3, got %d", got)
	}

	notes, err := fx.notifications.List(vendor.ID)
	if err != nil {
		t.Fatalf("list vendor notifications failed: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "New Order" {
		t.Fatalf("expected one vendor notification, got %+v", notes)
	}
	if types := fx.publisher.types(); len(types) != 1 || types[0] != constants.OrderEventCreated {
		t.Fatalf("expected order.created event, got %v", types)
	}
	if fx.recorder.counts[constants.MetricOrdersCreated] != 1 {
		t.Fatalf("expected orders created metric, got %v", fx.recorder.counts)
	}
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	fx := setupServiceTest(t)
	client := fx.register(t, "ada@example.com", constants.RoleClient)
	vendor := fx.register(t, "vendor@example.com", constants.RoleVendor)
	pad := fx.createPart(t, vendor, "Brake Pad", 5000, 5)
	filter := fx.createPart(t, vendor, "Oil Filter", 1500, 1)

	_, err := fx.orders.Create(context.Background(), orderInput(client,
		CreateOrderItem{PartID: pad.ID, Quantity: 2},
		CreateOrderItem{PartID: filter.ID, Quantity: 3},
	))
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if !strings.Contains(err.Error(), "Oil Filter") {
		t.Fatalf("expected part name in error, got %v", err)
	}
	if got := fx.stock(t, pad.ID); got != 5 {
		t.Fatalf("stock must be rolled back, got %d", got)
	}
	orders, _ := fx.orders.List(actorOf(client), "")
	if len(orders) != 0 {
		t.Fatalf("no order should be created, got %d", len(orders))
	}
}

func TestCreateOrderValidation(t *testing.T) {
	fx := setupServiceTest(t)
	client := fx.register(t, "ada@example.com", constants.RoleClient)

	if _, err := fx.orders.Create(context.Background(), orderInput(client)); !errors.Is(err, ErrOrderEmpty) {
		t.Fatalf("expected ErrOrderEmpty, got %v", err)
	}
	input := orderInput(client, CreateOrderItem{PartID: 1, Quantity: 1})
	input.DeliveryPhone = "12345"
	if _, err := fx.orders.Create(context.Background(), input); !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
	input = orderInput(client, CreateOrderItem{PartID: 1, Quantity: 0})
	if _, err := fx.orders.Create(context.Background(), input); !errors.Is(err, ErrOrderItemInvalid) {
		t.Fatalf("expected ErrOrderItemInvalid, got %v", err)
	}
}

func TestCreateOrderIdempotencyReplay(t *testing.T) {
	fx := setupServiceTest(t)
	client := fx.register(t, "ada@example.com", constants.RoleClient)
	vendor := fx.register(t, "vendor@example.com", constants.RoleVendor)
	pad := fx.createPart(t, vendor, "Brake Pad", 5000, 5)

	input := orderInput(client, CreateOrderItem{PartID: pad.ID, Quantity: 2})
	input.IdempotencyKey = "checkout-1"
	first, err := fx.orders.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := fx.orders.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("replayed create failed: %v", err)
	}
	if !second.Replayed || second.Order.ID != first.Order.ID {
		t.Fatalf("expected replay of order %d, got %+v", first.Order.ID, second)
	}
	if got := fx.stock(t, pad.ID); got != 3 {
		t.Fatalf("stock must be decremented once, got %d", got)
	}

	failing := orderInput(client, CreateOrderItem{PartID: pad.ID, Quantity: 50})
	failing.IdempotencyKey = "checkout-2"
	if _, err := fx.orders.Create(context.Background(), failing); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	failing.Items = []CreateOrderItem{{PartID: pad.ID, Quantity: 1}}
	retried, err := fx.orders.Create(context.Background(), failing)
	if err != nil {
		t.Fatalf("retry after failure should be allowed: %v", err)
	}
	if retried.Replayed {
		t.Fatalf("retry after failure must create a new order")
	}
}

func TestOrderVisibilityAndActions(t *testing.T) {
	fx := setupServiceTest(t)
	client := fx.register(t, "ada@example.com", constants.RoleClient)
	other := fx.register(t, "bola@example.com", constants.RoleClient)
	vendor := fx.register(t, "vendor@example.com", constants.RoleVendor)
	pad := fx.createPart(t, vendor, "Brake Pad", 5000, 5)
	result, err := fx.orders.Create(context.Background(), orderInput(client, CreateOrderItem{PartID: pad.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := fx.orders.Get(actorOf(other), result.Order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("other client must not see the order, got %v", err)
	}
	detail, err := fx.orders.Get(actorOf(client), result.Order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if !orderflow.Allows(detail.Actions, orderflow.ActionPay) || orderflow.Allows(detail.Actions, orderflow.ActionConfirm) {
		t.Fatalf("unexpected client actions: %+v", detail.Actions)
	}
	vendorDetail, err := fx.orders.Get(actorOf(vendor), result.Order.ID)
	if err != nil {
		t.Fatalf("vendor get order failed: %v", err)
	}
	if !orderflow.Allows(vendorDetail.Actions, orderflow.ActionConfirm) {
		t.Fatalf("vendor should be able to confirm, got %+v", vendorDetail.Actions)
	}
	if _, err := fx.orders.List(actorOf(client), "shipped"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for unknown status, got %v", err)
	}
}

func TestUpdateStatusFollowsStateMachine(t *testing.T) {
	fx := setupServiceTest(t)
	admin := fx.createAdmin(t)
	client := fx.register(t, "ada@example.com", constants.RoleClient)
	vendor := fx.register(t, "vendor@example.com", constants.RoleVendor)
	pad := fx.createPart(t, vendor, "Brake Pad", 5000, 5)
	result, err := fx.orders.Create(context.Background(), orderInput(client, CreateOrderItem{PartID: pad.ID, Quantity: 2}))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	orderID := result.Order.ID

	_, err = fx.orders.UpdateStatus(context.Background(), actorOf(client), orderID, constants.OrderStatusConfirmed)
	var invalid *orderflow.InvalidTransitionError
	if !errors.As(err, &invalid) || !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}

	detail, err := fx.orders.UpdateStatus(context.Background(), actorOf(vendor), orderID, constants.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("vendor confirm failed: %v", err)
	}
	if detail.Status != constants.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", detail.Status)
	}

	detail, err = fx.orders.UpdateStatus(context.Background(), actorOf(admin), orderID, constants.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}
	if detail.Status != constants.OrderStatusCancelled || detail.CancelledAt == nil {
		t.Fatalf("unexpected cancelled order: %+v", detail.Order)
	}
	if len(detail.Actions) != 0 {
		t.Fatalf("terminal order should expose no actions, got %+v", detail.Actions)
	}
	if got := fx.stock(t, pad.ID); got != 5 {
		t.Fatalf("cancel should restore stock, got %d", got)
	}
	if _, err := fx.orders.UpdateStatus(context.Background(), actorOf(admin), orderID, constants.OrderStatusConfirmed); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("terminal order must reject transitions, got %v", err)
	}

	notes, _ := fx.notifications.List(client.ID)
	if len(notes) != 2 {
		t.Fatalf("expected 2 client notifications, got %d", len(notes))
	}
	if fx.recorder.counts[constants.MetricOrdersCancelled] != 1 {
		t.Fatalf("expected cancellation metric, got %v", fx.recorder.counts)
	}
}

func TestMockPaymentAndAssignFlow(t *testing.T) {
	fx := setupServiceTest(t)
	admin := fx.createAdmin(t)
	client := fx.register(t, "ada@example.com", constants.RoleClient)
	vendor := fx.register(t, "vendor@example.com", constants.RoleVendor)
	first := fx.register(t, "rider1@example.com", constants.RoleDispatcher)
	second := fx.register(t, "rider2@example.com", constants.RoleDispatcher)
	pad := fx.createPart(t, vendor, "Brake Pad", 5000, 5)
	result, err := fx.orders.Create(context.Background(), orderInput(client, CreateOrderItem{PartID: pad.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	orderID := result.Order.ID

	if _, err := fx.payments.Initialize(context.Background(), actorOf(vendor), orderID, ""); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("only the owning client can pay, got %v", err)
	}
	init, err := fx.payments.Initialize(context.Background(), actorOf(client), orderID, "")
	if err != nil {
		t.Fatalf("initialize payment failed: %v", err)
	}
	if !init.Mock || !strings.HasPrefix(init.Reference, fmt.Sprintf("mock_%d_", orderID)) {
		t.Fatalf("unexpected mock init: %+v", init)
	}
	if !strings.HasPrefix(init.AuthorizationURL, constants.MockPaymentPath+"?reference=") {
		t.Fatalf("unexpected mock authorization url: %s", init.AuthorizationURL)
	}

	verified, err := fx.payments.Verify(context.Background(), actorOf(client), init.Reference)
	if err != nil {
		t.Fatalf("verify payment failed: %v", err)
	}
	if verified.Status != constants.PaymentStatusSuccess || verified.OrderStatus != constants.OrderStatusPaid {
		t.Fatalf("unexpected verify result: %+v", verified)
	}
	before, _ := fx.notifications.List(client.ID)
	again, err := fx.payments.Verify(context.Background(), actorOf(client), init.Reference)
	if err != nil || again.OrderStatus != constants.OrderStatusPaid {
		t.Fatalf("second verify should be idempotent, got %+v err=%v", again, err)
	}
	after, _ := fx.notifications.List(client.ID)
	if len(after) != len(before) {
		t.Fatalf("second verify must not notify again: %d -> %d", len(before), len(after))
	}
	if fx.recorder.counts[constants.MetricPaymentsVerified] != 1 {
		t.Fatalf("expected one payment metric, got %v", fx.recorder.counts)
	}
	if _, err := fx.payments.Initialize(context.Background(), actorOf(client), orderID, ""); !errors.Is(err, ErrOrderAlreadyPaid) {
		t.Fatalf("expected ErrOrderAlreadyPaid, got %v", err)
	}

	if _, err := fx.orders.Assign(context.Background(), actorOf(admin), orderID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("admin assign must be rejected, got %v", err)
	}
	detail, err := fx.orders.Assign(context.Background(), actorOf(first), orderID)
	if err != nil {
		t.Fatalf("first dispatcher assign failed: %v", err)
	}
	if detail.Status != constants.OrderStatusAssigned || detail.DispatcherName != first.FullName {
		t.Fatalf("unexpected assigned order: %+v", detail.Order)
	}
	if !orderflow.Allows(detail.Actions, orderflow.ActionPickUp) {
		t.Fatalf("assigned dispatcher should be able to pick up, got %+v", detail.Actions)
	}
	if _, err := fx.orders.Assign(context.Background(), actorOf(second), orderID); !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}
	if _, err := fx.orders.UpdateStatus(context.Background(), actorOf(second), orderID, constants.OrderStatusPickedUp); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("other dispatcher must not see the order, got %v", err)
	}
	for _, next := range []string{constants.OrderStatusPickedUp, constants.OrderStatusInTransit, constants.OrderStatusDelivered} {
		detail, err = fx.orders.UpdateStatus(context.Background(), actorOf(first), orderID, next)
		if err != nil {
			t.Fatalf("dispatcher move to %s failed: %v", next, err)
		}
	}
	if detail.Status != constants.OrderStatusDelivered || detail.DeliveredAt == nil {
		t.Fatalf("unexpected delivered order: %+v", detail.Order)
	}

	stats, err := fx.admin.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PaidOrders != 1 || !stats.Revenue.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPartOwnership(t *testing.T) {
	fx := setupServiceTest(t)
	admin := fx.createAdmin(t)
	owner := fx.register(t, "vendor@example.com", constants.RoleVendor)
	rival := fx.register(t, "rival@example.com", constants.RoleVendor)
	client := fx.register(t, "ada@example.com", constants.RoleClient)
	part := fx.createPart(t, owner, "Brake Pad", 5000, 5)

	if part.VendorName != "Ikeja Motors" {
		t.Fatalf("expected business name as vendor name, got %s", part.VendorName)
	}
	if _, err := fx.parts.Create(actorOf(client), PartInput{Name: "X", Price: decimal.NewFromInt(1)}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("client must not create parts, got %v", err)
	}
	price := decimal.NewFromInt(4500)
	if _, err := fx.parts.Update(actorOf(rival), part.ID, PartPatch{Price: &price}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("rival vendor must not update, got %v", err)
	}
	updated, err := fx.parts.Update(actorOf(owner), part.ID, PartPatch{Price: &price})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if !updated.Price.Decimal.Equal(price) {
		t.Fatalf("expected price 4500, got %s", updated.Price.String())
	}
	if err := fx.parts.Delete(actorOf(admin), part.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if _, err := fx.parts.Get(part.ID); !errors.Is(err, ErrPartNotFound) {
		t.Fatalf("expected ErrPartNotFound after delete, got %v", err)
	}
}

func TestNotificationMarkRead(t *testing.T) {
	fx := setupServiceTest(t)
	note := &models.Notification{UserID: 1, Title: "t", Message: "m", Type: constants.NotificationTypeSystem, CreatedAt: time.Now()}
	if err := fx.db.Create(note).Error; err != nil {
		t.Fatalf("create notification failed: %v", err)
	}
	if err := fx.notifications.MarkRead(2, note.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign notification, got %v", err)
	}
	if err := fx.notifications.MarkRead(1, note.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	count, _ := fx.notifications.UnreadCount(1)
	if count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}
}
