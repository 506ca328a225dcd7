package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/partshub/internal/constants"
	"github.com/partshub/internal/events"
	"github.com/partshub/internal/idempotency"
	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/models"
	"github.com/partshub/internal/orderflow"
	"github.com/partshub/internal/queue"
	"github.com/partshub/internal/repository"
	"github.com/partshub/internal/validation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	partRepo    repository.PartRepository
	userRepo    repository.UserRepository
	idempotency idempotency.Store
	dispatcher  *Dispatcher
	listLimit   int
}

// NewOrderService 创建订单服务
func NewOrderService(db *gorm.DB, orderRepo repository.OrderRepository, partRepo repository.PartRepository, userRepo repository.UserRepository, store idempotency.Store, dispatcher *Dispatcher, listLimit int) *OrderService {
	if store == nil {
		store = idempotency.NopStore{}
	}
	return &OrderService{
		db:          db,
		orderRepo:   orderRepo,
		partRepo:    partRepo,
		userRepo:    userRepo,
		idempotency: store,
		dispatcher:  dispatcher,
		listLimit:   listLimit,
	}
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	ClientID        uint
	IdempotencyKey  string
	Items           []CreateOrderItem
	DeliveryAddress string
	DeliveryPhone   string
	Notes           string
}

// CreateOrderItem 创建订单项输入
type CreateOrderItem struct {
	PartID   uint `json:"part_id"`
	Quantity int  `json:"quantity"`
}

// CreateOrderResult 创建订单结果
type CreateOrderResult struct {
	Order    *models.Order
	Replayed bool // 命中幂等键，返回的是首次创建的订单
}

// OrderDetail 订单详情及当前用户可执行的操作
type OrderDetail struct {
	models.Order
	Actions []orderflow.Action `json:"actions"`
}

// Create 客户下单：校验库存、扣减库存并创建订单
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	items, err := mergeCreateOrderItems(input.Items)
	if err != nil {
		return nil, err
	}
	address := strings.TrimSpace(input.DeliveryAddress)
	if address == "" || strings.TrimSpace(input.DeliveryPhone) == "" {
		return nil, ErrOrderDeliveryInvalid
	}
	if !validation.IsNigerianPhone(input.DeliveryPhone) {
		return nil, ErrInvalidPhone
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	scope := idempotencyScope(input.ClientID)
	if key != "" {
		record, created, err := s.idempotency.Begin(ctx, key, scope)
		if err != nil {
			if errors.Is(err, idempotency.ErrInvalidKey) {
				return nil, ErrIdempotencyKeyInvalid
			}
			return nil, err
		}
		if !created {
			return s.replay(record)
		}
	}

	order, err := s.createOrder(input, items, address)
	if err != nil {
		if key != "" {
			if failErr := s.idempotency.Fail(ctx, key, scope, err.Error()); failErr != nil {
				logger.Warnw("order_idempotency_fail_mark_failed", "client_id", input.ClientID, "error", failErr)
			}
		}
		return nil, err
	}
	if key != "" {
		if err := s.idempotency.Complete(ctx, key, scope, order.ID); err != nil {
			logger.Warnw("order_idempotency_complete_failed", "order_id", order.ID, "error", err)
		}
	}

	logger.Infow("order_created",
		"order_id", order.ID,
		"client_id", order.ClientID,
		"total_amount", order.TotalAmount.String(),
		"items", len(order.Items),
	)
	s.dispatcher.Notify(ctx, queue.NotificationPayload{
		UserIDs: order.VendorIDs(),
		Title:   "New Order",
		Message: fmt.Sprintf("You have a new order #%d from %s", order.ID, order.ClientName),
		Type:    constants.NotificationTypeOrder,
		OrderID: order.ID,
	})
	event := events.NewEvent(constants.OrderEventCreated, order.ID)
	event.Status = order.Status
	event.ActorID = order.ClientID
	event.ActorRole = constants.RoleClient
	s.dispatcher.Emit(ctx, event, constants.MetricOrdersCreated)
	return &CreateOrderResult{Order: order}, nil
}

func (s *OrderService) replay(record *idempotency.Record) (*CreateOrderResult, error) {
	if record == nil || !record.Done() {
		return nil, ErrIdempotencyInProgress
	}
	order, err := s.orderRepo.GetByID(record.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return &CreateOrderResult{Order: order, Replayed: true}, nil
}

func (s *OrderService) createOrder(input CreateOrderInput, items []CreateOrderItem, address string) (*models.Order, error) {
	client, err := s.userRepo.GetByID(input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrNotFound
	}

	order := &models.Order{
		ClientID:        client.ID,
		ClientName:      client.FullName,
		DeliveryAddress: address,
		DeliveryPhone:   validation.NormalizePhone(input.DeliveryPhone),
		Notes:           strings.TrimSpace(input.Notes),
		Status:          constants.OrderStatusPending,
		PaymentStatus:   constants.PaymentStatusPending,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		partRepo := s.partRepo.WithTx(tx)
		orderItems := make([]models.OrderItem, 0, len(items))
		total := decimal.Zero
		for _, item := range items {
			part, err := partRepo.GetByIDForUpdate(item.PartID)
			if err != nil {
				return err
			}
			if part == nil {
				return fmt.Errorf("%w: part %d", ErrPartNotFound, item.PartID)
			}
			if !part.IsAvailable || part.Quantity < item.Quantity {
				return fmt.Errorf("%w for %s", ErrInsufficientStock, part.Name)
			}
			if err := partRepo.DecrementStock(part.ID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return fmt.Errorf("%w for %s", ErrInsufficientStock, part.Name)
				}
				return err
			}
			lineTotal := part.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(lineTotal)
			orderItems = append(orderItems, models.OrderItem{
				PartID:     part.ID,
				PartName:   part.Name,
				PartSKU:    part.SKU,
				VendorID:   part.VendorID,
				VendorName: part.VendorName,
				Quantity:   item.Quantity,
				UnitPrice:  part.Price,
				TotalPrice: models.NewMoneyFromDecimal(lineTotal),
			})
		}
		order.TotalAmount = models.NewMoneyFromDecimal(total)
		return s.orderRepo.WithTx(tx).Create(order, orderItems)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// List 按角色范围列出订单
func (s *OrderService) List(actor orderflow.Actor, status string) ([]models.Order, error) {
	status = strings.TrimSpace(status)
	if status != "" {
		parsed, err := orderflow.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		status = string(parsed)
	}
	return s.orderRepo.List(repository.OrderListFilter{
		Scope:  scopeFor(actor),
		Status: status,
		Limit:  s.listLimit,
	})
}

// Get 获取订单详情，不可见的订单视为不存在
func (s *OrderService) Get(actor orderflow.Actor, orderID uint) (*OrderDetail, error) {
	order, err := s.loadVisible(actor, orderID)
	if err != nil {
		return nil, err
	}
	return buildOrderDetail(actor, order), nil
}

func (s *OrderService) loadVisible(actor orderflow.Actor, orderID uint) (*models.Order, error) {
	visible, err := s.orderRepo.CanView(orderID, scopeFor(actor))
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// UpdateStatus 按状态机推进订单
func (s *OrderService) UpdateStatus(ctx context.Context, actor orderflow.Actor, orderID uint, newStatus string) (*OrderDetail, error) {
	next, err := orderflow.ParseStatus(newStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if next == orderflow.StatusAssigned {
		return s.Assign(ctx, actor, orderID)
	}

	order, err := s.loadVisible(actor, orderID)
	if err != nil {
		return nil, err
	}
	effect, err := orderflow.Transition(toOrderView(order), actor, next)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{}
	switch effect.To {
	case orderflow.StatusCancelled:
		updates["cancelled_at"] = now
	case orderflow.StatusDelivered:
		updates["delivered_at"] = now
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.WithTx(tx).TransitionStatus(order.ID, string(effect.From), string(effect.To), updates)
		if err != nil {
			return err
		}
		if !ok {
			return ErrOrderConflict
		}
		if effect.To != orderflow.StatusCancelled {
			return nil
		}
		partRepo := s.partRepo.WithTx(tx)
		for _, item := range order.Items {
			if err := partRepo.RestoreStock(item.PartID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("order_status_changed",
		"order_id", order.ID,
		"from", effect.From,
		"to", effect.To,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
	)
	s.dispatcher.Notify(ctx, queue.NotificationPayload{
		UserIDs: []uint{order.ClientID},
		Title:   "Order Update",
		Message: fmt.Sprintf("Your order #%d status changed to %s", order.ID, effect.To),
		Type:    constants.NotificationTypeOrder,
		OrderID: order.ID,
	})
	metric := ""
	if effect.To == orderflow.StatusCancelled {
		metric = constants.MetricOrdersCancelled
	}
	s.dispatcher.Emit(ctx, transitionEvent(constants.OrderEventStatusChanged, order.ID, effect, actor), metric)
	return s.reload(actor, order.ID)
}

// Assign 配送员接单（paid -> assigned），并发接单只有一个成功
// 已被他人接走的订单对当前配送员不可见，这里直接按 ID 读取以便返回明确的冲突
func (s *OrderService) Assign(ctx context.Context, actor orderflow.Actor, orderID uint) (*OrderDetail, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	view := toOrderView(order)
	effect, err := orderflow.Transition(view, actor, orderflow.StatusAssigned)
	if err != nil {
		if actor.Role == orderflow.RoleDispatcher && view.Assigned() {
			return nil, ErrAlreadyAssigned
		}
		return nil, err
	}

	dispatcher, err := s.userRepo.GetByID(actor.ID)
	if err != nil {
		return nil, err
	}
	if dispatcher == nil {
		return nil, ErrNotFound
	}
	ok, err := s.orderRepo.Assign(order.ID, effect.DispatcherID, dispatcher.FullName, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyAssigned
	}

	logger.Infow("order_assigned", "order_id", order.ID, "dispatcher_id", actor.ID)
	s.dispatcher.Notify(ctx, queue.NotificationPayload{
		UserIDs: []uint{order.ClientID},
		Title:   "Dispatcher Assigned",
		Message: fmt.Sprintf("Dispatcher %s has been assigned to your order #%d", dispatcher.FullName, order.ID),
		Type:    constants.NotificationTypeAssignment,
		OrderID: order.ID,
	})
	s.dispatcher.Emit(ctx, transitionEvent(constants.OrderEventAssigned, order.ID, effect, actor), "")
	return s.reload(actor, order.ID)
}

func (s *OrderService) reload(actor orderflow.Actor, orderID uint) (*OrderDetail, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return buildOrderDetail(actor, order), nil
}

// mergeCreateOrderItems 合并重复配件并校验数量
func mergeCreateOrderItems(items []CreateOrderItem) ([]CreateOrderItem, error) {
	if len(items) == 0 {
		return nil, ErrOrderEmpty
	}
	quantities := make(map[uint]int, len(items))
	order := make([]uint, 0, len(items))
	for _, item := range items {
		if item.PartID == 0 || item.Quantity <= 0 {
			return nil, ErrOrderItemInvalid
		}
		if _, ok := quantities[item.PartID]; !ok {
			order = append(order, item.PartID)
		}
		quantities[item.PartID] += item.Quantity
	}
	// 按配件 ID 加锁，避免并发下单时互相等待
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	merged := make([]CreateOrderItem, 0, len(order))
	for _, id := range order {
		merged = append(merged, CreateOrderItem{PartID: id, Quantity: quantities[id]})
	}
	return merged, nil
}

func idempotencyScope(clientID uint) string {
	return fmt.Sprintf("orders:user:%d", clientID)
}

func scopeFor(actor orderflow.Actor) repository.OrderScope {
	return repository.OrderScope{Role: string(actor.Role), UserID: actor.ID}
}

func toOrderView(order *models.Order) orderflow.OrderView {
	return orderflow.OrderView{
		ID:            order.ID,
		ClientID:      order.ClientID,
		Status:        orderflow.Status(order.Status),
		PaymentStatus: order.PaymentStatus,
		DispatcherID:  order.DispatcherID,
		VendorIDs:     order.VendorIDs(),
	}
}

func buildOrderDetail(actor orderflow.Actor, order *models.Order) *OrderDetail {
	return &OrderDetail{
		Order:   *order,
		Actions: orderflow.AvailableActions(actor, toOrderView(order)),
	}
}

func transitionEvent(eventType string, orderID uint, effect orderflow.Effect, actor orderflow.Actor) events.Event {
	event := events.NewEvent(eventType, orderID)
	event.FromStatus = string(effect.From)
	event.Status = string(effect.To)
	event.ActorID = actor.ID
	event.ActorRole = string(actor.Role)
	return event
}
