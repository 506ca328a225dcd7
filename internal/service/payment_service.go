package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/partshub/internal/config"
	"github.com/partshub/internal/constants"
	"github.com/partshub/internal/events"
	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/models"
	"github.com/partshub/internal/orderflow"
	"github.com/partshub/internal/payment/paystack"
	"github.com/partshub/internal/queue"
	"github.com/partshub/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	paystackEventChargeSuccess = "charge.success"
	paymentApplyAttempts       = 3
)

// PaymentGateway 第三方支付网关
type PaymentGateway interface {
	Initialize(ctx context.Context, input paystack.InitializeInput) (*paystack.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error)
	ParseWebhook(headers http.Header, body []byte) (*paystack.WebhookEvent, error)
}

type paystackGateway struct {
	cfg *paystack.Config
}

// NewPaystackGateway 基于配置创建 Paystack 网关
func NewPaystackGateway(cfg config.PaystackConfig) PaymentGateway {
	return &paystackGateway{cfg: &paystack.Config{
		SecretKey:   cfg.SecretKey,
		BaseURL:     cfg.BaseURL,
		CallbackURL: cfg.CallbackURL,
		Timeout:     time.Duration(cfg.TimeoutMS) * time.Millisecond,
	}}
}

func (g *paystackGateway) Initialize(ctx context.Context, input paystack.InitializeInput) (*paystack.InitializeResult, error) {
	return paystack.Initialize(ctx, g.cfg, input)
}

func (g *paystackGateway) Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
	return paystack.Verify(ctx, g.cfg, reference)
}

func (g *paystackGateway) ParseWebhook(headers http.Header, body []byte) (*paystack.WebhookEvent, error) {
	return paystack.VerifyAndParseWebhook(g.cfg, headers, body)
}

// PaymentService 支付服务
type PaymentService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	gateway     PaymentGateway // nil 表示模拟支付
	dispatcher  *Dispatcher
	currency    string
}

// NewPaymentService 创建支付服务；gateway 为 nil 时进入模拟支付模式
func NewPaymentService(db *gorm.DB, orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, userRepo repository.UserRepository, gateway PaymentGateway, dispatcher *Dispatcher, currency string) *PaymentService {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	return &PaymentService{
		db:          db,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		dispatcher:  dispatcher,
		currency:    currency,
	}
}

// InitializeResult 支付初始化结果
type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	AccessCode       string `json:"access_code,omitempty"`
	Mock             bool   `json:"mock"`
}

// VerifyResult 支付核验结果
type VerifyResult struct {
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	OrderID       uint   `json:"order_id"`
	OrderStatus   string `json:"order_status"`
	PaymentStatus string `json:"payment_status"`
}

// MockMode 是否为模拟支付
func (s *PaymentService) MockMode() bool {
	return s.gateway == nil
}

// Initialize 为客户的订单发起支付
func (s *PaymentService) Initialize(ctx context.Context, actor orderflow.Actor, orderID uint, email string) (*InitializeResult, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || actor.Role != orderflow.RoleClient || order.ClientID != actor.ID {
		return nil, ErrOrderNotFound
	}
	if order.PaymentStatus == constants.PaymentStatusSuccess {
		return nil, ErrOrderAlreadyPaid
	}
	if orderflow.Status(order.Status) == orderflow.StatusCancelled {
		return nil, ErrOrderNotPayable
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		user, err := s.userRepo.GetByID(actor.ID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrNotFound
		}
		email = user.Email
	}

	payment := &models.Payment{
		OrderID:  order.ID,
		UserID:   actor.ID,
		Email:    email,
		Amount:   order.TotalAmount,
		Currency: s.currency,
		Status:   constants.PaymentStatusPending,
		Mock:     s.MockMode(),
	}
	if s.MockMode() {
		payment.Reference = fmt.Sprintf("%s%d_%s", constants.MockPaymentReferencePrefix, order.ID, shortToken(8))
		payment.AuthorizationURL = constants.MockPaymentPath + "?reference=" + url.QueryEscape(payment.Reference)
	} else {
		result, err := s.gateway.Initialize(ctx, paystack.InitializeInput{
			Email:     email,
			Amount:    order.TotalAmount.String(),
			Currency:  s.currency,
			Reference: fmt.Sprintf("ph_%d_%s", order.ID, shortToken(12)),
			Metadata: map[string]interface{}{
				"order_id": order.ID,
				"user_id":  actor.ID,
			},
		})
		if err != nil {
			logger.Warnw("payment_initialize_failed", "order_id", order.ID, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
		}
		payment.Reference = result.Reference
		payment.AuthorizationURL = result.AuthorizationURL
		payment.AccessCode = result.AccessCode
		payment.ProviderPayload = models.JSON(result.Raw)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.WithTx(tx).Create(payment); err != nil {
			return err
		}
		return s.orderRepo.WithTx(tx).SetPaymentReference(order.ID, payment.Reference)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("payment_initialized", "order_id", order.ID, "reference", payment.Reference, "mock", payment.Mock)
	return &InitializeResult{
		AuthorizationURL: payment.AuthorizationURL,
		Reference:        payment.Reference,
		AccessCode:       payment.AccessCode,
		Mock:             payment.Mock,
	}, nil
}

// Verify 核验支付；重复核验已成功的支付直接返回当前状态
func (s *PaymentService) Verify(ctx context.Context, actor orderflow.Actor, reference string) (*VerifyResult, error) {
	payment, err := s.paymentRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if actor.Role != orderflow.RoleAdmin && payment.UserID != actor.ID {
		return nil, ErrPaymentNotFound
	}
	if payment.Status == constants.PaymentStatusSuccess {
		return s.buildVerifyResult(payment.Reference, payment.OrderID, constants.PaymentStatusSuccess)
	}

	if payment.Mock {
		if err := s.applySuccess(ctx, payment, nil); err != nil {
			return nil, err
		}
		return s.buildVerifyResult(payment.Reference, payment.OrderID, constants.PaymentStatusSuccess)
	}
	if s.gateway == nil {
		return nil, fmt.Errorf("%w: gateway not configured", ErrPaymentProvider)
	}
	result, err := s.gateway.Verify(ctx, payment.Reference)
	if err != nil {
		logger.Warnw("payment_verify_failed", "reference", payment.Reference, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	if err := s.applyResult(ctx, payment, result); err != nil {
		return nil, err
	}
	return s.buildVerifyResult(payment.Reference, payment.OrderID, mapGatewayStatus(result.Status))
}

// HandleWebhook 处理 Paystack 回调
func (s *PaymentService) HandleWebhook(ctx context.Context, headers http.Header, body []byte) error {
	if s.gateway == nil {
		return fmt.Errorf("%w: gateway not configured", ErrPaymentProvider)
	}
	event, err := s.gateway.ParseWebhook(headers, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	if event.Event != paystackEventChargeSuccess {
		logger.Debugw("payment_webhook_ignored", "event", event.Event)
		return nil
	}
	payment, err := s.paymentRepo.GetByReference(event.Result.Reference)
	if err != nil {
		return err
	}
	if payment == nil {
		logger.Warnw("payment_webhook_unknown_reference", "reference", event.Result.Reference)
		return ErrPaymentNotFound
	}
	return s.applyResult(ctx, payment, &event.Result)
}

func (s *PaymentService) applyResult(ctx context.Context, payment *models.Payment, result *paystack.VerifyResult) error {
	status := mapGatewayStatus(result.Status)
	switch status {
	case constants.PaymentStatusSuccess:
		return s.applySuccess(ctx, payment, models.JSON(result.Raw))
	case constants.PaymentStatusFailed:
		if _, err := s.paymentRepo.MarkStatus(payment.ID, constants.PaymentStatusFailed, models.JSON(result.Raw), time.Now()); err != nil {
			return err
		}
		logger.Infow("payment_failed", "reference", payment.Reference, "gateway_status", result.Status)
	}
	return nil
}

// applySuccess 支付成功：记录结果并按状态机推进订单
func (s *PaymentService) applySuccess(ctx context.Context, payment *models.Payment, payload models.JSON) error {
	now := time.Now()
	var (
		applied bool
		order   *models.Order
		from    orderflow.Status
		target  orderflow.Status
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		updated, err := s.paymentRepo.WithTx(tx).MarkStatus(payment.ID, constants.PaymentStatusSuccess, payload, now)
		if err != nil {
			return err
		}
		if !updated {
			return nil
		}
		orderRepo := s.orderRepo.WithTx(tx)
		for attempt := 0; attempt < paymentApplyAttempts; attempt++ {
			order, err = orderRepo.GetByID(payment.OrderID)
			if err != nil {
				return err
			}
			if order == nil {
				return ErrOrderNotFound
			}
			from = orderflow.Status(order.Status)
			next, move := orderflow.PaymentTarget(from)
			target = next
			paidStatus := ""
			if move {
				paidStatus = string(next)
			}
			moved, markErr := orderRepo.MarkPaymentSuccess(order.ID, string(from), paidStatus, now)
			if markErr != nil {
				return markErr
			}
			if moved {
				applied = true
				return nil
			}
			// 订单状态已被并发修改，重新读取
			logger.Warnw("payment_order_status_changed", "order_id", order.ID, "reference", payment.Reference, "status", order.Status)
		}
		return ErrOrderConflict
	})
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	logger.Infow("payment_verified", "order_id", order.ID, "reference", payment.Reference, "from", from, "to", target)
	s.dispatcher.Notify(ctx, queue.NotificationPayload{
		UserIDs: []uint{order.ClientID},
		Title:   "Payment Successful",
		Message: fmt.Sprintf("Your payment for order #%d was successful", order.ID),
		Type:    constants.NotificationTypePayment,
		OrderID: order.ID,
	})
	if target == orderflow.StatusPaid && from != target {
		s.dispatcher.Notify(ctx, queue.NotificationPayload{
			UserIDs: order.VendorIDs(),
			Title:   "Order Paid",
			Message: fmt.Sprintf("Order #%d has been paid and is awaiting dispatch", order.ID),
			Type:    constants.NotificationTypePayment,
			OrderID: order.ID,
		})
	}
	event := events.NewEvent(constants.OrderEventPaid, order.ID)
	event.FromStatus = string(from)
	event.Status = string(target)
	event.ActorID = payment.UserID
	event.ActorRole = constants.RoleClient
	s.dispatcher.Emit(ctx, event, constants.MetricPaymentsVerified)
	return nil
}

func (s *PaymentService) buildVerifyResult(reference string, orderID uint, status string) (*VerifyResult, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return &VerifyResult{
		Reference:     reference,
		Status:        status,
		OrderID:       order.ID,
		OrderStatus:   order.Status,
		PaymentStatus: order.PaymentStatus,
	}, nil
}

func mapGatewayStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case paystack.StatusSuccess:
		return constants.PaymentStatusSuccess
	case paystack.StatusFailed, paystack.StatusAbandoned, "reversed":
		return constants.PaymentStatusFailed
	default:
		return constants.PaymentStatusPending
	}
}

func shortToken(n int) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(token) {
		n = len(token)
	}
	return token[:n]
}
