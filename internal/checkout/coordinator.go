// Package checkout 把购物车转换为订单并驱动支付初始化。
package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/partshub/internal/cart"
	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/validation"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Options 结算配置
type Options struct {
	// Email 支付初始化使用的登录用户邮箱
	Email     string
	Validator *validatorv10.Validate
	NewKey    func() string
}

// pendingOrder 已提交但未完成支付初始化的订单，用于重试时复用
type pendingOrder struct {
	fingerprint    string
	idempotencyKey string
	order          *OrderRef
}

// Coordinator 结算协调器
type Coordinator struct {
	backend  Backend
	cart     *cart.Store
	email    string
	validate *validatorv10.Validate
	newKey   func() string

	inFlight atomic.Bool

	mu      sync.Mutex
	state   State
	lastErr error
	pending *pendingOrder
}

// NewCoordinator 创建结算协调器
func NewCoordinator(backend Backend, store *cart.Store, opts Options) *Coordinator {
	c := &Coordinator{
		backend:  backend,
		cart:     store,
		email:    strings.TrimSpace(opts.Email),
		validate: opts.Validator,
		newKey:   opts.NewKey,
		state:    StateIdle,
	}
	if c.validate == nil {
		c.validate = validation.Default()
	}
	if c.newKey == nil {
		c.newKey = uuid.NewString
	}
	return c
}

// State 当前状态
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError 最近一次失败原因
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// InFlight 是否有结算正在进行（界面据此禁用下单按钮）
func (c *Coordinator) InFlight() bool {
	return c.inFlight.Load()
}

// Reset 回到 idle；保留待复用的订单
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	c.lastErr = nil
}

// Checkout 执行一次结算
func (c *Coordinator) Checkout(ctx context.Context, details Details) (Result, error) {
	if err := c.precheck(details); err != nil {
		return Result{}, err
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrCheckoutInProgress
	}
	defer c.inFlight.Store(false)

	items := c.cart.Items()
	fingerprint := fingerprintOf(items, details)
	pending := c.pendingFor(fingerprint)

	c.setState(StateSubmittingOrder, nil)
	reused := pending.order != nil
	var order OrderRef
	if reused {
		order = *pending.order
		logger.Infow("checkout_reuse_pending_order", "order_id", order.ID)
	} else {
		created, err := c.backend.CreateOrder(ctx, buildRequest(items, details), pending.idempotencyKey)
		if err != nil {
			return Result{}, c.fail(err)
		}
		order = created
		c.rememberOrder(fingerprint, order)
	}

	c.setState(StateAwaitingPaymentInit, nil)
	payment, err := c.backend.InitializePayment(ctx, order.ID, c.email)
	if err != nil {
		return Result{}, c.fail(err)
	}
	c.forgetPending()

	result := Result{Order: order, Payment: payment, Reused: reused}
	if !payment.Internal() {
		result.RedirectURL = payment.AuthorizationURL
		c.setState(StateRedirecting, nil)
		return result, nil
	}

	if err := c.backend.VerifyPayment(ctx, payment.Reference); err != nil {
		logger.Warnw("checkout_internal_verify_failed", "order_id", order.ID, "reference", payment.Reference, "error", err)
		result.VerifyErr = err
	}
	if err := c.cart.Clear(ctx); err != nil {
		logger.Warnw("checkout_cart_clear_failed", "order_id", order.ID, "error", err)
	}
	result.Confirmed = true
	c.setState(StateConfirmed, result.VerifyErr)
	return result, nil
}

func (c *Coordinator) precheck(details Details) error {
	if c.cart == nil || c.cart.IsEmpty() {
		return &ValidationError{Field: "cart", Message: "cart is empty"}
	}
	if err := c.validate.Struct(details); err != nil {
		fields := validation.FieldErrors(err)
		field := "details"
		for _, name := range []string{"Address", "Phone"} {
			if _, ok := fields[name]; ok {
				field = strings.ToLower(name)
				break
			}
		}
		return &ValidationError{Field: field, Message: validation.FirstMessage(err)}
	}
	return nil
}

// pendingFor 取出与当前购物车匹配的待复用记录；购物车变化时丢弃旧记录并生成新的幂等键
func (c *Coordinator) pendingFor(fingerprint string) pendingOrder {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil && c.pending.fingerprint == fingerprint {
		return *c.pending
	}
	if c.pending != nil && c.pending.order != nil {
		logger.Infow("checkout_pending_order_dropped", "order_id", c.pending.order.ID)
	}
	c.pending = &pendingOrder{fingerprint: fingerprint, idempotencyKey: c.newKey()}
	return *c.pending
}

func (c *Coordinator) rememberOrder(fingerprint string, order OrderRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil || c.pending.fingerprint != fingerprint {
		return
	}
	stored := order
	c.pending.order = &stored
}

func (c *Coordinator) forgetPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

func (c *Coordinator) setState(state State, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.lastErr = err
}

func (c *Coordinator) fail(err error) error {
	c.setState(StateFailed, err)
	logger.Warnw("checkout_failed", "error", err)
	return err
}

func buildRequest(items []cart.Item, details Details) OrderRequest {
	lines := make([]OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderLine{PartID: item.Part.ID, Quantity: item.Quantity})
	}
	return OrderRequest{
		Items:           lines,
		DeliveryAddress: strings.TrimSpace(details.Address),
		DeliveryPhone:   validation.NormalizePhone(details.Phone),
		Notes:           strings.TrimSpace(details.Notes),
	}
}

func fingerprintOf(items []cart.Item, details Details) string {
	parts := make([]string, 0, len(items)+3)
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%d:%d", item.Part.ID, item.Quantity))
	}
	sort.Strings(parts)
	parts = append(parts,
		strings.TrimSpace(details.Address),
		validation.NormalizePhone(details.Phone),
		strings.TrimSpace(details.Notes),
	)
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
