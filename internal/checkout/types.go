package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// State 结算流程状态
type State string

const (
	StateIdle                State = "idle"
	StateSubmittingOrder     State = "submitting_order"
	StateAwaitingPaymentInit State = "awaiting_payment_init"
	StateRedirecting         State = "redirecting"
	StateConfirmed           State = "confirmed"
	StateFailed              State = "failed"
)

// ErrCheckoutInProgress 已有结算在进行中，防止重复提交
var ErrCheckoutInProgress = errors.New("checkout already in progress")

// ValidationError 本地校验失败，不会发起任何网络请求
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Details 收货信息
type Details struct {
	Address string `validate:"notblank"`
	Phone   string `validate:"notblank,ng_phone"`
	Notes   string
}

// OrderLine 下单行，仅包含配件与数量，价格由后端决定
type OrderLine struct {
	PartID   uint `json:"part_id"`
	Quantity int  `json:"quantity"`
}

// OrderRequest 下单请求
type OrderRequest struct {
	Items           []OrderLine `json:"items"`
	DeliveryAddress string      `json:"delivery_address"`
	DeliveryPhone   string      `json:"delivery_phone"`
	Notes           string      `json:"notes,omitempty"`
}

// OrderRef 后端返回的订单摘要
type OrderRef struct {
	ID            uint
	Status        string
	PaymentStatus string
	Total         decimal.Decimal
}

// PaymentInit 支付初始化结果
type PaymentInit struct {
	AuthorizationURL string
	Reference        string
	AccessCode       string
	Mock             bool
}

// Internal 授权地址以 / 开头表示站内确认路径，无需跳转外部网关
func (p PaymentInit) Internal() bool {
	return len(p.AuthorizationURL) > 0 && p.AuthorizationURL[0] == '/'
}

// Result 结算结果
type Result struct {
	Order       OrderRef
	Payment     PaymentInit
	Confirmed   bool
	RedirectURL string
	// Reused 本次重试复用了之前已创建的订单
	Reused bool
	// VerifyErr 站内确认失败，订单支付状态需重新拉取
	VerifyErr error
}

// Backend 结算依赖的后端接口
type Backend interface {
	CreateOrder(ctx context.Context, req OrderRequest, idempotencyKey string) (OrderRef, error)
	InitializePayment(ctx context.Context, orderID uint, email string) (PaymentInit, error)
	VerifyPayment(ctx context.Context, reference string) error
}
