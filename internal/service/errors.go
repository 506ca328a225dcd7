package service

import (
	"errors"

	"github.com/partshub/internal/orderflow"
	"github.com/partshub/internal/repository"
)

// 通用错误
var (
	ErrNotFound          = errors.New("resource not found")
	ErrForbidden         = errors.New("permission denied")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidTransition = orderflow.ErrInvalidTransition
)

// 认证与用户
var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserDisabled         = errors.New("account is deactivated")
	ErrEmailExists          = errors.New("email already registered")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidPhone         = errors.New("invalid phone number")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrRoleNotAllowed       = errors.New("role cannot self-register")
	ErrBusinessNameRequired = errors.New("business name is required for vendors")
	ErrCannotDeactivateSelf = errors.New("admin cannot deactivate own account")
	ErrInvalidToken         = errors.New("invalid token")
)

// 配件
var (
	ErrPartNotFound      = errors.New("part not found")
	ErrPartInvalid       = errors.New("invalid part data")
	ErrInsufficientStock = repository.ErrInsufficientStock
)

// 订单
var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderEmpty            = errors.New("order has no items")
	ErrOrderItemInvalid      = errors.New("invalid order item")
	ErrOrderDeliveryInvalid  = errors.New("delivery address and phone are required")
	ErrAlreadyAssigned       = errors.New("order already assigned")
	ErrOrderConflict         = errors.New("order changed concurrently, reload and retry")
	ErrIdempotencyInProgress = errors.New("order request with this idempotency key is in progress")
	ErrIdempotencyKeyInvalid = errors.New("invalid idempotency key")
	ErrOrderNotPayable       = errors.New("order cannot be paid")
	ErrOrderAlreadyPaid      = errors.New("order already paid")
)

// 支付
var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPaymentProvider = errors.New("payment provider error")
	ErrPaymentFailed   = errors.New("payment not successful")
)

// 位置
var (
	ErrInvalidLocation = errors.New("invalid coordinates")
)
