package constants

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPaid      = "paid"
	OrderStatusAssigned  = "assigned"
	OrderStatusPickedUp  = "picked_up"
	OrderStatusInTransit = "in_transit"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// 支付状态常量
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// 用户角色常量
const (
	RoleClient     = "client"
	RoleVendor     = "vendor"
	RoleDispatcher = "dispatcher"
	RoleAdmin      = "admin"
)

// 通知类型常量
const (
	NotificationTypeOrder      = "order"
	NotificationTypePayment    = "payment"
	NotificationTypeAssignment = "assignment"
	NotificationTypeSystem     = "system"
)

// 订单事件类型常量
const (
	OrderEventCreated       = "order.created"
	OrderEventStatusChanged = "order.status_changed"
	OrderEventAssigned      = "order.assigned"
	OrderEventPaid          = "order.paid"
)

// 指标名称常量
const (
	MetricOrdersCreated    = "OrdersCreated"
	MetricPaymentsVerified = "PaymentsVerified"
	MetricOrdersCancelled  = "OrdersCancelled"
)

// 队列常量
const (
	QueueDefault         = "default"
	QueueCritical        = "critical"
	TaskNotificationSend = "notification:send"
	TaskOrderEvent       = "order:event"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "ph"
)

// 支付常量
const (
	MockPaymentReferencePrefix = "mock_"
	MockPaymentPath            = "/payment/mock"
	DefaultCurrency            = "NGN"
)

// 幂等存储后端
const (
	IdempotencyBackendDynamoDB = "dynamodb"
	IdempotencyBackendRedis    = "redis"
	IdempotencyBackendNone     = "none"
)

// 请求头常量
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderRequestID      = "X-Request-ID"
)
