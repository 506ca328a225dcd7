package public

import (
	"strings"

	"github.com/partshub/internal/constants"
	handlershared "github.com/partshub/internal/http/handlers/shared"
	"github.com/partshub/internal/http/response"
	"github.com/partshub/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	Items           []service.CreateOrderItem `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress string                    `json:"delivery_address" binding:"required"`
	DeliveryPhone   string                    `json:"delivery_phone" binding:"required"`
	Notes           string                    `json:"notes"`
}

// CreateOrder 客户下单，支持 Idempotency-Key 头去重
func (h *Handler) CreateOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	result, err := h.OrderService.Create(c.Request.Context(), service.CreateOrderInput{
		ClientID:        actor.ID,
		IdempotencyKey:  strings.TrimSpace(c.GetHeader(constants.HeaderIdempotencyKey)),
		Items:           req.Items,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryPhone:   req.DeliveryPhone,
		Notes:           req.Notes,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if result.Replayed {
		c.Header("Idempotent-Replayed", "true")
		requestLog(c).Infow("order_create_replayed", "order_id", result.Order.ID, "user_id", actor.ID)
	}
	response.Success(c, result.Order)
}

// ListOrders 当前用户可见的订单
func (h *Handler) ListOrders(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orders, err := h.OrderService.List(actor, c.Query("status"))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, orders)
}

// GetOrder 订单详情及可执行操作
func (h *Handler) GetOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	detail, err := h.OrderService.Get(actor, id)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, detail)
}

// UpdateOrderStatus 按状态机推进订单
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	newStatus := strings.TrimSpace(c.Query("new_status"))
	if newStatus == "" {
		respondError(c, response.CodeBadRequest, "new_status is required", nil)
		return
	}
	detail, err := h.OrderService.UpdateStatus(c.Request.Context(), actor, id, newStatus)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, detail)
}

// AssignOrder 配送员接单
func (h *Handler) AssignOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	detail, err := h.OrderService.Assign(c.Request.Context(), actor, id)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, detail)
}
