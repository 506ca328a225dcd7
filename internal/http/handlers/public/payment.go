package public

import (
	"io"
	"net/http"
	"strings"

	handlershared "github.com/partshub/internal/http/handlers/shared"
	"github.com/partshub/internal/http/response"

	"github.com/gin-gonic/gin"
)

const maxWebhookBodyBytes = 1 << 20

// InitializePaymentRequest 发起支付请求
type InitializePaymentRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
}

// InitializePayment 为订单发起支付
func (h *Handler) InitializePayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req InitializePaymentRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	result, err := h.PaymentService.Initialize(c.Request.Context(), actor, req.OrderID, req.Email)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	response.Success(c, result)
}

// VerifyPayment 核验支付结果，可重复调用
func (h *Handler) VerifyPayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		respondError(c, response.CodeBadRequest, "reference is required", nil)
		return
	}
	result, err := h.PaymentService.Verify(c.Request.Context(), actor, reference)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	response.Success(c, result)
}

// PaymentWebhook Paystack 回调，签名校验由服务层完成
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		requestLog(c).Warnw("payment_webhook_read_body_failed", "error", err)
		respondError(c, response.CodeBadRequest, "invalid webhook body", nil)
		return
	}
	if err := h.PaymentService.HandleWebhook(c.Request.Context(), c.Request.Header, body); err != nil {
		respondPaymentError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
