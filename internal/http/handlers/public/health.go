package public

import (
	"github.com/partshub/internal/http/response"

	"github.com/gin-gonic/gin"
)

// Health 存活检查
func (h *Handler) Health(c *gin.Context) {
	status := "healthy"
	if sqlDB, err := h.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = "degraded"
	}
	response.Success(c, gin.H{
		"name":     h.Config.App.Name,
		"status":   status,
		"mock_pay": h.PaymentService.MockMode(),
	})
}
