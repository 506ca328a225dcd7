package shared

import (
	"github.com/partshub/internal/http/response"
	"github.com/partshub/internal/validation"

	"github.com/gin-gonic/gin"
)

// BindJSON 绑定请求体，失败时输出第一条校验信息。
func BindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.ErrorWithData(c, response.CodeBadRequest, validation.FirstMessage(err), map[string]interface{}{
			"fields": validation.FieldErrors(err),
		})
		return false
	}
	return true
}
