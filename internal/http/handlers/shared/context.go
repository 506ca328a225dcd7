package shared

import (
	"github.com/partshub/internal/http/response"
	"github.com/partshub/internal/orderflow"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserRole  = "user_role"
	ContextKeyUserEmail = "user_email"
)

// GetContextUint 从上下文读取 uint 值并统一处理错误响应。
func GetContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "not authenticated", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "invalid "+key, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "invalid "+key, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, "invalid "+key+" type", nil)
		return 0, false
	}
}

// CurrentActor 当前登录用户（ID + 角色）
func CurrentActor(c *gin.Context) (orderflow.Actor, bool) {
	userID, ok := GetContextUint(c, ContextKeyUserID)
	if !ok {
		return orderflow.Actor{}, false
	}
	role, err := orderflow.ParseRole(c.GetString(ContextKeyUserRole))
	if err != nil {
		RespondError(c, response.CodeUnauthorized, "invalid role in token", err)
		return orderflow.Actor{}, false
	}
	return orderflow.Actor{ID: userID, Role: role}, true
}
