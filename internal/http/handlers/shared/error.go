package shared

import (
	"errors"

	"github.com/partshub/internal/http/response"
	"github.com/partshub/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		log := RequestLog(c)
		if code >= response.CodeInternal {
			log.Errorw("handler_error", "code", appErr.Code, "message", appErr.Message, "error", err)
		} else {
			log.Debugw("handler_error", "code", appErr.Code, "message", appErr.Message, "error", err)
		}
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// MappedError 业务错误到接口错误响应的映射规则。
// Message 为空时直接使用错误本身的文本。
type MappedError struct {
	Target  error
	Code    int
	Message string
}

// RespondMappedError 按顺序匹配规则，未命中时使用兜底响应。
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			msg := rule.Message
			if msg == "" {
				msg = err.Error()
			}
			RespondError(c, rule.Code, msg, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackMsg, err)
}

// ConcatMappedErrors 拼接多组映射规则。
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}
