package admin

import (
	handlershared "github.com/partshub/internal/http/handlers/shared"
	"github.com/partshub/internal/http/response"
	"github.com/partshub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var userErrorRules = []handlershared.MappedError{
	{Target: service.ErrCannotDeactivateSelf, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidArgument, Code: response.CodeBadRequest, Message: "invalid role filter"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Message: "user not found"},
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondUserError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, userErrorRules, response.CodeInternal, "user request failed")
}
