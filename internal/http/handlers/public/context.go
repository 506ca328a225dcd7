package public

import (
	handlershared "github.com/partshub/internal/http/handlers/shared"
	"github.com/partshub/internal/orderflow"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, handlershared.ContextKeyUserID)
}

func currentActor(c *gin.Context) (orderflow.Actor, bool) {
	return handlershared.CurrentActor(c)
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}
