package public

import (
	handlershared "github.com/partshub/internal/http/handlers/shared"
	"github.com/partshub/internal/http/response"
	"github.com/partshub/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError = handlershared.MappedError

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	handlershared.RespondMappedError(c, err, rules, fallbackCode, fallbackMsg)
}

var authErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized},
	{Target: service.ErrUserDisabled, Code: response.CodeForbidden},
	{Target: service.ErrEmailExists, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidPhone, Code: response.CodeBadRequest},
	{Target: service.ErrPasswordTooShort, Code: response.CodeBadRequest},
	{Target: service.ErrRoleNotAllowed, Code: response.CodeBadRequest},
	{Target: service.ErrBusinessNameRequired, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidArgument, Code: response.CodeBadRequest},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Message: "user not found"},
}

var partErrorRules = []mappedHandlerError{
	{Target: service.ErrPartNotFound, Code: response.CodeNotFound},
	{Target: service.ErrPartInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidArgument, Code: response.CodeBadRequest},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Message: "only the owner or an admin can change this part"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound},
}

// 状态流转错误直接透出原文，客户端据 "invalid transition" / "already assigned" 识别
var orderTransitionErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidTransition, Code: response.CodeBadRequest},
	{Target: service.ErrAlreadyAssigned, Code: response.CodeConflict},
	{Target: service.ErrOrderConflict, Code: response.CodeConflict},
}

var orderErrorRules = []mappedHandlerError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound},
	{Target: service.ErrOrderEmpty, Code: response.CodeBadRequest},
	{Target: service.ErrOrderItemInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrOrderDeliveryInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidPhone, Code: response.CodeBadRequest},
	{Target: service.ErrInsufficientStock, Code: response.CodeBadRequest},
	{Target: service.ErrPartNotFound, Code: response.CodeBadRequest},
	{Target: service.ErrIdempotencyKeyInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrIdempotencyInProgress, Code: response.CodeConflict},
	{Target: service.ErrInvalidArgument, Code: response.CodeBadRequest},
	{Target: service.ErrNotFound, Code: response.CodeNotFound},
}

var paymentErrorRules = []mappedHandlerError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound},
	{Target: service.ErrOrderAlreadyPaid, Code: response.CodeBadRequest},
	{Target: service.ErrOrderNotPayable, Code: response.CodeBadRequest},
	{Target: service.ErrPaymentNotFound, Code: response.CodeNotFound},
	{Target: service.ErrPaymentProvider, Code: response.CodeBadGateway, Message: "payment provider unavailable"},
	{Target: service.ErrForbidden, Code: response.CodeUnauthorized, Message: "invalid webhook signature"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound},
}

var locationErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidLocation, Code: response.CodeBadRequest},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Message: "only dispatchers can report location"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Message: "location not found"},
}

var notificationErrorRules = []mappedHandlerError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Message: "notification not found"},
}

func respondAuthError(c *gin.Context, err error) {
	respondWithMappedError(c, err, authErrorRules, response.CodeInternal, "authentication failed")
}

func respondPartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, partErrorRules, response.CodeInternal, "part request failed")
}

func respondOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(orderTransitionErrorRules, orderErrorRules), response.CodeInternal, "order request failed")
}

func respondPaymentError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentErrorRules, response.CodeInternal, "payment request failed")
}

func respondLocationError(c *gin.Context, err error) {
	respondWithMappedError(c, err, locationErrorRules, response.CodeInternal, "location request failed")
}

func respondNotificationError(c *gin.Context, err error) {
	respondWithMappedError(c, err, notificationErrorRules, response.CodeInternal, "notification request failed")
}
