package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/partshub/internal/authz"
	"github.com/partshub/internal/config"
	"github.com/partshub/internal/constants"
	handlershared "github.com/partshub/internal/http/handlers/shared"
	"github.com/partshub/internal/http/response"
	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = constants.HeaderRequestID

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Authorization",
			constants.HeaderIdempotencyKey,
			constants.HeaderRequestID,
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if userID, ok := c.Get(handlershared.ContextKeyUserID); ok {
			log = log.With("user_id", userID)
		}
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// JWTAuthMiddleware 用户 JWT 鉴权中间件
// 说明：校验签名后再读取鉴权缓存，停用账号或角色变更后的旧令牌会被拒绝。
func JWTAuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authService == nil {
			response.Abort(c, response.CodeUnauthorized, "authentication unavailable")
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, response.CodeUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			response.Abort(c, response.CodeUnauthorized, "invalid authorization header")
			return
		}

		claims, err := authService.ParseJWT(strings.TrimSpace(parts[1]))
		if err != nil || claims.UserID == 0 {
			response.Abort(c, response.CodeUnauthorized, "invalid or expired token")
			return
		}

		state, err := authService.ResolveAuthState(c.Request.Context(), claims.UserID)
		if err != nil || state == nil {
			logger.Debugw("auth_state_resolve_failed", "user_id", claims.UserID, "error", err)
			response.Abort(c, response.CodeUnauthorized, "invalid or expired token")
			return
		}
		if !state.IsActive {
			response.Abort(c, response.CodeForbidden, "account is deactivated")
			return
		}
		if !strings.EqualFold(state.Role, claims.Role) {
			response.Abort(c, response.CodeUnauthorized, "token role is stale, please sign in again")
			return
		}

		c.Set(handlershared.ContextKeyUserID, claims.UserID)
		c.Set(handlershared.ContextKeyUserRole, state.Role)
		c.Set(handlershared.ContextKeyUserEmail, claims.Email)
		c.Next()
	}
}

// RequireRoutePermission 基于 Casbin 的路由级角色鉴权
func RequireRoutePermission(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("rbac_service_unavailable")
			response.Abort(c, response.CodeForbidden, "permission denied")
			return
		}
		role := strings.TrimSpace(c.GetString(handlershared.ContextKeyUserRole))
		if role == "" {
			response.Abort(c, response.CodeUnauthorized, "not authenticated")
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceRole(role, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("rbac_enforce_failed",
				"role", role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			response.Abort(c, response.CodeForbidden, "permission denied")
			return
		}
		if !allowed {
			logger.Warnw("rbac_permission_denied",
				"role", role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			response.Abort(c, response.CodeForbidden, "permission denied")
			return
		}

		c.Next()
	}
}
