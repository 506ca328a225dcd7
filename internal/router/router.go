package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/partshub/internal/authz"
	"github.com/partshub/internal/cache"
	"github.com/partshub/internal/config"
	"github.com/partshub/internal/constants"
	adminhandlers "github.com/partshub/internal/http/handlers/admin"
	publichandlers "github.com/partshub/internal/http/handlers/public"
	"github.com/partshub/internal/http/response"
	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts, please try again later",
	}
	registerRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:register", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts * 2,
		Message:       "too many registrations from this address",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/", publicHandler.Health)
	r.GET("/health", publicHandler.Health)

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		apiV1.GET("/parts", publicHandler.ListParts)
		apiV1.GET("/parts/:id", publicHandler.GetPart)
		apiV1.GET("/categories", publicHandler.Categories)
		apiV1.POST("/payments/webhook", publicHandler.PaymentWebhook)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", RateLimitMiddleware(cache.Client(), registerRule, KeyByIP), publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		// 登录用户接口，路由权限由 casbin 按角色判定
		authorized := apiV1.Group("")
		authorized.Use(JWTAuthMiddleware(c.AuthService), RequireRoutePermission(c.AuthzService))
		{
			authorized.GET("/auth/me", publicHandler.Me)

			authorized.POST("/parts", publicHandler.CreatePart)
			authorized.PUT("/parts/:id", publicHandler.UpdatePart)
			authorized.DELETE("/parts/:id", publicHandler.DeletePart)

			authorized.GET("/cart", publicHandler.GetCart)
			authorized.PUT("/cart", publicHandler.SaveCart)
			authorized.DELETE("/cart", publicHandler.ClearCart)

			authorized.POST("/orders", publicHandler.CreateOrder)
			authorized.GET("/orders", publicHandler.ListOrders)
			authorized.GET("/orders/:id", publicHandler.GetOrder)
			authorized.PUT("/orders/:id/status", publicHandler.UpdateOrderStatus)
			authorized.PUT("/orders/:id/assign", publicHandler.AssignOrder)

			authorized.PUT("/location", publicHandler.UpdateLocation)
			authorized.GET("/locations/dispatchers", publicHandler.ListDispatcherLocations)
			authorized.GET("/location/:user_id", publicHandler.GetLocation)

			authorized.GET("/notifications", publicHandler.ListNotifications)
			authorized.GET("/notifications/unread-count", publicHandler.UnreadNotificationCount)
			authorized.PUT("/notifications/read-all", publicHandler.MarkAllNotificationsRead)
			authorized.PUT("/notifications/:id/read", publicHandler.MarkNotificationRead)

			authorized.POST("/payments/initialize", publicHandler.InitializePayment)
			authorized.GET("/payments/verify/:reference", publicHandler.VerifyPayment)

			admin := authorized.Group("/admin")
			{
				admin.GET("/users", adminHandler.ListUsers)
				admin.PUT("/users/:id/status", adminHandler.SetUserStatus)
				admin.GET("/stats", adminHandler.GetStats)

				admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
				admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				admin.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				admin.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildPermissionCatalog(r))
				})
			}
		}
	}

	return r
}

type permissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildPermissionCatalog 列出所有需要鉴权的路由，供管理端配置策略
func buildPermissionCatalog(engine *gin.Engine) []permissionCatalogItem {
	if engine == nil {
		return []permissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]permissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/") || isPublicRoute(method, item.Path) {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, permissionCatalogItem{
			Module:     derivePermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

var publicRoutes = map[string]struct{}{
	"GET:/api/v1/parts":             {},
	"GET:/api/v1/parts/:id":         {},
	"GET:/api/v1/categories":        {},
	"POST:/api/v1/payments/webhook": {},
	"POST:/api/v1/auth/register":    {},
	"POST:/api/v1/auth/login":       {},
}

func isPublicRoute(method, path string) bool {
	_, ok := publicRoutes[method+":"+path]
	return ok
}

func derivePermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return "admin"
}
