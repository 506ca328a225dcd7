package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/partshub/internal/checkout"
	"github.com/partshub/internal/models"
)

// Register 注册并保存会话
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &result); err != nil {
		return nil, err
	}
	if err := c.saveSession(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login 登录并保存会话
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &result); err != nil {
		return nil, err
	}
	if err := c.saveSession(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout 清理本地会话
func (c *Client) Logout(ctx context.Context) {
	if c.session != nil {
		c.session.Teardown(ctx)
	}
}

func (c *Client) saveSession(ctx context.Context, result *AuthResult) error {
	if c.session == nil {
		return nil
	}
	return c.session.Set(ctx, result.AccessToken, &result.User)
}

// Me 当前用户
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListParts 配件列表
func (c *Client) ListParts(ctx context.Context, filter PartFilter) ([]models.Part, error) {
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.MinPrice != nil {
		query.Set("min_price", filter.MinPrice.String())
	}
	if filter.MaxPrice != nil {
		query.Set("max_price", filter.MaxPrice.String())
	}
	if filter.VendorID != 0 {
		query.Set("vendor_id", strconv.FormatUint(uint64(filter.VendorID), 10))
	}
	if filter.AvailableOnly != nil {
		query.Set("available_only", strconv.FormatBool(*filter.AvailableOnly))
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(filter.PageSize))
	}
	var parts []models.Part
	if err := c.do(ctx, http.MethodGet, "/parts", query, nil, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// GetPart 配件详情
func (c *Client) GetPart(ctx context.Context, id uint) (*models.Part, error) {
	var part models.Part
	if err := c.do(ctx, http.MethodGet, "/parts/"+idPath(id), nil, nil, &part); err != nil {
		return nil, err
	}
	return &part, nil
}

// CreatePart 新建配件（vendor/admin）
func (c *Client) CreatePart(ctx context.Context, input PartInput) (*models.Part, error) {
	var part models.Part
	if err := c.do(ctx, http.MethodPost, "/parts", nil, input, &part); err != nil {
		return nil, err
	}
	return &part, nil
}

// UpdatePart 修改配件
func (c *Client) UpdatePart(ctx context.Context, id uint, patch PartPatch) (*models.Part, error) {
	var part models.Part
	if err := c.do(ctx, http.MethodPut, "/parts/"+idPath(id), nil, patch, &part); err != nil {
		return nil, err
	}
	return &part, nil
}

// DeletePart 删除配件
func (c *Client) DeletePart(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/parts/"+idPath(id), nil, nil, nil)
}

// Categories 全部分类
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateOrder 下单，idempotencyKey 非空时通过 Idempotency-Key 头去重
func (c *Client) CreateOrder(ctx context.Context, req checkout.OrderRequest, idempotencyKey string) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodPost, "/orders", nil, req, &order, withIdempotencyKey(idempotencyKey)); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders 当前用户可见的订单
func (c *Client) ListOrders(ctx context.Context, status string) ([]models.Order, error) {
	query := url.Values{}
	if s := strings.TrimSpace(status); s != "" {
		query.Set("status", s)
	}
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/orders", query, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder 订单详情与可执行操作
func (c *Client) GetOrder(ctx context.Context, id uint) (*OrderDetail, error) {
	var detail OrderDetail
	if err := c.do(ctx, http.MethodGet, "/orders/"+idPath(id), nil, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// UpdateOrderStatus 推进订单状态
func (c *Client) UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	query := url.Values{}
	query.Set("new_status", status)
	var order models.Order
	if err := c.do(ctx, http.MethodPut, "/orders/"+idPath(id)+"/status", query, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// AssignOrder 配送员接单
func (c *Client) AssignOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodPut, "/orders/"+idPath(id)+"/assign", nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateLocation 上报配送员位置
func (c *Client) UpdateLocation(ctx context.Context, latitude, longitude float64) error {
	body := map[string]float64{"latitude": latitude, "longitude": longitude}
	return c.do(ctx, http.MethodPut, "/location", nil, body, nil)
}

// ListDispatcherLocations 全部配送员位置
func (c *Client) ListDispatcherLocations(ctx context.Context) ([]models.DispatcherLocation, error) {
	var locations []models.DispatcherLocation
	if err := c.do(ctx, http.MethodGet, "/locations/dispatchers", nil, nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// GetLocation 指定用户位置
func (c *Client) GetLocation(ctx context.Context, userID uint) (*models.DispatcherLocation, error) {
	var location models.DispatcherLocation
	if err := c.do(ctx, http.MethodGet, "/location/"+idPath(userID), nil, nil, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

// ListNotifications 当前用户通知
func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := c.do(ctx, http.MethodGet, "/notifications", nil, nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead 标记已读
func (c *Client) MarkNotificationRead(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodPut, "/notifications/"+idPath(id)+"/read", nil, nil, nil)
}

// MarkAllNotificationsRead 全部标记已读
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/notifications/read-all", nil, nil, nil)
}

// InitializePayment 发起支付
func (c *Client) InitializePayment(ctx context.Context, orderID uint, email string) (*PaymentInitResult, error) {
	body := map[string]interface{}{"order_id": orderID}
	if strings.TrimSpace(email) != "" {
		body["email"] = email
	}
	var result PaymentInitResult
	if err := c.do(ctx, http.MethodPost, "/payments/initialize", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyPayment 核验支付
func (c *Client) VerifyPayment(ctx context.Context, reference string) (*PaymentVerifyResult, error) {
	var result PaymentVerifyResult
	if err := c.do(ctx, http.MethodGet, "/payments/verify/"+url.PathEscape(reference), nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AdminUsers 用户列表，role 为空时返回全部
func (c *Client) AdminUsers(ctx context.Context, role string) ([]models.User, error) {
	query := url.Values{}
	if role != "" {
		query.Set("role", role)
	}
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/admin/users", query, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminStats 平台统计
func (c *Client) AdminStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, http.MethodGet, "/admin/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AdminSetUserStatus 启用/停用用户
func (c *Client) AdminSetUserStatus(ctx context.Context, userID uint, active bool) error {
	query := url.Values{}
	query.Set("is_active", strconv.FormatBool(active))
	return c.do(ctx, http.MethodPut, "/admin/users/"+idPath(userID)+"/status", query, nil, nil)
}

func idPath(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
