package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/partshub/internal/constants"
	"github.com/partshub/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultOrderListLimit = 100

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByPaymentReference(reference string) (*models.Order, error)
	List(filter OrderListFilter) ([]models.Order, error)
	CanView(orderID uint, scope OrderScope) (bool, error)
	TransitionStatus(id uint, from, to string, updates map[string]interface{}) (bool, error)
	Assign(id uint, dispatcherID uint, dispatcherName string, at time.Time) (bool, error)
	SetPaymentReference(id uint, reference string) error
	MarkPaymentSuccess(id uint, from, paidStatus string, at time.Time) (bool, error)
	ListUnassignedPaidBefore(before time.Time, limit int) ([]models.Order, error)
	CountAll() (int64, error)
	CountByStatus(status string) (int64, error)
	CountPaid() (int64, error)
	SumPaidRevenue() (decimal.Decimal, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit("Items").Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

// GetByID 根据 ID 获取订单（含订单项）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByPaymentReference 根据支付流水号获取订单
func (r *GormOrderRepository) GetByPaymentReference(reference string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("payment_reference = ?", reference).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// applyScope 按角色限定可见订单
func (r *GormOrderRepository) applyScope(query *gorm.DB, scope OrderScope) *gorm.DB {
	switch scope.Role {
	case constants.RoleAdmin:
		return query
	case constants.RoleClient:
		return query.Where("orders.client_id = ?", scope.UserID)
	case constants.RoleVendor:
		return query.Where("orders.id IN (?)",
			r.db.Model(&models.OrderItem{}).Select("order_id").Where("vendor_id = ?", scope.UserID))
	case constants.RoleDispatcher:
		return query.Where("orders.dispatcher_id = ? OR (orders.status = ? AND orders.dispatcher_id IS NULL)",
			scope.UserID, constants.OrderStatusPaid)
	default:
		return query.Where("1 = 0")
	}
}

// List 按角色范围查询订单，按创建时间倒序
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, error) {
	query := r.applyScope(r.db.Model(&models.Order{}), filter.Scope)
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("orders.status = ?", status)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultOrderListLimit
	}
	var orders []models.Order
	if err := query.Preload("Items").Order("orders.created_at DESC, orders.id DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// CanView 订单是否在该角色的可见范围内
func (r *GormOrderRepository) CanView(orderID uint, scope OrderScope) (bool, error) {
	var count int64
	query := r.applyScope(r.db.Model(&models.Order{}), scope).Where("orders.id = ?", orderID)
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// TransitionStatus 仅当当前状态仍为 from 时更新，返回是否更新成功
func (r *GormOrderRepository) TransitionStatus(id uint, from, to string, updates map[string]interface{}) (bool, error) {
	payload := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for key, value := range updates {
		payload[key] = value
	}
	result := r.db.Model(&models.Order{}).Where("id = ? AND status = ?", id, from).Updates(payload)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Assign 条件接单：仅当订单已支付且未分配配送员时成功
func (r *GormOrderRepository) Assign(id uint, dispatcherID uint, dispatcherName string, at time.Time) (bool, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ? AND dispatcher_id IS NULL", id, constants.OrderStatusPaid).
		Updates(map[string]interface{}{
			"dispatcher_id":   dispatcherID,
			"dispatcher_name": dispatcherName,
			"status":          constants.OrderStatusAssigned,
			"updated_at":      at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetPaymentReference 记录最近一次支付流水号
func (r *GormOrderRepository) SetPaymentReference(id uint, reference string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"payment_reference": reference,
		"updated_at":        time.Now(),
	}).Error
}

// MarkPaymentSuccess 记录支付成功；paidStatus 非空时仅在订单仍处于 from 状态时推进
func (r *GormOrderRepository) MarkPaymentSuccess(id uint, from, paidStatus string, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"payment_status": constants.PaymentStatusSuccess,
		"paid_at":        at,
		"updated_at":     at,
	}
	query := r.db.Model(&models.Order{}).Where("id = ?", id)
	if paidStatus != "" {
		updates["status"] = paidStatus
		query = query.Where("status = ?", from)
	}
	result := query.Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListUnassignedPaidBefore 已支付但长时间无人接单的订单
func (r *GormOrderRepository) ListUnassignedPaidBefore(before time.Time, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = defaultOrderListLimit
	}
	var orders []models.Order
	err := r.db.Where("status = ? AND dispatcher_id IS NULL AND paid_at IS NOT NULL AND paid_at < ?", constants.OrderStatusPaid, before).
		Order("paid_at ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// CountAll 订单总数
func (r *GormOrderRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Count(&count).Error
	return count, err
}

// CountByStatus 指定状态订单数
func (r *GormOrderRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// CountPaid 支付成功订单数
func (r *GormOrderRepository) CountPaid() (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Where("payment_status = ?", constants.PaymentStatusSuccess).Count(&count).Error
	return count, err
}

// SumPaidRevenue 支付成功订单金额合计
func (r *GormOrderRepository) SumPaidRevenue() (decimal.Decimal, error) {
	var orders []models.Order
	err := r.db.Model(&models.Order{}).
		Select("id", "total_amount").
		Where("payment_status = ?", constants.PaymentStatusSuccess).
		Find(&orders).Error
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, order := range orders {
		total = total.Add(order.TotalAmount.Decimal)
	}
	return total.Round(2), nil
}
