package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/partshub/internal/constants"
	"github.com/partshub/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository 支付数据访问接口
type PaymentRepository interface {
	Create(payment *models.Payment) error
	Update(payment *models.Payment) error
	GetByReference(reference string) (*models.Payment, error)
	ListByOrderID(orderID uint) ([]models.Payment, error)
	MarkStatus(id uint, status string, payload models.JSON, at time.Time) (bool, error)
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 创建支付记录
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// Update 更新支付记录
func (r *GormPaymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// GetByReference 根据流水号获取支付记录
func (r *GormPaymentRepository) GetByReference(reference string) (*models.Payment, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var payment models.Payment
	if err := r.db.Where("reference = ?", reference).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// ListByOrderID 获取订单的支付记录，最新在前
func (r *GormPaymentRepository) ListByOrderID(orderID uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.Where("order_id = ?", orderID).Order("id DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// MarkStatus 写入核验结果；已成功的支付不会被再次修改，返回是否发生更新
func (r *GormPaymentRepository) MarkStatus(id uint, status string, payload models.JSON, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":      status,
		"verified_at": at,
		"updated_at":  at,
	}
	if payload != nil {
		updates["provider_payload"] = payload
	}
	result := r.db.Model(&models.Payment{}).
		Where("id = ? AND status <> ?", id, constants.PaymentStatusSuccess).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
