package repository

import (
	"errors"
	"strings"

	"github.com/partshub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientStock 库存不足或配件不可售
var ErrInsufficientStock = errors.New("insufficient stock")

// PartRepository 配件数据访问接口
type PartRepository interface {
	GetByID(id uint) (*models.Part, error)
	GetByIDForUpdate(id uint) (*models.Part, error)
	List(filter PartListFilter) ([]models.Part, int64, error)
	Create(part *models.Part) error
	Update(part *models.Part) error
	Delete(id uint) error
	DecrementStock(id uint, quantity int) error
	RestoreStock(id uint, quantity int) error
	Categories() ([]string, error)
	Count() (int64, error)
	WithTx(tx *gorm.DB) *GormPartRepository
}

// GormPartRepository GORM 实现
type GormPartRepository struct {
	db *gorm.DB
}

// NewPartRepository 创建配件仓库
func NewPartRepository(db *gorm.DB) *GormPartRepository {
	return &GormPartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPartRepository) WithTx(tx *gorm.DB) *GormPartRepository {
	if tx == nil {
		return r
	}
	return &GormPartRepository{db: tx}
}

// GetByID 根据 ID 获取配件
func (r *GormPartRepository) GetByID(id uint) (*models.Part, error) {
	var part models.Part
	if err := r.db.First(&part, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &part, nil
}

// GetByIDForUpdate 事务内加行锁读取（sqlite 忽略锁子句）
func (r *GormPartRepository) GetByIDForUpdate(id uint) (*models.Part, error) {
	query := r.db
	if dbDialectName(r.db) != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var part models.Part
	if err := query.First(&part, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &part, nil
}

// List 配件列表
func (r *GormPartRepository) List(filter PartListFilter) ([]models.Part, int64, error) {
	query := r.db.Model(&models.Part{})

	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, count := buildLikeCondition(r.db, []string{"name", "description", "sku"})
		query = query.Where(condition, repeatLikeArgs("%"+escapeLike(search)+"%", count)...)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", filter.MinPrice.String())
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", filter.MaxPrice.String())
	}
	if filter.VendorID != 0 {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.AvailableOnly {
		query = query.Where("is_available = ? AND quantity > 0", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var parts []models.Part
	if err := query.Order("created_at DESC, id DESC").Find(&parts).Error; err != nil {
		return nil, 0, err
	}
	return parts, total, nil
}

// Create 创建配件
func (r *GormPartRepository) Create(part *models.Part) error {
	return r.db.Create(part).Error
}

// Update 更新配件
func (r *GormPartRepository) Update(part *models.Part) error {
	return r.db.Save(part).Error
}

// Delete 删除配件
func (r *GormPartRepository) Delete(id uint) error {
	return r.db.Delete(&models.Part{}, id).Error
}

// DecrementStock 条件扣减库存，库存不足时返回 ErrInsufficientStock
func (r *GormPartRepository) DecrementStock(id uint, quantity int) error {
	result := r.db.Model(&models.Part{}).
		Where("id = ? AND is_available = ? AND quantity >= ?", id, true, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RestoreStock 归还库存（订单取消）
func (r *GormPartRepository) RestoreStock(id uint, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	return r.db.Model(&models.Part{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).Error
}

// Categories 去重后的分类
func (r *GormPartRepository) Categories() ([]string, error) {
	var categories []string
	err := r.db.Model(&models.Part{}).
		Where("category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Count 配件总数
func (r *GormPartRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Part{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
