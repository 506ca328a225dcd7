package repository

import (
	"errors"

	"github.com/partshub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocationRepository 配送员位置数据访问接口
type LocationRepository interface {
	Upsert(location *models.DispatcherLocation) error
	GetByUser(userID uint) (*models.DispatcherLocation, error)
	List() ([]models.DispatcherLocation, error)
}

// GormLocationRepository GORM 实现
type GormLocationRepository struct {
	db *gorm.DB
}

// NewLocationRepository 创建位置仓库
func NewLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// Upsert 写入最新位置，每个配送员仅一条
func (r *GormLocationRepository) Upsert(location *models.DispatcherLocation) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_name", "latitude", "longitude", "updated_at"}),
	}).Create(location).Error
}

// GetByUser 获取配送员最新位置
func (r *GormLocationRepository) GetByUser(userID uint) (*models.DispatcherLocation, error) {
	var location models.DispatcherLocation
	if err := r.db.Where("user_id = ?", userID).First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

// List 全部配送员位置，最近更新在前
func (r *GormLocationRepository) List() ([]models.DispatcherLocation, error) {
	var locations []models.DispatcherLocation
	if err := r.db.Order("updated_at DESC").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}
