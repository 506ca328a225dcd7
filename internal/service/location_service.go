package service

import (
	"math"
	"time"

	"github.com/partshub/internal/models"
	"github.com/partshub/internal/repository"
)

// LocationService 配送员位置服务
type LocationService struct {
	locationRepo repository.LocationRepository
	userRepo     repository.UserRepository
}

// NewLocationService 创建位置服务
func NewLocationService(locationRepo repository.LocationRepository, userRepo repository.UserRepository) *LocationService {
	return &LocationService{
		locationRepo: locationRepo,
		userRepo:     userRepo,
	}
}

// Update 写入配送员最新位置
func (s *LocationService) Update(userID uint, latitude, longitude float64) (*models.DispatcherLocation, error) {
	if !validCoordinate(latitude, 90) || !validCoordinate(longitude, 180) {
		return nil, ErrInvalidLocation
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	location := &models.DispatcherLocation{
		UserID:    user.ID,
		UserName:  user.FullName,
		Latitude:  latitude,
		Longitude: longitude,
		UpdatedAt: time.Now(),
	}
	if err := s.locationRepo.Upsert(location); err != nil {
		return nil, err
	}
	return location, nil
}

// ListDispatchers 全部配送员位置
func (s *LocationService) ListDispatchers() ([]models.DispatcherLocation, error) {
	return s.locationRepo.List()
}

// Get 指定用户的位置
func (s *LocationService) Get(userID uint) (*models.DispatcherLocation, error) {
	location, err := s.locationRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, ErrNotFound
	}
	return location, nil
}

func validCoordinate(value, limit float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0) && math.Abs(value) <= limit
}
