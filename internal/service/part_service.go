package service

import (
	"strings"

	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/models"
	"github.com/partshub/internal/orderflow"
	"github.com/partshub/internal/repository"

	"github.com/shopspring/decimal"
)

const maxPartPageSize = 100

// PartService 配件服务
type PartService struct {
	partRepo repository.PartRepository
	userRepo repository.UserRepository
}

// NewPartService 创建配件服务
func NewPartService(partRepo repository.PartRepository, userRepo repository.UserRepository) *PartService {
	return &PartService{
		partRepo: partRepo,
		userRepo: userRepo,
	}
}

// PartInput 创建配件输入
type PartInput struct {
	Name               string
	Description        string
	SKU                string
	Category           string
	Price              decimal.Decimal
	Quantity           int
	ImageURL           string
	CompatibleVehicles []string
	IsAvailable        *bool
}

// PartPatch 更新配件输入，nil 字段保持不变
type PartPatch struct {
	Name               *string
	Description        *string
	SKU                *string
	Category           *string
	Price              *decimal.Decimal
	Quantity           *int
	ImageURL           *string
	CompatibleVehicles []string
	IsAvailable        *bool
}

// List 配件列表
func (s *PartService) List(filter repository.PartListFilter) ([]models.Part, int64, error) {
	if filter.PageSize > maxPartPageSize {
		filter.PageSize = maxPartPageSize
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, 0, ErrInvalidArgument
	}
	return s.partRepo.List(filter)
}

// Get 配件详情
func (s *PartService) Get(id uint) (*models.Part, error) {
	part, err := s.partRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, ErrPartNotFound
	}
	return part, nil
}

// Categories 配件分类
func (s *PartService) Categories() ([]string, error) {
	return s.partRepo.Categories()
}

// Create 商户或管理员上架配件
func (s *PartService) Create(actor orderflow.Actor, input PartInput) (*models.Part, error) {
	if actor.Role != orderflow.RoleVendor && actor.Role != orderflow.RoleAdmin {
		return nil, ErrForbidden
	}
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Price.LessThanOrEqual(decimal.Zero) || input.Quantity < 0 {
		return nil, ErrPartInvalid
	}
	owner, err := s.userRepo.GetByID(actor.ID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrNotFound
	}

	available := true
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}
	part := &models.Part{
		VendorID:           owner.ID,
		VendorName:         owner.DisplayName(),
		Name:               name,
		Description:        strings.TrimSpace(input.Description),
		SKU:                strings.TrimSpace(input.SKU),
		Category:           strings.TrimSpace(input.Category),
		Price:              models.NewMoneyFromDecimal(input.Price),
		Quantity:           input.Quantity,
		ImageURL:           strings.TrimSpace(input.ImageURL),
		CompatibleVehicles: normalizeVehicles(input.CompatibleVehicles),
		IsAvailable:        available,
	}
	if err := s.partRepo.Create(part); err != nil {
		return nil, err
	}
	logger.Infow("part_created", "part_id", part.ID, "vendor_id", part.VendorID)
	return part, nil
}

// Update 仅所属商户或管理员可修改
func (s *PartService) Update(actor orderflow.Actor, id uint, patch PartPatch) (*models.Part, error) {
	part, err := s.ownedPart(actor, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ErrPartInvalid
		}
		part.Name = name
	}
	if patch.Description != nil {
		part.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.SKU != nil {
		part.SKU = strings.TrimSpace(*patch.SKU)
	}
	if patch.Category != nil {
		part.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Price != nil {
		if patch.Price.LessThanOrEqual(decimal.Zero) {
			return nil, ErrPartInvalid
		}
		part.Price = models.NewMoneyFromDecimal(*patch.Price)
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 0 {
			return nil, ErrPartInvalid
		}
		part.Quantity = *patch.Quantity
	}
	if patch.ImageURL != nil {
		part.ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
	if patch.CompatibleVehicles != nil {
		part.CompatibleVehicles = normalizeVehicles(patch.CompatibleVehicles)
	}
	if patch.IsAvailable != nil {
		part.IsAvailable = *patch.IsAvailable
	}
	if err := s.partRepo.Update(part); err != nil {
		return nil, err
	}
	return part, nil
}

// Delete 仅所属商户或管理员可删除
func (s *PartService) Delete(actor orderflow.Actor, id uint) error {
	part, err := s.ownedPart(actor, id)
	if err != nil {
		return err
	}
	if err := s.partRepo.Delete(part.ID); err != nil {
		return err
	}
	logger.Infow("part_deleted", "part_id", part.ID, "actor_id", actor.ID)
	return nil
}

func (s *PartService) ownedPart(actor orderflow.Actor, id uint) (*models.Part, error) {
	part, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if actor.Role == orderflow.RoleAdmin {
		return part, nil
	}
	if actor.Role != orderflow.RoleVendor || part.VendorID != actor.ID {
		return nil, ErrForbidden
	}
	return part, nil
}

func normalizeVehicles(raw []string) models.StringArray {
	out := make(models.StringArray, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
