package public

import (
	"strconv"
	"strings"

	handlershared "github.com/partshub/internal/http/handlers/shared"
	"github.com/partshub/internal/http/response"
	"github.com/partshub/internal/repository"
	"github.com/partshub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreatePartRequest 新建配件请求
type CreatePartRequest struct {
	Name               string          `json:"name" binding:"required"`
	Description        string          `json:"description"`
	Category           string          `json:"category" binding:"required"`
	Price              decimal.Decimal `json:"price"`
	Quantity           int             `json:"quantity" binding:"gte=0"`
	SKU                string          `json:"sku" binding:"required"`
	ImageURL           string          `json:"image_url"`
	CompatibleVehicles []string        `json:"compatible_vehicles"`
	IsAvailable        *bool           `json:"is_available"`
}

// UpdatePartRequest 修改配件请求，缺省字段保持不变
type UpdatePartRequest struct {
	Name               *string          `json:"name"`
	Description        *string          `json:"description"`
	SKU                *string          `json:"sku"`
	Category           *string          `json:"category"`
	Price              *decimal.Decimal `json:"price"`
	Quantity           *int             `json:"quantity"`
	ImageURL           *string          `json:"image_url"`
	CompatibleVehicles []string         `json:"compatible_vehicles"`
	IsAvailable        *bool            `json:"is_available"`
}

// ListParts 配件列表（公开）
func (h *Handler) ListParts(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	filter := repository.PartListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	var ok bool
	if filter.MinPrice, ok = queryDecimal(c, "min_price"); !ok {
		return
	}
	if filter.MaxPrice, ok = queryDecimal(c, "max_price"); !ok {
		return
	}
	if raw := strings.TrimSpace(c.Query("vendor_id")); raw != "" {
		vendorID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid vendor_id", nil)
			return
		}
		filter.VendorID = uint(vendorID)
	}
	if raw := strings.TrimSpace(c.Query("available_only")); raw != "" {
		availableOnly, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid available_only", nil)
			return
		}
		filter.AvailableOnly = availableOnly
	}

	parts, total, err := h.PartService.List(filter)
	if err != nil {
		respondPartError(c, err)
		return
	}
	response.SuccessWithPage(c, parts, handlershared.BuildPagination(page, pageSize, total))
}

// GetPart 配件详情（公开）
func (h *Handler) GetPart(c *gin.Context) {
	id, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	part, err := h.PartService.Get(id)
	if err != nil {
		respondPartError(c, err)
		return
	}
	response.Success(c, part)
}

// Categories 全部分类（公开）
func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.PartService.Categories()
	if err != nil {
		respondPartError(c, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	response.Success(c, categories)
}

// CreatePart 商户/管理员新建配件
func (h *Handler) CreatePart(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req CreatePartRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	part, err := h.PartService.Create(actor, service.PartInput{
		Name:               req.Name,
		Description:        req.Description,
		SKU:                req.SKU,
		Category:           req.Category,
		Price:              req.Price,
		Quantity:           req.Quantity,
		ImageURL:           req.ImageURL,
		CompatibleVehicles: req.CompatibleVehicles,
		IsAvailable:        req.IsAvailable,
	})
	if err != nil {
		respondPartError(c, err)
		return
	}
	response.Success(c, part)
}

// UpdatePart 修改配件，仅所有者或管理员
func (h *Handler) UpdatePart(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req UpdatePartRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	part, err := h.PartService.Update(actor, id, service.PartPatch{
		Name:               req.Name,
		Description:        req.Description,
		SKU:                req.SKU,
		Category:           req.Category,
		Price:              req.Price,
		Quantity:           req.Quantity,
		ImageURL:           req.ImageURL,
		CompatibleVehicles: req.CompatibleVehicles,
		IsAvailable:        req.IsAvailable,
	})
	if err != nil {
		respondPartError(c, err)
		return
	}
	response.Success(c, part)
}

// DeletePart 删除配件
func (h *Handler) DeletePart(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.PartService.Delete(actor, id); err != nil {
		respondPartError(c, err)
		return
	}
	response.SuccessWithMsg(c, "part deleted", nil)
}

func queryDecimal(c *gin.Context, name string) (*decimal.Decimal, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		respondError(c, response.CodeBadRequest, "invalid "+name, nil)
		return nil, false
	}
	return &value, true
}
