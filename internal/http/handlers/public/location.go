package public

import (
	handlershared "github.com/partshub/internal/http/handlers/shared"
	"github.com/partshub/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UpdateLocationRequest 配送员位置上报
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// UpdateLocation 上报当前位置
func (h *Handler) UpdateLocation(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateLocationRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	location, err := h.LocationService.Update(userID, *req.Latitude, *req.Longitude)
	if err != nil {
		respondLocationError(c, err)
		return
	}
	response.Success(c, location)
}

// ListDispatcherLocations 全部配送员位置
func (h *Handler) ListDispatcherLocations(c *gin.Context) {
	locations, err := h.LocationService.ListDispatchers()
	if err != nil {
		respondLocationError(c, err)
		return
	}
	response.Success(c, locations)
}

// GetLocation 指定配送员位置
func (h *Handler) GetLocation(c *gin.Context) {
	userID, ok := handlershared.ParamUint(c, "user_id")
	if !ok {
		return
	}
	location, err := h.LocationService.Get(userID)
	if err != nil {
		respondLocationError(c, err)
		return
	}
	response.Success(c, location)
}
