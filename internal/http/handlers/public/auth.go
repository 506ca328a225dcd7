package public

import (
	"errors"

	handlershared "github.com/partshub/internal/http/handlers/shared"
	"github.com/partshub/internal/http/response"
	"github.com/partshub/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	FullName     string `json:"full_name" binding:"required,person_name"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	Phone        string `json:"phone" binding:"required,ng_phone"`
	Role         string `json:"role" binding:"required,oneof=client vendor dispatcher"`
	BusinessName string `json:"business_name"`
	Address      string `json:"address"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 用户注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	result, err := h.AuthService.Register(service.RegisterInput{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     req.Password,
		Role:         req.Role,
		Address:      req.Address,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, result)
}

// Login 用户登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	result, err := h.AuthService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			requestLog(c).Infow("auth_login_failed", "email", req.Email)
		}
		respondAuthError(c, err)
		return
	}
	response.Success(c, result)
}

// Me 当前登录用户
func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.AuthService.Me(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, user)
}
