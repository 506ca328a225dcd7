package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/partshub/internal/cache"
	"github.com/partshub/internal/config"
	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/models"
	"github.com/partshub/internal/orderflow"
	"github.com/partshub/internal/repository"
	"github.com/partshub/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultJWTExpireHours    = 24 * 7
	defaultPasswordMinLength = 6
	tokenTypeBearer          = "bearer"
)

// AuthService 认证服务
type AuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// RegisterInput 注册输入
type RegisterInput struct {
	FullName     string
	Email        string
	Phone        string
	Password     string
	Role         string
	Address      string
	BusinessName string
}

// AuthResult 登录/注册结果
type AuthResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

// JWTClaims JWT 声明
type JWTClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func (s *AuthService) passwordMinLength() int {
	if s.cfg != nil && s.cfg.Security.PasswordMinLength > 0 {
		return s.cfg.Security.PasswordMinLength
	}
	return defaultPasswordMinLength
}

func (s *AuthService) expireHours() int {
	if s.cfg != nil && s.cfg.JWT.ExpireHours > 0 {
		return s.cfg.JWT.ExpireHours
	}
	return defaultJWTExpireHours
}

func (s *AuthService) secret() []byte {
	if s.cfg == nil {
		return nil
	}
	return []byte(s.cfg.JWT.SecretKey)
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.expireHours()) * time.Hour)
	claims := JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret())
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &JWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret(), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid && claims.UserID != 0 {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Register 自助注册（admin 不可注册）
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	role, err := orderflow.ParseRole(input.Role)
	if err != nil || !role.SelfRegistrable() {
		return nil, ErrRoleNotAllowed
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, ErrInvalidArgument
	}
	if !validation.IsNigerianPhone(input.Phone) {
		return nil, ErrInvalidPhone
	}
	if len(input.Password) < s.passwordMinLength() {
		return nil, ErrPasswordTooShort
	}
	businessName := strings.TrimSpace(input.BusinessName)
	if role == orderflow.RoleVendor && businessName == "" {
		return nil, ErrBusinessNameRequired
	}
	if role != orderflow.RoleVendor {
		businessName = ""
	}

	exist, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrEmailExists
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		FullName:     fullName,
		Email:        email,
		Phone:        validation.NormalizePhone(input.Phone),
		PasswordHash: hash,
		Role:         string(role),
		Address:      strings.TrimSpace(input.Address),
		BusinessName: businessName,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	logger.Infow("user_registered", "user_id", user.ID, "role", user.Role)
	return s.issue(user)
}

// Login 邮箱密码登录
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(user.ID, now); err != nil {
		logger.Warnw("user_touch_last_login_failed", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}
	return s.issue(user)
}

// Me 当前用户
func (s *AuthService) Me(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// ResolveAuthState 鉴权中间件使用：优先读缓存，未命中回源数据库并写回
func (s *AuthService) ResolveAuthState(ctx context.Context, userID uint) (*cache.UserAuthState, error) {
	state, hit, err := cache.GetUserAuthState(ctx, userID)
	if err != nil {
		logger.Warnw("auth_state_cache_read_failed", "user_id", userID, "error", err)
	}
	if hit && state != nil {
		return state, nil
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	state = cache.BuildUserAuthState(user)
	if err := cache.SetUserAuthState(ctx, state); err != nil {
		logger.Warnw("auth_state_cache_write_failed", "user_id", userID, "error", err)
	}
	return state, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return &AuthResult{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
