package apiclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/partshub/internal/orderflow"
)

// ErrNetwork 网络层失败（连接、超时、读取响应）
var ErrNetwork = errors.New("network error")

// AuthError 凭证无效或已过期，会话已被清理
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return "unauthorized: " + e.Message
}

// ServerError 服务端返回的非 2xx 响应
type ServerError struct {
	Status  int
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// NetworkError 请求未能得到响应
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is 支持 errors.Is(err, ErrNetwork)
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// InvalidTransitionError 服务端拒绝了状态流转
type InvalidTransitionError struct {
	Status  int
	Message string
}

func (e *InvalidTransitionError) Error() string {
	return e.Message
}

// Is 支持 errors.Is(err, orderflow.ErrInvalidTransition)
func (e *InvalidTransitionError) Is(target error) bool {
	return target == orderflow.ErrInvalidTransition
}

func isTransitionMessage(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "invalid transition") || strings.Contains(lower, "already assigned")
}
