package public

import "github.com/partshub/internal/provider"

// Handler 用户侧接口处理器入口
// 说明：覆盖游客、客户、商户、配送员使用的 API。
type Handler struct {
	*provider.Container
}

// New 创建用户侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
