package public

import "github.com/akiranaka1984/affiliate/internal/provider"

// Handler 推广侧/公开接口处理器入口
// 说明：该处理器用于跟踪落点、上报与推广用户自助 API。
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
