package internalapi

import "github.com/akiranaka1984/affiliate/internal/provider"

// Handler 内部接口处理器入口
// 说明：仅供受信后端通过 X-Internal-Token 调用，不暴露给前端。
type Handler struct {
	*provider.Container
}

// New 创建内部处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
