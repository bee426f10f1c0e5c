package staff

import "github.com/studentperks/internal/provider"

// Handler 门店员工接口处理器入口
// 说明：该处理器仅用于门店员工侧 API。
type Handler struct {
	*provider.Container
}

// New 创建员工处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
