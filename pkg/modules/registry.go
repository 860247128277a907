package modules

import (
	"context"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/gridbase/gridbase/pkg/multiselect"
	"github.com/gridbase/gridbase/pkg/types"
)

// Registry 模块列类型的选项来源。模块不可用时调用方降级为
// 自由文本校验，不视为失败
type Registry interface {
	// Options 返回 moduleId:columnTypeId 对应的选项列表
	Options(ctx context.Context, columnType types.ModuleColumnType) ([]multiselect.Option, bool)
}

// MemoryRegistry 进程内注册表，选项按 moduleId:columnTypeId 缓存
type MemoryRegistry struct {
	options cmap.ConcurrentMap[string, []multiselect.Option]
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		options: cmap.New[[]multiselect.Option](),
	}
}

func key(t types.ModuleColumnType) string {
	return t.ModuleID + ":" + t.ColumnTypeID
}

// Register 注册（或覆盖）某个模块列类型的选项列表
func (r *MemoryRegistry) Register(columnType types.ModuleColumnType, options []multiselect.Option) {
	r.options.Set(key(columnType), options)
}

func (r *MemoryRegistry) Unregister(columnType types.ModuleColumnType) {
	r.options.Remove(key(columnType))
}

func (r *MemoryRegistry) Options(ctx context.Context, columnType types.ModuleColumnType) ([]multiselect.Option, bool) {
	return r.options.Get(key(columnType))
}
