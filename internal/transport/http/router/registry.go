package router

import (
	"sort"

	"course-management-api/internal/transport/http/ez"
)

// APIModule 一组路由（如 auth / courses / users）
type APIModule interface{ MountAPI(ez.EZ) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 按优先级挂载模块；每个 engine 一份，不用全局变量
type Registry struct{ mods []APIModule }

func (r *Registry) Register(mods ...APIModule) { r.mods = append(r.mods, mods...) }

// MountAll 在 /api 分组上挂载所有已注册模块
func (r *Registry) MountAll(e ez.EZ) {
	mods := append([]APIModule(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(e)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
