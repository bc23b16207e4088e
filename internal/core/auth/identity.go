package auth

import "course-management-api/internal/domain"

// Identity 调用方身份；只来自 token，不接受客户端传入的 id
type Identity struct {
	ID   uint
	Role domain.Role
	Name string
}

func (i *Identity) Is(r domain.Role) bool { return i != nil && i.Role == r }
