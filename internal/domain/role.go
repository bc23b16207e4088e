package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Role 角色是封闭枚举，持久化与签发到 JWT 时使用文本形式
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleInstructor
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleAdmin:      "Admin",
	RoleInstructor: "Instructor",
	RoleUser:       "User",
}

// Roles 全部角色（顺序稳定，测试与策略表遍历用）
func Roles() []Role { return []Role{RoleAdmin, RoleInstructor, RoleUser} }

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

func (r Role) Valid() bool { _, ok := roleNames[r]; return ok }

// ParseRole 大小写不敏感
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for r, name := range roleNames {
		if strings.EqualFold(name, s) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func (r Role) MarshalJSON() ([]byte, error) {
	b, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(b))
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return r.UnmarshalText([]byte(s))
}

// Value 落库为 "Admin"/"Instructor"/"User"
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return r.String(), nil
}

func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	case nil:
		*r = 0
		return nil
	}
	return fmt.Errorf("scan role: unsupported type %T", src)
}

func (Role) GormDataType() string { return "string" }
