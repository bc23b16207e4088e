// Package service 业务流程：登录注册、课程、选课状态机、用户管理。
// 所有方法显式接收调用方身份（*auth.Identity），角色校验在传输层按 policy 表完成，
// 这里只做资源归属判断。
package service

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"course-management-api/internal/core/auth"
	"course-management-api/internal/domain"
)

func nopIfNil(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func requireIdentity(id *auth.Identity) error {
	if id == nil || id.ID == 0 {
		return domain.ErrUnauthenticated
	}
	return nil
}

// field 去首尾空白后校验必填与最大长度（按字符计）
func field(name, v string, max int) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", domain.Validation(name + " is required")
	}
	if utf8.RuneCountInString(v) > max {
		return "", domain.Validation(name + " is too long")
	}
	return v, nil
}
