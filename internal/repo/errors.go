package repo

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"course-management-api/internal/domain"
)

// translate 把驱动层的约束冲突统一成 domain.ErrConstraint
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isDupKey(err):
		return domain.Constraint("duplicate record", fmt.Errorf("%s: %w", op, err))
	case isFKViolation(err):
		return domain.Constraint("referenced record does not exist", fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 兜底：未开启 TranslateError 的驱动只能看报错文本
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

func isFKViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint")
}
