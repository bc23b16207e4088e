package domain

import (
	"context"
	"time"
)

// Enrollment 每个 (UserID, CourseID) 至多一行；退课置 inactive，重新选课复用该行
type Enrollment struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course;index"`
	Course     *Course   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	EnrolledAt time.Time `gorm:"not null"`
	IsActive   bool      `gorm:"not null"`
}

func (Enrollment) TableName() string { return "enrollments" }

// EnrollmentState 选课状态机的三个状态
type EnrollmentState uint8

const (
	StateAbsent EnrollmentState = iota
	StateActive
	StateInactive
)

func (s EnrollmentState) String() string {
	switch s {
	case StateActive:
		return "Active"
	case StateInactive:
		return "Inactive"
	}
	return "Absent"
}

// StateOf nil 表示不存在
func StateOf(e *Enrollment) EnrollmentState {
	switch {
	case e == nil:
		return StateAbsent
	case e.IsActive:
		return StateActive
	}
	return StateInactive
}

type EnrollmentRepository interface {
	FindByPair(ctx context.Context, userID, courseID uint) (*Enrollment, error)
	// Create 唯一索引冲突时返回 ErrConstraint
	Create(ctx context.Context, e *Enrollment) error
	// Reactivate 仅当行仍为 inactive 时生效，返回是否命中
	Reactivate(ctx context.Context, id uint, at time.Time) (bool, error)
	// Deactivate 仅当行为 active 时生效，返回是否命中
	Deactivate(ctx context.Context, userID, courseID uint) (bool, error)
	CountActive(ctx context.Context, courseID uint) (int64, error)
	CountByPair(ctx context.Context, userID, courseID uint) (int64, error)
}
