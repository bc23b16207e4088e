package domain

import (
	"context"
	"time"
)

type Course struct {
	ID           uint      `gorm:"primaryKey"`
	Title        string    `gorm:"size:200;not null"`
	Description  string    `gorm:"size:1000;not null"`
	Category     string    `gorm:"size:100;not null"`
	Duration     string    `gorm:"size:50;not null"`
	InstructorID uint      `gorm:"not null;index"`
	Instructor   *User     `gorm:"foreignKey:InstructorID;constraint:OnDelete:RESTRICT"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	IsActive     bool      `gorm:"not null;index"`
}

func (Course) TableName() string { return "courses" }

// CourseView 对外输出的课程（带讲师名与实时选课人数）
type CourseView struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Duration        string    `json:"duration"`
	Instructor      string    `json:"instructor"`
	InstructorID    uint      `json:"instructorId"`
	CreatedAt       time.Time `json:"createdAt"`
	IsActive        bool      `json:"isActive"`
	EnrollmentCount int64     `json:"enrollmentCount"`
}

// CourseFields 可由讲师修改的字段
type CourseFields struct {
	Title       string
	Description string
	Category    string
	Duration    string
}

type CourseRepository interface {
	Create(ctx context.Context, c *Course) error
	FindByID(ctx context.Context, id uint) (*Course, error)
	Update(ctx context.Context, id uint, f CourseFields) error
	SoftDelete(ctx context.Context, id uint) error
	HardDelete(ctx context.Context, id uint) error
	CountByInstructor(ctx context.Context, instructorID uint) (int64, error)

	GetView(ctx context.Context, id uint) (*CourseView, error)
	ListActive(ctx context.Context) ([]CourseView, error)
	ListAll(ctx context.Context) ([]CourseView, error)
	ListByInstructor(ctx context.Context, instructorID uint, activeOnly bool) ([]CourseView, error)
	ListAvailable(ctx context.Context, userID uint) ([]CourseView, error)
	ListEnrolled(ctx context.Context, userID uint) ([]CourseView, error)
	Search(ctx context.Context, q string) ([]CourseView, error)
}
