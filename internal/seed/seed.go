// Package seed 本地/演示环境的示例数据。库里已有任何用户时不做任何事。
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"course-management-api/internal/domain"
	"course-management-api/internal/repo"
	"course-management-api/pkg/utils"
)

type account struct {
	name, email, password, specialty string
	role                             domain.Role
	inactive                         bool
}

var accounts = []account{
	{name: "Admin User", email: "admin@cms.com", password: "Admin@123", role: domain.RoleAdmin},
	{name: "John Smith", email: "instructor@cms.com", password: "Instructor@123", role: domain.RoleInstructor, specialty: "Web Development"},
	{name: "Jane Doe", email: "jane.instructor@cms.com", password: "Instructor@123", role: domain.RoleInstructor, specialty: "Data Science"},
	{name: "Mike Johnson", email: "mike.instructor@cms.com", password: "Instructor@123", role: domain.RoleInstructor, specialty: "Backend Development", inactive: true},
	{name: "John Doe", email: "user@example.com", password: "password", role: domain.RoleUser},
	{name: "Alice Johnson", email: "alice@example.com", password: "password", role: domain.RoleUser},
	{name: "Bob Wilson", email: "bob@example.com", password: "password", role: domain.RoleUser},
}

type course struct {
	title, desc, category, duration string
	owner                           string // 讲师邮箱
}

var courses = []course{
	{"Introduction to React", "Learn the basics of React development including components, state, and props.", "Web Development", "8 weeks", "instructor@cms.com"},
	{"Advanced JavaScript", "Master advanced JavaScript concepts including closures, promises, and async/await.", "Programming", "10 weeks", "jane.instructor@cms.com"},
	{"Node.js Backend Development", "Build scalable backend applications with Node.js and Express.", "Backend", "12 weeks", "mike.instructor@cms.com"},
	{"React Advanced Patterns", "Master advanced React patterns and techniques for professional development.", "Web Development", "6 weeks", "instructor@cms.com"},
}

// Run 整体在一个事务里；返回 false 表示已有数据被跳过
func Run(ctx context.Context, db *gorm.DB, bcryptCost int, l *zap.Logger) (bool, error) {
	if l == nil {
		l = zap.NewNop()
	}
	n, err := repo.NewUserRepo(db).Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		l.Info("seed skipped, users exist", zap.Int64("users", n))
		return false, nil
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repo.NewUserRepo(tx)
		crs := repo.NewCourseRepo(tx)
		ens := repo.NewEnrollmentRepo(tx)

		ids := make(map[string]uint, len(accounts))
		for _, a := range accounts {
			hash, err := utils.HashPassword(a.password, bcryptCost)
			if err != nil {
				return fmt.Errorf("hash %s: %w", a.email, err)
			}
			u := &domain.User{Name: a.name, Email: a.email, PasswordHash: hash, Role: a.role, IsActive: !a.inactive}
			if a.specialty != "" {
				sp := a.specialty
				u.Specialization = &sp
			}
			if err := users.Create(ctx, u); err != nil {
				return err
			}
			ids[a.email] = u.ID
		}

		var first uint
		for i, c := range courses {
			m := &domain.Course{
				Title: c.title, Description: c.desc, Category: c.category, Duration: c.duration,
				InstructorID: ids[c.owner], IsActive: true,
			}
			if err := crs.Create(ctx, m); err != nil {
				return err
			}
			if i == 0 {
				first = m.ID
			}
		}

		return ens.Create(ctx, &domain.Enrollment{
			UserID:     ids["user@example.com"],
			CourseID:   first,
			EnrolledAt: time.Now().UTC(),
			IsActive:   true,
		})
	})
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	l.Info("seed applied", zap.Int("users", len(accounts)), zap.Int("courses", len(courses)))
	return true, nil
}
