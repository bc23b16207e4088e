package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"course-management-api/internal/core/auth"
	"course-management-api/internal/domain"
	"course-management-api/pkg/utils"
)

type UserOptions struct {
	BcryptCost int
	// DefaultInstructorPassword 管理员新建讲师时的初始密码
	DefaultInstructorPassword string
}

type UserService struct {
	users   domain.UserRepository
	courses domain.CourseRepository
	opts    UserOptions
	log     *zap.Logger
}

func NewUserService(users domain.UserRepository, courses domain.CourseRepository, opts UserOptions, l *zap.Logger) *UserService {
	if opts.DefaultInstructorPassword == "" {
		opts.DefaultInstructorPassword = "Instructor@123"
	}
	return &UserService{users: users, courses: courses, opts: opts, log: nopIfNil(l)}
}

type CreateInstructorInput struct {
	Name           string
	Email          string
	Specialization string
}

// Profile 只能看自己
func (s *UserService) Profile(ctx context.Context, id *auth.Identity) (*domain.User, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("User not found")
	}
	return u, nil
}

func (s *UserService) ListInstructors(ctx context.Context) ([]domain.User, error) {
	return s.users.ListByRole(ctx, domain.RoleInstructor)
}

func (s *UserService) ListStudents(ctx context.Context) ([]domain.User, error) {
	return s.users.ListByRole(ctx, domain.RoleUser)
}

func (s *UserService) CreateInstructor(ctx context.Context, in CreateInstructorInput) (*domain.User, error) {
	spec, err := field("Specialization", in.Specialization, 100)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, in.Name, in.Email, s.opts.DefaultInstructorPassword, domain.RoleInstructor,
		func(u *domain.User) { u.Specialization = &spec })
}

// CreateAdmin 运维命令使用，HTTP 不暴露
func (s *UserService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	if len(password) < 6 {
		return nil, domain.Validation("Password must be at least 6 characters")
	}
	return s.create(ctx, name, email, password, domain.RoleAdmin)
}

func (s *UserService) create(ctx context.Context, name, email, password string, role domain.Role, opts ...func(*domain.User)) (*domain.User, error) {
	name, err := field("Name", name, 100)
	if err != nil {
		return nil, err
	}
	if email, err = field("Email", email, 100); err != nil {
		return nil, err
	}
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}
	hash, err := utils.HashPassword(password, s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role, IsActive: true}
	for _, o := range opts {
		o(u)
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConstraint) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	s.log.Info("user created", zap.Uint("uid", u.ID), zap.Stringer("role", role))
	return u, nil
}

func (s *UserService) instructor(ctx context.Context, userID uint) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Role != domain.RoleInstructor {
		return nil, domain.NotFound("Instructor not found")
	}
	return u, nil
}

// ToggleInstructorStatus 返回切换后的讲师
func (s *UserService) ToggleInstructorStatus(ctx context.Context, userID uint) (*domain.User, error) {
	u, err := s.instructor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetActive(ctx, u.ID, !u.IsActive); err != nil {
		return nil, err
	}
	u.IsActive = !u.IsActive
	s.log.Info("instructor status changed", zap.Uint("uid", u.ID), zap.Bool("active", u.IsActive))
	return u, nil
}

// DeleteInstructor 名下有课程（含已下架）时拒绝删除
func (s *UserService) DeleteInstructor(ctx context.Context, userID uint) error {
	u, err := s.instructor(ctx, userID)
	if err != nil {
		return err
	}
	n, err := s.courses.CountByInstructor(ctx, u.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.Validation("Cannot delete instructor with existing courses")
	}
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return err
	}
	s.log.Info("instructor deleted", zap.Uint("uid", u.ID))
	return nil
}
