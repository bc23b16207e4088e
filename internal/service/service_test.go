package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"course-management-api/internal/core/auth"
	"course-management-api/internal/core/database/dbtest"
	"course-management-api/internal/domain"
	"course-management-api/internal/repo"
	"course-management-api/pkg/utils"
)

type env struct {
	db          *gorm.DB
	users       *repo.UserRepo
	courses     *repo.CourseRepo
	enrollments *repo.EnrollmentRepo
	jwt         *auth.JWTer

	auth       *AuthService
	course     *CourseService
	enrollment *EnrollmentService
	user       *UserService
}

func newEnv(t *testing.T) *env {
	db := dbtest.New(t)
	e := &env{
		db:          db,
		users:       repo.NewUserRepo(db),
		courses:     repo.NewCourseRepo(db),
		enrollments: repo.NewEnrollmentRepo(db),
		jwt:         &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour},
	}
	e.auth = NewAuthService(e.users, e.jwt, AuthOptions{BcryptCost: bcrypt.MinCost}, nil)
	e.course = NewCourseService(e.courses, e.users, nil)
	e.enrollment = NewEnrollmentService(e.enrollments, e.courses, nil)
	e.user = NewUserService(e.users, e.courses, UserOptions{BcryptCost: bcrypt.MinCost}, nil)
	return e
}

// account 直接落库，返回对应身份
func (e *env) account(t *testing.T, name, email, password string, role domain.Role) *auth.Identity {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role, IsActive: true}
	require.NoError(t, e.users.Create(context.Background(), u))
	return &auth.Identity{ID: u.ID, Role: role, Name: name}
}

func (e *env) newCourse(t *testing.T, owner *auth.Identity, title string) *domain.CourseView {
	t.Helper()
	v, err := e.course.Create(context.Background(), owner, CourseInput{
		Title: title, Description: title + " description", Category: "Programming", Duration: "4 weeks",
	})
	require.NoError(t, err)
	return v
}
