package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"course-management-api/internal/core/auth"
	"course-management-api/internal/core/database/dbtest"
	"course-management-api/internal/core/server"
	"course-management-api/internal/domain"
	"course-management-api/internal/repo"
	"course-management-api/internal/service"
	"course-management-api/pkg/utils"
)

type api struct {
	t   *testing.T
	r   *gin.Engine
	jwt *auth.JWTer
	rp  *repo.UserRepo
}

func newAPI(t *testing.T) *api {
	db := dbtest.New(t)
	j := &auth.JWTer{Secret: []byte("router-test"), Issuer: "test", TTL: time.Hour}
	r := NewAPIEngine(Deps{
		DB:     db,
		JWT:    j,
		Server: server.Options{Mode: gin.TestMode},
		Limits: Limits{RPS: 10000, Burst: 10000},
		Auth:   service.AuthOptions{BcryptCost: bcrypt.MinCost},
		Users:  service.UserOptions{BcryptCost: bcrypt.MinCost},
	})
	return &api{t: t, r: r, jwt: j, rp: repo.NewUserRepo(db)}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

type authBody struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    domain.User `json:"user"`
	Message string      `json:"message"`
}

// seedUser 直接落库并签发 token
func (a *api) seedUser(name, email string, role domain.Role) (uint, string) {
	a.t.Helper()
	hash, err := utils.HashPassword("pw123456", bcrypt.MinCost)
	require.NoError(a.t, err)
	u := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role, IsActive: true}
	require.NoError(a.t, a.rp.Create(context.Background(), u))
	tok, err := a.jwt.Issue(u.ID, role, name)
	require.NoError(a.t, err)
	return u.ID, tok
}

func TestAPI_EndToEndScenario(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Alice", "email": "alice@example.com", "password": "Secr3t!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reg := decode[authBody](t, w)
	assert.True(t, reg.Success)
	assert.Equal(t, domain.RoleUser, reg.User.Role)
	alice := reg.Token

	_, bob := a.seedUser("bob", "bob@cms.com", domain.RoleInstructor)
	w = a.do(http.MethodPost, "/api/courses", bob, gin.H{"title": "Intro", "description": "Intro course", "category": "Go", "duration": "4 weeks"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[domain.CourseView](t, w)
	assert.Equal(t, "Intro", created.Title)
	assert.Equal(t, "bob", created.Instructor)
	assert.Equal(t, int64(0), created.EnrollmentCount)

	course := fmt.Sprintf("/api/courses/%d", created.ID)
	count := func() int64 {
		w := a.do(http.MethodGet, course, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		return decode[domain.CourseView](t, w).EnrollmentCount
	}
	enrolled := func() bool {
		w := a.do(http.MethodGet, course+"/enrollment-status", alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		return decode[map[string]bool](t, w)["isEnrolled"]
	}

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, course+"/enroll", alice, nil).Code)
	assert.Equal(t, int64(1), count())
	assert.True(t, enrolled())

	w = a.do(http.MethodPost, course+"/enroll", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode[envelope](t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "Already enrolled in this course", env.Message)

	require.Equal(t, http.StatusOK, a.do(http.MethodDelete, course+"/unenroll", alice, nil).Code)
	assert.Equal(t, int64(0), count())
	assert.False(t, enrolled())
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, course+"/unenroll", alice, nil).Code)

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, course+"/enroll", alice, nil).Code)
	assert.Equal(t, int64(1), count())

	w = a.do(http.MethodGet, "/api/users/my-courses", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.CourseView](t, w), 1)
}

func TestAPI_LoginFlow(t *testing.T) {
	a := newAPI(t)
	a.seedUser("Bob", "bob@cms.com", domain.RoleInstructor)

	w := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "bob@cms.com", "password": "pw123456", "role": "Instructor"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[authBody](t, w)
	claims, err := a.jwt.Parse(body.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleInstructor, claims.Role)
	assert.Empty(t, w.Header().Get("Set-Cookie"))

	w = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "bob@cms.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode[envelope](t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid email or password", env.Message)
	assert.NotContains(t, w.Body.String(), "token")

	w = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "bob@cms.com", "password": "pw123456", "role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_RegisterDuplicate(t *testing.T) {
	a := newAPI(t)
	body := gin.H{"name": "Alice", "email": "alice@example.com", "password": "Secr3t!"}
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/auth/register", "", body).Code)

	w := a.do(http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already exists", decode[envelope](t, w).Message)
}

func TestAPI_UnauthenticatedVsForbidden(t *testing.T) {
	a := newAPI(t)
	_, user := a.seedUser("Alice", "alice@example.com", domain.RoleUser)
	_, admin := a.seedUser("Admin", "admin@cms.com", domain.RoleAdmin)

	w := a.do(http.MethodGet, "/api/courses/all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, decode[envelope](t, w).Success)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/courses/all", "garbage", nil).Code)

	expired := &auth.JWTer{Secret: a.jwt.Secret, Issuer: a.jwt.Issuer, TTL: -time.Minute}
	old, err := expired.Issue(1, domain.RoleAdmin, "Admin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/courses/all", old, nil).Code)

	w = a.do(http.MethodGet, "/api/courses/all", user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden", decode[envelope](t, w).Details)

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/courses/all", admin, nil).Code)

	// 公开接口带坏 token 也能访问
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/courses", "garbage", nil).Code)
}

func TestAPI_OwnershipAndStatuses(t *testing.T) {
	a := newAPI(t)
	_, bob := a.seedUser("Bob", "bob@cms.com", domain.RoleInstructor)
	janeID, jane := a.seedUser("Jane", "jane@cms.com", domain.RoleInstructor)

	w := a.do(http.MethodPost, "/api/courses", bob, gin.H{"title": "Intro", "description": "d", "category": "c", "duration": "1 week"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[domain.CourseView](t, w).ID
	path := fmt.Sprintf("/api/courses/%d", id)
	update := gin.H{"title": "Hijack", "description": "d", "category": "c", "duration": "1 week"}

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPut, path, jane, update).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, path, jane, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPut, "/api/courses/999", bob, update).Code)

	w = a.do(http.MethodGet, path, "", nil)
	assert.Equal(t, "Intro", decode[domain.CourseView](t, w).Title)

	w = a.do(http.MethodPut, path, bob, gin.H{"title": "Intro 2", "description": "d", "category": "c", "duration": "1 week"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, fmt.Sprintf("/api/courses/instructor/%d", janeID), bob, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, fmt.Sprintf("/api/courses/instructor/%d", janeID), jane, nil).Code)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodPut, path+"/archive", bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, path, "", nil).Code)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, path, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, path, bob, nil).Code)
}

func TestAPI_Validation(t *testing.T) {
	a := newAPI(t)
	_, bob := a.seedUser("Bob", "bob@cms.com", domain.RoleInstructor)

	w := a.do(http.MethodPost, "/api/courses", bob, gin.H{"title": "", "description": "d"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode[envelope](t, w)
	assert.Equal(t, "Validation failed", env.Message)
	details, ok := env.Details.([]any)
	require.True(t, ok, "details should list fields: %v", env.Details)
	assert.NotEmpty(t, details)
	assert.Contains(t, w.Body.String(), `"field":"title"`)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/courses/abc", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "x", "email": "not-an-email", "password": "123456"}).Code)
}

func TestAPI_AdminInstructorLifecycle(t *testing.T) {
	a := newAPI(t)
	_, admin := a.seedUser("Admin", "admin@cms.com", domain.RoleAdmin)

	w := a.do(http.MethodPost, "/api/users/instructors", admin, gin.H{"name": "Jane", "email": "jane@cms.com", "specialization": "Data"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	jane := decode[domain.User](t, w)
	assert.Equal(t, domain.RoleInstructor, jane.Role)
	assert.NotContains(t, w.Body.String(), "password")

	w = a.do(http.MethodPost, "/api/users/instructors", admin, gin.H{"name": "J2", "email": "jane@cms.com", "specialization": "Data"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPut, fmt.Sprintf("/api/users/instructors/%d/toggle-status", jane.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[domain.User](t, w).IsActive)

	// 讲师用默认密码登录并建课，之后不能被删除
	w = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "jane@cms.com", "password": "Instructor@123"})
	require.Equal(t, http.StatusOK, w.Code)
	janeTok := decode[authBody](t, w).Token
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/courses", janeTok, gin.H{"title": "ML", "description": "d", "category": "c", "duration": "2 weeks"}).Code)

	w = a.do(http.MethodDelete, fmt.Sprintf("/api/users/instructors/%d", jane.ID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot delete instructor with existing courses", decode[envelope](t, w).Message)

	w = a.do(http.MethodGet, "/api/users/instructors", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.User](t, w), 1)

	w = a.do(http.MethodGet, "/api/users/instructor-courses", janeTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.CourseView](t, w), 1)

	w = a.do(http.MethodGet, "/api/users/profile", janeTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane@cms.com", decode[domain.User](t, w).Email)
}

func TestAPI_HealthMetricsAndNoRoute(t *testing.T) {
	a := newAPI(t)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/health", "", nil).Code)

	w := a.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	w = a.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decode[envelope](t, w).Success)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
