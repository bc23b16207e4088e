package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"course-management-api/internal/core/auth"
	"course-management-api/internal/domain"
	"course-management-api/internal/policy"
	"course-management-api/internal/service"
	"course-management-api/internal/transport/http/ez"
)

type AuthHandler struct{ svc *service.AuthService }

func NewAuthHandler(svc *service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

func (*AuthHandler) Priority() int { return 10 }

type loginReq struct {
	Email    string `json:"email"    binding:"required,email,max=100"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"     binding:"omitempty,role"`
}

type registerReq struct {
	Name     string `json:"name"     binding:"required,max=100"`
	Email    string `json:"email"    binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

type authResp struct {
	Success bool         `json:"success"`
	Token   string       `json:"token,omitempty"`
	User    *domain.User `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

func toAuthResp(r *service.AuthResult) authResp {
	return authResp{Success: true, Token: r.Token, User: r.User, Message: r.Message}
}

func (h *AuthHandler) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[loginReq, authResp]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Op:     policy.Login,
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ *auth.Identity, in *loginReq) (authResp, error) {
			r, err := h.svc.Login(c.Request.Context(), service.LoginInput{Email: in.Email, Password: in.Password, Role: in.Role})
			if err != nil {
				return authResp{}, err
			}
			return toAuthResp(r), nil
		},
	})

	ez.RegisterAction(e, ez.Action[registerReq, authResp]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Op:     policy.Register,
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ *auth.Identity, in *registerReq) (authResp, error) {
			r, err := h.svc.Register(c.Request.Context(), service.RegisterInput{Name: in.Name, Email: in.Email, Password: in.Password})
			if err != nil {
				return authResp{}, err
			}
			return toAuthResp(r), nil
		},
	})
}
