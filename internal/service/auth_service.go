package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"course-management-api/internal/core/auth"
	"course-management-api/internal/domain"
	"course-management-api/pkg/utils"
)

type AuthOptions struct {
	BcryptCost int
	// BlockInactiveLogin 为 true 时停用账号不能登录
	BlockInactiveLogin bool
}

type AuthService struct {
	users domain.UserRepository
	jwt   *auth.JWTer
	opts  AuthOptions
	log   *zap.Logger
}

func NewAuthService(users domain.UserRepository, jwter *auth.JWTer, opts AuthOptions, l *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwter, opts: opts, log: nopIfNil(l)}
}

type LoginInput struct {
	Email    string
	Password string
	Role     string // 客户端声明的角色，可空；仅用于比对提示
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthResult struct {
	Token   string
	User    *domain.User
	Message string
}

// Login 只按邮箱+密码认证，返回库里的真实角色。
// 声明角色与真实角色不一致时照常登录，在 Message 中说明并记 warn。
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	var claimed domain.Role
	if r := strings.TrimSpace(in.Role); r != "" {
		var err error
		if claimed, err = domain.ParseRole(r); err != nil {
			return nil, domain.Validation("Invalid role")
		}
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.CheckPassword(in.Password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if s.opts.BlockInactiveLogin && !u.IsActive {
		return nil, domain.Forbidden("Account is deactivated")
	}

	tok, err := s.jwt.Issue(u.ID, u.Role, u.Name)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	msg := "Login successful"
	if claimed.Valid() && claimed != u.Role {
		s.log.Warn("login role mismatch",
			zap.Uint("uid", u.ID),
			zap.Stringer("claimed", claimed),
			zap.Stringer("actual", u.Role),
		)
		msg = fmt.Sprintf("Login successful. Signed in as %s (requested %s)", u.Role, claimed)
	}
	return &AuthResult{Token: tok, User: u, Message: msg}, nil
}

// Register 新账号一律为 User 角色
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name, err := field("Name", in.Name, 100)
	if err != nil {
		return nil, err
	}
	email, err := field("Email", in.Email, 100)
	if err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, domain.Validation("Password is required")
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	hash, err := utils.HashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册同一邮箱，唯一索引兜底
		if errors.Is(err, domain.ErrConstraint) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	tok, err := s.jwt.Issue(u.ID, u.Role, u.Name)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("user registered", zap.Uint("uid", u.ID))
	return &AuthResult{Token: tok, User: u, Message: "Registration successful"}, nil
}
