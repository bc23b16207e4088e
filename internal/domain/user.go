package domain

import (
	"context"
	"time"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Email          string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash   string    `gorm:"size:100;not null" json:"-"`
	Role           Role      `gorm:"type:varchar(16);not null;index" json:"role"`
	Specialization *string   `gorm:"size:100" json:"specialization"`
	IsActive       bool      `gorm:"not null" json:"isActive"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
	Count(ctx context.Context) (int64, error)
	SetActive(ctx context.Context, id uint, active bool) error
	// Delete 硬删除，连同该用户的选课记录（同一事务）
	Delete(ctx context.Context, id uint) error
}
