package model

import "time"

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleCustomer Role = "Customer"
)

// ロール文字列のチェック
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCustomer:
		return true
	}
	return false
}

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	UserName     string `gorm:"type:varchar(50);uniqueIndex;not null" json:"user_name"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	FullName     string `gorm:"type:varchar(100)" json:"full_name"`
	PhoneNumber  string `gorm:"type:varchar(20)" json:"phone_number"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'Customer'" json:"role"`

	//強制ログアウトで+1（古いトークンを無効化）
	TokenVersion int `gorm:"not null;default:0" json:"-"`

	IsActive    bool       `gorm:"not null" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
