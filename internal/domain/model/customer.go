package model

import (
	"time"

	"gorm.io/datatypes"
)

// 顧客
type Customer struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName string `gorm:"type:varchar(100);not null" json:"full_name"`

	//電話番号（一意）
	PhoneNumber string `gorm:"type:varchar(20);not null;uniqueIndex" json:"phone_number"`

	//ポイント（0以上）
	LoyaltyPoints int `gorm:"not null;default:0;index" json:"loyalty_points"`

	//1対1のプロフィール（無くてもよい）
	Profile *CustomerProfile `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 顧客プロフィール
type CustomerProfile struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID int64 `gorm:"not null;uniqueIndex" json:"customer_id"`

	//メール（一意）
	Email string `gorm:"type:varchar(100);not null;uniqueIndex" json:"email"`

	DateOfBirth datatypes.Date `gorm:"not null" json:"date_of_birth"`

	//住所
	Address string `gorm:"type:varchar(200)" json:"address"`

	//支払い方法
	PreferredPaymentMethod string `gorm:"type:varchar(50)" json:"preferred_payment_method"`
}
