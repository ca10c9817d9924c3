package model

import (
	"strings"
	"time"
)

// 注文ステータス更新、注文削除、価格変更など。
type AuditAction string

const (
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//注文を削除した操作。
	AuditActionDeleteOrder AuditAction = "DELETE_ORDER"
	//料理の価格を変えた操作。
	AuditActionUpdateDishPrice AuditAction = "UPDATE_DISH_PRICE"
	//強制ログアウト。
	AuditActionForceLogout AuditAction = "FORCE_LOGOUT"
)

// 大文字小文字は問わない
func ParseAuditAction(s string) (AuditAction, bool) {
	switch a := AuditAction(strings.ToUpper(strings.TrimSpace(s))); a {
	case AuditActionUpdateOrderStatus, AuditActionDeleteOrder, AuditActionUpdateDishPrice, AuditActionForceLogout:
		return a, true
	}
	return "", false
}

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceDish  AuditResourceType = "dish"
	AuditResourceOrder AuditResourceType = "order"
	AuditResourceUser  AuditResourceType = "user"
)

func ParseAuditResourceType(s string) (AuditResourceType, bool) {
	switch r := AuditResourceType(strings.ToLower(strings.TrimSpace(s))); r {
	case AuditResourceDish, AuditResourceOrder, AuditResourceUser:
		return r, true
	}
	return "", false
}

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
