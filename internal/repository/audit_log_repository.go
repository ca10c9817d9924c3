package repository

import (
	"context"
	"time"

	"restaurant/internal/domain/model"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// 件数と開始位置
type Page struct {
	Limit  int
	Offset int
}

// 範囲外は既定値に寄せる
func (p Page) Normalize() Page {
	if p.Limit <= 0 || p.Limit > MaxPageLimit {
		p.Limit = DefaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// 監査ログの検索条件（ゼロ値は絞り込まない）
type AuditLogQuery struct {
	ActorUserID *int64
	Actions     []model.AuditAction
	Resource    model.AuditResourceType
	ResourceID  *int64
	Since       *time.Time
	Until       *time.Time
	Page        Page
}

// 料理・注文・ユーザー1件の変更履歴
func HistoryOf(resource model.AuditResourceType, id int64) AuditLogQuery {
	return AuditLogQuery{Resource: resource, ResourceID: &id, Page: Page{Limit: MaxPageLimit}}
}

type AuditLogRepository interface {
	//1件追記（action / resourceが不明ならErrInvalidAuditEntry）
	Append(ctx context.Context, entry model.AuditLog) error
	//新しい順
	Search(ctx context.Context, q AuditLogQuery) ([]model.AuditLog, error)
}
