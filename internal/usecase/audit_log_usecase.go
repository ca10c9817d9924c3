package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

type AuditLogUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditLogUsecase(logs repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs}
}

// GET /audit-logs のクエリ（文字列のまま受けてここで検証）
type ListAuditLogsInput struct {
	Action       string
	ResourceType string
	ResourceID   *int64
	ActorUserID  *int64
	From         string
	To           string
	Limit        int
	Offset       int
}

func (u *AuditLogUsecase) List(ctx context.Context, in ListAuditLogsInput) ([]model.AuditLog, error) {
	if in.Limit < 0 || in.Limit > repo.MaxPageLimit {
		return []model.AuditLog{}, NewValidationError("limit must be between 1 and 200")
	}
	if in.Offset < 0 {
		return []model.AuditLog{}, NewValidationError("offset must be >= 0")
	}

	q := repo.AuditLogQuery{
		ActorUserID: in.ActorUserID,
		ResourceID:  in.ResourceID,
		Page:        repo.Page{Limit: in.Limit, Offset: in.Offset},
	}
	if strings.TrimSpace(in.Action) != "" {
		action, ok := model.ParseAuditAction(in.Action)
		if !ok {
			return []model.AuditLog{}, NewValidationError("unknown action")
		}
		q.Actions = []model.AuditAction{action}
	}
	if strings.TrimSpace(in.ResourceType) != "" {
		resource, ok := model.ParseAuditResourceType(in.ResourceType)
		if !ok {
			return []model.AuditLog{}, NewValidationError("resource_type must be one of dish, order, user")
		}
		q.Resource = resource
	}

	//期間はRFC3339
	var ok bool
	if q.Since, ok = parseDateTimeRFC3339(in.From); !ok {
		return []model.AuditLog{}, NewValidationError("from must be RFC3339")
	}
	if q.Until, ok = parseDateTimeRFC3339(in.To); !ok {
		return []model.AuditLog{}, NewValidationError("to must be RFC3339")
	}

	return u.search(ctx, q)
}

// 1件分の変更履歴（新しい順）
func (u *AuditLogUsecase) History(ctx context.Context, resourceType string, resourceID int64) ([]model.AuditLog, error) {
	resource, ok := model.ParseAuditResourceType(resourceType)
	if !ok {
		return []model.AuditLog{}, NewValidationError("resource_type must be one of dish, order, user")
	}
	if resourceID <= 0 {
		return []model.AuditLog{}, NewValidationError("invalid resource id")
	}
	return u.search(ctx, repo.HistoryOf(resource, resourceID))
}

func (u *AuditLogUsecase) search(ctx context.Context, q repo.AuditLogQuery) ([]model.AuditLog, error) {
	logs, err := u.logs.Search(ctx, q)
	if err != nil {
		return []model.AuditLog{}, storageError(err)
	}
	return logs, nil
}

// 空ならnil。形式違いはfalse
func parseDateTimeRFC3339(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// 監査ログ用のJSON文字列
func auditJSON(v map[string]any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
