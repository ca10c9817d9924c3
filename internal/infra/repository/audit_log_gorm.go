package repository

import (
	"context"
	"fmt"
	"time"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"

	"gorm.io/gorm"
)

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

func (r *AuditLogGormRepository) Append(ctx context.Context, entry model.AuditLog) error {
	if _, ok := model.ParseAuditAction(string(entry.Action)); !ok {
		return fmt.Errorf("%w: action %q", repo.ErrInvalidAuditEntry, entry.Action)
	}
	if _, ok := model.ParseAuditResourceType(string(entry.ResourceType)); !ok {
		return fmt.Errorf("%w: resource_type %q", repo.ErrInvalidAuditEntry, entry.ResourceType)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return translateError(r.db.WithContext(ctx).Create(&entry).Error)
}

func (r *AuditLogGormRepository) Search(ctx context.Context, q repo.AuditLogQuery) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := r.db.WithContext(ctx).
		Scopes(
			byActor(q.ActorUserID),
			byActions(q.Actions),
			byResource(q.Resource, q.ResourceID),
			createdBetween(q.Since, q.Until),
			paginate(q.Page),
		).
		Order("created_at DESC").
		Order("id DESC").
		Find(&logs).Error
	if err != nil {
		return []model.AuditLog{}, translateError(err)
	}
	return logs, nil
}

func byActor(actorUserID *int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actorUserID == nil {
			return db
		}
		return db.Where("actor_user_id = ?", *actorUserID)
	}
}

func byActions(actions []model.AuditAction) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(actions) == 0 {
			return db
		}
		return db.Where("action IN ?", actions)
	}
}

// resource_idだけの指定も受ける
func byResource(resource model.AuditResourceType, id *int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if resource != "" {
			db = db.Where("resource_type = ?", resource)
		}
		if id != nil {
			db = db.Where("resource_id = ?", *id)
		}
		return db
	}
}

func createdBetween(since *time.Time, until *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if since != nil {
			db = db.Where("created_at >= ?", *since)
		}
		if until != nil {
			db = db.Where("created_at <= ?", *until)
		}
		return db
	}
}

func paginate(p repo.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		p = p.Normalize()
		return db.Limit(p.Limit).Offset(p.Offset)
	}
}
