package repository

import (
	"context"
	"time"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func itemsByID(db *gorm.DB) *gorm.DB {
	return db.Order("order_items.id asc")
}

// 注文と明細をまとめて作る
func (r *OrderGormRepository) Create(ctx context.Context, o *model.Order) error {
	if o.Version == 0 {
		o.Version = 1
	}
	return translateError(r.db.WithContext(ctx).Omit("Customer").Create(o).Error)
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", itemsByID).
		Preload("Customer").
		Where("id = ?", orderID).
		First(&o).Error
	if err != nil {
		return model.Order{}, translateError(err)
	}
	return o, nil
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).
		Preload("Items", itemsByID).
		Preload("Customer")

	//customer_id 絞り込み
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	//status 絞り込み
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var orders []model.Order
	if err := q.Order("created_at desc").Order("id desc").Find(&orders).Error; err != nil {
		return []model.Order{}, translateError(err)
	}
	return orders, nil
}

// version一致のときだけ更新して+1する
func (r *OrderGormRepository) UpdateVersioned(ctx context.Context, o *model.Order) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]interface{}{
			"status":           o.Status,
			"delivery_address": o.DeliveryAddress,
			"total_price":      o.TotalPrice,
			"version":          gorm.Expr("version + ?", 1),
			"updated_at":       now,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrVersionConflict
	}
	o.Version++
	o.UpdatedAt = now
	return nil
}

// 明細を消してから注文を消す（version不一致ならロールバック）
func (r *OrderGormRepository) DeleteVersioned(ctx context.Context, orderID int64, version int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
			return translateError(err)
		}
		res := tx.Where("id = ? AND version = ?", orderID, version).Delete(&model.Order{})
		if res.Error != nil {
			return translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return repo.ErrVersionConflict
		}
		return nil
	})
}

func (r *OrderGormRepository) Count(ctx context.Context, status *model.OrderStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, translateError(err)
	}
	return n, nil
}

func (r *OrderGormRepository) SumTotal(ctx context.Context, status *model.OrderStatus) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).Select("COALESCE(SUM(total_price), 0)")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var sum decimal.Decimal
	if err := q.Row().Scan(&sum); err != nil {
		return decimal.Zero, translateError(err)
	}
	return sum, nil
}
