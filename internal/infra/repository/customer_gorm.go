package repository

import (
	"context"
	"errors"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"

	"gorm.io/gorm"
)

type CustomerGormRepository struct {
	db *gorm.DB
}

// DI
func NewCustomerGormRepository(db *gorm.DB) *CustomerGormRepository {
	return &CustomerGormRepository{db: db}
}

func (r *CustomerGormRepository) Create(ctx context.Context, c *model.Customer) error {
	return translateError(r.db.WithContext(ctx).Create(c).Error)
}

// IDで顧客を取得（プロフィール込み）
func (r *CustomerGormRepository) FindByID(ctx context.Context, id int64) (model.Customer, error) {
	var c model.Customer
	if err := r.db.WithContext(ctx).Preload("Profile").First(&c, id).Error; err != nil {
		return model.Customer{}, translateError(err)
	}
	return c, nil
}

// 電話番号で顧客を取得
func (r *CustomerGormRepository) FindByPhone(ctx context.Context, phone string) (model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("phone_number = ?", phone).
		First(&c).Error
	if err != nil {
		return model.Customer{}, translateError(err)
	}
	return c, nil
}

func (r *CustomerGormRepository) List(ctx context.Context) ([]model.Customer, error) {
	var cs []model.Customer
	if err := r.db.WithContext(ctx).Preload("Profile").Order("id asc").Find(&cs).Error; err != nil {
		return []model.Customer{}, translateError(err)
	}
	return cs, nil
}

// ポイント上位n件（同点はID順）
func (r *CustomerGormRepository) TopByLoyalty(ctx context.Context, n int) ([]model.Customer, error) {
	var cs []model.Customer
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Order("loyalty_points desc").
		Order("id asc").
		Limit(n).
		Find(&cs).Error
	if err != nil {
		return []model.Customer{}, translateError(err)
	}
	return cs, nil
}

func (r *CustomerGormRepository) Update(ctx context.Context, c model.Customer) error {
	res := r.db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"full_name":      c.FullName,
		"phone_number":   c.PhoneNumber,
		"loyalty_points": c.LoyaltyPoints,
	})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 顧客の削除（注文が残っていれば消さない）
func (r *CustomerGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orders int64
		if err := tx.Model(&model.Order{}).Where("customer_id = ?", id).Count(&orders).Error; err != nil {
			return translateError(err)
		}
		if orders > 0 {
			return repo.ErrReferenced
		}

		if err := tx.Where("customer_id = ?", id).Delete(&model.CustomerProfile{}).Error; err != nil {
			return translateError(err)
		}
		res := tx.Delete(&model.Customer{}, id)
		if res.Error != nil {
			return translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

// プロフィールの作成 or 上書き
func (r *CustomerGormRepository) UpsertProfile(ctx context.Context, p *model.CustomerProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.CustomerProfile
		err := tx.Where("customer_id = ?", p.CustomerID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return translateError(tx.Create(p).Error)
		}
		if err != nil {
			return translateError(err)
		}

		p.ID = existing.ID
		return translateError(tx.Save(p).Error)
	})
}
