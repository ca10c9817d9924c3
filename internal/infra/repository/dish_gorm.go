package repository

import (
	"context"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"

	"gorm.io/gorm"
)

type DishGormRepository struct {
	db *gorm.DB
}

// DI
func NewDishGormRepository(db *gorm.DB) *DishGormRepository {
	return &DishGormRepository{db: db}
}

// 料理の作成（Pizza / Saladがあれば同じINSERTの流れで作られる）
func (r *DishGormRepository) Create(ctx context.Context, d *model.Dish) error {
	return translateError(r.db.WithContext(ctx).Create(d).Error)
}

// IDで料理を取得
func (r *DishGormRepository) FindByID(ctx context.Context, id int64) (model.Dish, error) {
	var d model.Dish
	err := r.db.WithContext(ctx).
		Preload("Pizza").
		Preload("Salad").
		First(&d, id).Error
	if err != nil {
		return model.Dish{}, translateError(err)
	}
	return d, nil
}

// 条件付きの一覧（名前順）
func (r *DishGormRepository) List(ctx context.Context, q repo.DishListQuery) ([]model.Dish, error) {
	tx := r.db.WithContext(ctx).Model(&model.Dish{}).
		Preload("Pizza").
		Preload("Salad")

	//種類
	if q.Kind != nil {
		tx = tx.Where("dishes.kind = ?", *q.Kind)
	}
	//注文できるものだけ
	if q.AvailableOnly {
		tx = tx.Where("dishes.is_available = ?", true)
	}
	//ベジタリアンのサラダ
	if q.VegetarianOnly {
		tx = tx.Joins("JOIN salads ON salads.dish_id = dishes.id").
			Where("salads.is_vegetarian = ?", true)
	}
	//価格帯
	if q.MinPrice != nil {
		tx = tx.Where("dishes.price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("dishes.price <= ?", *q.MaxPrice)
	}

	var dishes []model.Dish
	if err := tx.Order("dishes.name asc").Order("dishes.id asc").Find(&dishes).Error; err != nil {
		return []model.Dish{}, translateError(err)
	}
	return dishes, nil
}

// 料理の更新。バリアントはKindに合うものだけ書く
func (r *DishGormRepository) Update(ctx context.Context, d model.Dish) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Dish{}).Where("id = ?", d.ID).Updates(map[string]interface{}{
			"name":         d.Name,
			"description":  d.Description,
			"price":        d.Price,
			"is_available": d.IsAvailable,
		})
		if res.Error != nil {
			return translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		switch d.Kind {
		case model.DishKindPizza:
			if d.Pizza == nil {
				return nil
			}
			d.Pizza.DishID = d.ID
			if err := tx.Save(d.Pizza).Error; err != nil {
				return translateError(err)
			}
		case model.DishKindSalad:
			if d.Salad == nil {
				return nil
			}
			d.Salad.DishID = d.ID
			if err := tx.Save(d.Salad).Error; err != nil {
				return translateError(err)
			}
		}
		return nil
	})
}

// 料理の削除（注文明細が参照していたら消さない）
func (r *DishGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&model.OrderItem{}).Where("dish_id = ?", id).Count(&refs).Error; err != nil {
			return translateError(err)
		}
		if refs > 0 {
			return repo.ErrReferenced
		}

		//バリアントを先に消す
		if err := tx.Where("dish_id = ?", id).Delete(&model.Pizza{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("dish_id = ?", id).Delete(&model.Salad{}).Error; err != nil {
			return translateError(err)
		}

		res := tx.Delete(&model.Dish{}, id)
		if res.Error != nil {
			return translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}
