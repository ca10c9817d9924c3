package usecase

import (
	"context"
	"errors"
	"strings"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	dishNameMaxLen        = 100
	dishDescriptionMaxLen = 500
)

type DishUsecase struct {
	dishes repo.DishRepository
	tx     repo.TransactionManager
}

// DI
func NewDishUsecase(dishes repo.DishRepository, tx repo.TransactionManager) *DishUsecase {
	return &DishUsecase{dishes: dishes, tx: tx}
}

// POST /dishes の入力
type DishInput struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	IsAvailable *bool           `json:"is_available"` // 省略時はtrue
}

type PizzaInput struct {
	DishInput
	SizeCm      int    `json:"size_cm"`
	DoughType   string `json:"dough_type"`
	ExtraCheese bool   `json:"extra_cheese"`
	Toppings    string `json:"toppings"`
}

type SaladInput struct {
	DishInput
	IsVegetarian bool   `json:"is_vegetarian"`
	Calories     int    `json:"calories"`
	Dressing     string `json:"dressing"`
	Ingredients  string `json:"ingredients"`
}

// PUT の入力（nilは変更しない）
type DishPatch struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	IsAvailable *bool            `json:"is_available"`
}

type PizzaPatch struct {
	DishPatch
	SizeCm      *int    `json:"size_cm"`
	DoughType   *string `json:"dough_type"`
	ExtraCheese *bool   `json:"extra_cheese"`
	Toppings    *string `json:"toppings"`
}

type SaladPatch struct {
	DishPatch
	IsVegetarian *bool   `json:"is_vegetarian"`
	Calories     *int    `json:"calories"`
	Dressing     *string `json:"dressing"`
	Ingredients  *string `json:"ingredients"`
}

func (u *DishUsecase) CreateDish(ctx context.Context, in DishInput) (model.Dish, error) {
	return u.create(ctx, newDish(model.DishKindPlain, in))
}

func (u *DishUsecase) CreatePizza(ctx context.Context, in PizzaInput) (model.Dish, error) {
	d := newDish(model.DishKindPizza, in.DishInput)
	d.Pizza = &model.Pizza{
		SizeCm:      in.SizeCm,
		DoughType:   strings.TrimSpace(in.DoughType),
		ExtraCheese: in.ExtraCheese,
		Toppings:    strings.TrimSpace(in.Toppings),
	}
	return u.create(ctx, d)
}

func (u *DishUsecase) CreateSalad(ctx context.Context, in SaladInput) (model.Dish, error) {
	d := newDish(model.DishKindSalad, in.DishInput)
	d.Salad = &model.Salad{
		IsVegetarian: in.IsVegetarian,
		Calories:     in.Calories,
		Dressing:     strings.TrimSpace(in.Dressing),
		Ingredients:  strings.TrimSpace(in.Ingredients),
	}
	return u.create(ctx, d)
}

func newDish(kind model.DishKind, in DishInput) model.Dish {
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}
	return model.Dish{
		Kind:        kind,
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price.Round(2),
		Description: strings.TrimSpace(in.Description),
		IsAvailable: available,
	}
}

func (u *DishUsecase) create(ctx context.Context, d model.Dish) (model.Dish, error) {
	if err := validateDish(d); err != nil {
		return model.Dish{}, err
	}
	if err := u.dishes.Create(ctx, &d); err != nil {
		return model.Dish{}, storageError(err)
	}
	return d, nil
}

func (u *DishUsecase) UpdateDish(ctx context.Context, actorUserID int64, dishID int64, p DishPatch) (model.Dish, error) {
	return u.update(ctx, actorUserID, dishID, nil, func(d *model.Dish) {
		applyDishPatch(d, p)
	})
}

// ピザ以外のIDなら404
func (u *DishUsecase) UpdatePizza(ctx context.Context, actorUserID int64, dishID int64, p PizzaPatch) (model.Dish, error) {
	kind := model.DishKindPizza
	return u.update(ctx, actorUserID, dishID, &kind, func(d *model.Dish) {
		applyDishPatch(d, p.DishPatch)
		if p.SizeCm != nil {
			d.Pizza.SizeCm = *p.SizeCm
		}
		if p.DoughType != nil {
			d.Pizza.DoughType = strings.TrimSpace(*p.DoughType)
		}
		if p.ExtraCheese != nil {
			d.Pizza.ExtraCheese = *p.ExtraCheese
		}
		if p.Toppings != nil {
			d.Pizza.Toppings = strings.TrimSpace(*p.Toppings)
		}
	})
}

// サラダ以外のIDなら404
func (u *DishUsecase) UpdateSalad(ctx context.Context, actorUserID int64, dishID int64, p SaladPatch) (model.Dish, error) {
	kind := model.DishKindSalad
	return u.update(ctx, actorUserID, dishID, &kind, func(d *model.Dish) {
		applyDishPatch(d, p.DishPatch)
		if p.IsVegetarian != nil {
			d.Salad.IsVegetarian = *p.IsVegetarian
		}
		if p.Calories != nil {
			d.Salad.Calories = *p.Calories
		}
		if p.Dressing != nil {
			d.Salad.Dressing = strings.TrimSpace(*p.Dressing)
		}
		if p.Ingredients != nil {
			d.Salad.Ingredients = strings.TrimSpace(*p.Ingredients)
		}
	})
}

func applyDishPatch(d *model.Dish, p DishPatch) {
	if p.Name != nil {
		d.Name = strings.TrimSpace(*p.Name)
	}
	if p.Price != nil {
		d.Price = p.Price.Round(2)
	}
	if p.Description != nil {
		d.Description = strings.TrimSpace(*p.Description)
	}
	if p.IsAvailable != nil {
		d.IsAvailable = *p.IsAvailable
	}
}

// 取得→変更→検証→保存。価格が変わったら監査ログを残す
func (u *DishUsecase) update(ctx context.Context, actorUserID int64, dishID int64, kind *model.DishKind, apply func(d *model.Dish)) (model.Dish, error) {
	if dishID <= 0 {
		return model.Dish{}, NewValidationError("invalid dish id")
	}

	var out model.Dish
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		d, err := r.Dishes().FindByID(ctx, dishID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("dish not found")
		}
		if err != nil {
			return storageError(err)
		}
		if kind != nil && d.Kind != *kind {
			return NewNotFoundError(string(*kind) + " not found")
		}

		//バリアント行が欠けていても空で補う（検証で弾く）
		switch d.Kind {
		case model.DishKindPizza:
			if d.Pizza == nil {
				d.Pizza = &model.Pizza{DishID: d.ID}
			}
		case model.DishKindSalad:
			if d.Salad == nil {
				d.Salad = &model.Salad{DishID: d.ID}
			}
		}

		before := d.Price
		apply(&d)
		if err := validateDish(d); err != nil {
			return err
		}

		if err := r.Dishes().Update(ctx, d); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFoundError("dish not found")
			}
			return storageError(err)
		}

		if !before.Equal(d.Price) {
			if err := r.AuditLogs().Append(ctx, model.AuditLog{
				ActorUserID:  actorUserID,
				Action:       model.AuditActionUpdateDishPrice,
				ResourceType: model.AuditResourceDish,
				ResourceID:   d.ID,
				BeforeJSON:   auditJSON(map[string]any{"price": before.StringFixed(2)}),
				AfterJSON:    auditJSON(map[string]any{"price": d.Price.StringFixed(2)}),
			}); err != nil {
				return storageError(err)
			}
		}

		out = d
		return nil
	})
	if err != nil {
		return model.Dish{}, err
	}
	return out, nil
}

// 注文明細から参照されている料理は消せない（409）
func (u *DishUsecase) Delete(ctx context.Context, dishID int64) error {
	if dishID <= 0 {
		return NewValidationError("invalid dish id")
	}
	err := u.dishes.Delete(ctx, dishID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return NewNotFoundError("dish not found")
	case errors.Is(err, repo.ErrReferenced):
		return NewConflictError("dish is referenced by existing orders")
	default:
		return storageError(err)
	}
}

func (u *DishUsecase) GetByID(ctx context.Context, dishID int64) (model.Dish, error) {
	if dishID <= 0 {
		return model.Dish{}, NewValidationError("invalid dish id")
	}
	d, err := u.dishes.FindByID(ctx, dishID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Dish{}, NewNotFoundError("dish not found")
	}
	if err != nil {
		return model.Dish{}, storageError(err)
	}
	return d, nil
}

// typeFilter: "" / dish / pizza / salad
func (u *DishUsecase) ListAll(ctx context.Context, typeFilter string) ([]model.Dish, error) {
	q := repo.DishListQuery{}
	if strings.TrimSpace(typeFilter) != "" {
		kind, ok := model.ParseDishKind(typeFilter)
		if !ok {
			return []model.Dish{}, NewValidationError("type must be one of dish, pizza, salad")
		}
		q.Kind = &kind
	}
	return u.list(ctx, q)
}

func (u *DishUsecase) ListAvailable(ctx context.Context) ([]model.Dish, error) {
	return u.list(ctx, repo.DishListQuery{AvailableOnly: true})
}

func (u *DishUsecase) ListVegetarianSalads(ctx context.Context) ([]model.Dish, error) {
	kind := model.DishKindSalad
	return u.list(ctx, repo.DishListQuery{Kind: &kind, VegetarianOnly: true})
}

func (u *DishUsecase) ListByPriceRange(ctx context.Context, minPrice, maxPrice *decimal.Decimal) ([]model.Dish, error) {
	if minPrice != nil && minPrice.IsNegative() {
		return []model.Dish{}, NewValidationError("min must be >= 0")
	}
	if maxPrice != nil && maxPrice.IsNegative() {
		return []model.Dish{}, NewValidationError("max must be >= 0")
	}
	if minPrice != nil && maxPrice != nil && minPrice.GreaterThan(*maxPrice) {
		return []model.Dish{}, NewValidationError("min must be <= max")
	}
	return u.list(ctx, repo.DishListQuery{MinPrice: minPrice, MaxPrice: maxPrice})
}

func (u *DishUsecase) list(ctx context.Context, q repo.DishListQuery) ([]model.Dish, error) {
	ds, err := u.dishes.List(ctx, q)
	if err != nil {
		return []model.Dish{}, storageError(err)
	}
	return ds, nil
}

// 作成・更新の共通チェック
func validateDish(d model.Dish) error {
	if d.Name == "" {
		return NewValidationError("name is required")
	}
	if len(d.Name) > dishNameMaxLen {
		return NewValidationError("name is too long")
	}
	if !d.Price.IsPositive() {
		return NewValidationError("price must be greater than 0")
	}
	if len(d.Description) > dishDescriptionMaxLen {
		return NewValidationError("description is too long")
	}
	if !d.VariantConsistent() {
		return NewValidationError("dish variant does not match its type")
	}

	switch v := d.Variant().(type) {
	case *model.Pizza:
		if !model.ValidPizzaSize(v.SizeCm) {
			return NewValidationError("size_cm must be between 20 and 50")
		}
		if v.DoughType == "" {
			return NewValidationError("dough_type is required")
		}
	case *model.Salad:
		if !model.ValidSaladCalories(v.Calories) {
			return NewValidationError("calories must be between 0 and 2000")
		}
	}
	return nil
}
