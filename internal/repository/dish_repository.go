package repository

import (
	"context"

	"restaurant/internal/domain/model"

	"github.com/shopspring/decimal"
)

// メニュー一覧の条件（nilは絞り込まない）
type DishListQuery struct {
	Kind           *model.DishKind
	AvailableOnly  bool
	VegetarianOnly bool
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
}

// 料理（ピザ・サラダ含む）の保存・取得の約束。
type DishRepository interface {
	//バリアントも一緒に作る
	Create(ctx context.Context, d *model.Dish) error
	//バリアントをpreloadして返す
	FindByID(ctx context.Context, id int64) (model.Dish, error)
	//名前順
	List(ctx context.Context, q DishListQuery) ([]model.Dish, error)
	//本体とバリアントを更新
	Update(ctx context.Context, d model.Dish) error
	//注文明細から参照されていればErrReferenced
	Delete(ctx context.Context, id int64) error
}
