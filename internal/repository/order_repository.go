package repository

import (
	"context"

	"restaurant/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 注文一覧の条件
type OrderListFilter struct {
	CustomerID *int64
	Status     *model.OrderStatus
}

type OrderRepository interface {
	//明細も一緒に作る
	Create(ctx context.Context, o *model.Order) error
	//明細と顧客をpreload
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//新しい順
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)

	//versionが一致したときだけ更新する。ずれていたらErrVersionConflict。
	//成功したらo.Versionは+1される。
	UpdateVersioned(ctx context.Context, o *model.Order) error
	//versionが一致したときだけ明細ごと消す
	DeleteVersioned(ctx context.Context, orderID int64, version int64) error

	//集計（statusがnilなら全件）
	Count(ctx context.Context, status *model.OrderStatus) (int64, error)
	SumTotal(ctx context.Context, status *model.OrderStatus) (decimal.Decimal, error)
}
