package repository

import (
	"context"

	"restaurant/internal/domain/model"
)

// 顧客とプロフィールの保存・取得の約束。
type CustomerRepository interface {
	//電話番号が重複ならErrConflict
	Create(ctx context.Context, c *model.Customer) error
	//プロフィール込み
	FindByID(ctx context.Context, id int64) (model.Customer, error)
	FindByPhone(ctx context.Context, phone string) (model.Customer, error)
	List(ctx context.Context) ([]model.Customer, error)
	//ポイントの多い順にn件
	TopByLoyalty(ctx context.Context, n int) ([]model.Customer, error)
	Update(ctx context.Context, c model.Customer) error
	//注文があればErrReferenced
	Delete(ctx context.Context, id int64) error
	//無ければ作る、あれば上書き
	UpsertProfile(ctx context.Context, p *model.CustomerProfile) error
}
