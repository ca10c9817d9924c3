package repository

import (
	"context"

	"restaurant/internal/domain/model"
)

type OrderItemRepository interface {
	Create(ctx context.Context, item *model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	//別の注文の明細ならErrNotFound
	Delete(ctx context.Context, orderID int64, itemID int64) error
}
