package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 数量の範囲
const (
	OrderItemMinQuantity = 1
	OrderItemMaxQuantity = 100
)

// 特記事項の最大長
const SpecialInstructionsMaxLen = 500

// 注文明細。追加時点の価格と名前を保存し、後からメニューを読み直さない。
type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64           `gorm:"not null;index:idx_order_items_order_dish" json:"order_id"`
	DishID              int64           `gorm:"not null;index:idx_order_items_order_dish" json:"dish_id"`
	Dish                *Dish           `gorm:"foreignKey:DishID;constraint:OnDelete:RESTRICT" json:"-"`
	DishNameSnapshot    string          `gorm:"type:varchar(100);not null" json:"dish_name_snapshot"`
	Quantity            int             `gorm:"not null" json:"quantity"`
	PriceAtOrder        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price_at_order"`
	SpecialInstructions *string         `gorm:"type:varchar(500)" json:"special_instructions,omitempty"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (it OrderItem) LineTotal() decimal.Decimal {
	return it.PriceAtOrder.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func ValidQuantity(q int) bool {
	return q >= OrderItemMinQuantity && q <= OrderItemMaxQuantity
}
