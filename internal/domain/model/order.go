package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusPreparing  OrderStatus = "Preparing"
	OrderStatusReady      OrderStatus = "Ready"
	OrderStatusDelivering OrderStatus = "Delivering"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// 有効なステータス（表示順）
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivering,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// 大文字小文字を無視して正規の値に合わせる
func ParseOrderStatus(s string) (OrderStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range OrderStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// 終端（ここからは動かない）
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// 状態遷移表（strict運用のとき使う）
var orderTransitions = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusPreparing,
	OrderStatusPreparing:  OrderStatusReady,
	OrderStatusReady:      OrderStatusDelivering,
	OrderStatusDelivering: OrderStatusCompleted,
}

// CanTransitionTo は前進1段階か、終端以外からのキャンセルだけ許す。
// 同じステータスへの変更は何もしない扱いでtrue。
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return orderTransitions[s] == next
}

type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID      int64           `gorm:"not null;index" json:"customer_id"`
	Customer        *Customer       `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"-"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_price"`
	DeliveryAddress *string         `gorm:"type:varchar(200)" json:"delivery_address,omitempty"`

	//楽観ロック用（明細の変更ごとに+1）
	Version int64 `gorm:"not null;default:1" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// 明細から合計を計算する（保存値は使わない）
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// TotalPriceを明細から作り直す
func (o *Order) RecalculateTotal() {
	o.TotalPrice = o.ItemsTotal()
}

// 明細を変更できるのはPendingのときだけ
func (o *Order) ItemsMutable() bool {
	return o.Status == OrderStatusPending
}

// 削除できるのはPending / Cancelledのときだけ
func (o *Order) Deletable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusCancelled
}

// IDで明細を探す
func (o *Order) FindItem(itemID int64) (OrderItem, bool) {
	for _, it := range o.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return OrderItem{}, false
}
