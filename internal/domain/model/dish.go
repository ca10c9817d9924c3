package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// メニューの種類（dish / pizza / salad のどれか1つ）
type DishKind string

const (
	DishKindPlain DishKind = "dish"
	DishKindPizza DishKind = "pizza"
	DishKindSalad DishKind = "salad"
)

// 文字列から種類へ。大文字小文字は区別しない
func ParseDishKind(s string) (DishKind, bool) {
	switch DishKind(strings.ToLower(strings.TrimSpace(s))) {
	case DishKindPlain:
		return DishKindPlain, true
	case DishKindPizza:
		return DishKindPizza, true
	case DishKindSalad:
		return DishKindSalad, true
	}
	return "", false
}

// ピザのサイズ範囲（cm）
const (
	PizzaMinSizeCm = 20
	PizzaMaxSizeCm = 50
)

// サラダのカロリー範囲
const (
	SaladMinCalories = 0
	SaladMaxCalories = 2000
)

type Dish struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind        DishKind        `gorm:"type:varchar(10);not null;index" json:"dish_type"`
	Name        string          `gorm:"type:varchar(100);not null;index" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	Description string          `gorm:"type:varchar(500)" json:"description"`
	IsAvailable bool            `gorm:"not null;index" json:"is_available"` // 既定値はnewDishでtrue

	//バリアント（Kindと一致するものだけ入る）
	Pizza *Pizza `gorm:"foreignKey:DishID;constraint:OnDelete:CASCADE" json:"pizza,omitempty"`
	Salad *Salad `gorm:"foreignKey:DishID;constraint:OnDelete:CASCADE" json:"salad,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// pizzasテーブル（dish_idが主キー）
type Pizza struct {
	DishID      int64  `gorm:"primaryKey;autoIncrement:false" json:"-"`
	SizeCm      int    `gorm:"not null" json:"size_cm"`
	DoughType   string `gorm:"type:varchar(50);not null" json:"dough_type"`
	ExtraCheese bool   `gorm:"not null;default:false" json:"extra_cheese"`
	Toppings    string `gorm:"type:varchar(200)" json:"toppings"`
}

// saladsテーブル（dish_idが主キー）
type Salad struct {
	DishID       int64  `gorm:"primaryKey;autoIncrement:false" json:"-"`
	IsVegetarian bool   `gorm:"not null;default:false;index" json:"is_vegetarian"`
	Calories     int    `gorm:"not null" json:"calories"`
	Dressing     string `gorm:"type:varchar(100);not null" json:"dressing"`
	Ingredients  string `gorm:"type:varchar(300)" json:"ingredients"`
}

// DishVariant は種類ごとの追加情報。Kindで閉じた集合。
type DishVariant interface {
	dishKind() DishKind
}

func (*Pizza) dishKind() DishKind { return DishKindPizza }
func (*Salad) dishKind() DishKind { return DishKindSalad }

// Variant はKindに対応するバリアントを返す。plainはnil。
func (d *Dish) Variant() DishVariant {
	switch d.Kind {
	case DishKindPizza:
		if d.Pizza != nil {
			return d.Pizza
		}
	case DishKindSalad:
		if d.Salad != nil {
			return d.Salad
		}
	}
	return nil
}

// 種類とバリアントの組が正しいか
func (d *Dish) VariantConsistent() bool {
	switch d.Kind {
	case DishKindPlain:
		return d.Pizza == nil && d.Salad == nil
	case DishKindPizza:
		return d.Pizza != nil && d.Salad == nil
	case DishKindSalad:
		return d.Salad != nil && d.Pizza == nil
	}
	return false
}

func ValidPizzaSize(cm int) bool {
	return cm >= PizzaMinSizeCm && cm <= PizzaMaxSizeCm
}

func ValidSaladCalories(c int) bool {
	return c >= SaladMinCalories && c <= SaladMaxCalories
}
