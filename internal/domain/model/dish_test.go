package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDishKind(t *testing.T) {
	k, ok := ParseDishKind("Pizza")
	assert.True(t, ok)
	assert.Equal(t, DishKindPizza, k)

	_, ok = ParseDishKind("soup")
	assert.False(t, ok)
}

func TestDish_VariantConsistent(t *testing.T) {
	plain := Dish{Kind: DishKindPlain}
	assert.True(t, plain.VariantConsistent())
	assert.Nil(t, plain.Variant())

	pizza := Dish{Kind: DishKindPizza, Pizza: &Pizza{SizeCm: 30}}
	assert.True(t, pizza.VariantConsistent())
	assert.IsType(t, &Pizza{}, pizza.Variant())

	//種類とバリアントが食い違う
	wrong := Dish{Kind: DishKindSalad, Pizza: &Pizza{}}
	assert.False(t, wrong.VariantConsistent())

	both := Dish{Kind: DishKindPizza, Pizza: &Pizza{}, Salad: &Salad{}}
	assert.False(t, both.VariantConsistent())

	missing := Dish{Kind: DishKindSalad}
	assert.False(t, missing.VariantConsistent())
}

func TestDishRanges(t *testing.T) {
	assert.False(t, ValidPizzaSize(19))
	assert.True(t, ValidPizzaSize(20))
	assert.True(t, ValidPizzaSize(50))
	assert.False(t, ValidPizzaSize(51))

	assert.True(t, ValidSaladCalories(0))
	assert.True(t, ValidSaladCalories(2000))
	assert.False(t, ValidSaladCalories(-1))
	assert.False(t, ValidSaladCalories(2001))
}
