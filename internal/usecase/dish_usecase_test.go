package usecase_test

import (
	"context"
	"testing"

	"restaurant/internal/domain/model"
	"restaurant/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDishUsecase_CreateVariants(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	p, err := env.dishes.CreatePizza(ctx, usecase.PizzaInput{
		DishInput: usecase.DishInput{Name: "Margherita", Price: dec("12.499")},
		SizeCm:    30, DoughType: "thin", ExtraCheese: true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.DishKindPizza, p.Kind)
	assert.True(t, p.IsAvailable)
	//2桁に丸める
	assert.True(t, dec("12.50").Equal(p.Price))

	s, err := env.dishes.CreateSalad(ctx, usecase.SaladInput{
		DishInput:    usecase.DishInput{Name: "Greek", Price: dec("7.00")},
		IsVegetarian: true, Calories: 250,
	})
	require.NoError(t, err)
	require.NotNil(t, s.Salad)

	got, err := env.dishes.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Pizza)
	assert.Equal(t, "thin", got.Pizza.DoughType)
}

func TestDishUsecase_Create_Validation(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	_, err := env.dishes.CreateDish(ctx, usecase.DishInput{Name: "", Price: dec("1")})
	assertKind(t, err, usecase.KindValidation)

	_, err = env.dishes.CreateDish(ctx, usecase.DishInput{Name: "Free", Price: dec("0")})
	assertKind(t, err, usecase.KindValidation)

	_, err = env.dishes.CreatePizza(ctx, usecase.PizzaInput{
		DishInput: usecase.DishInput{Name: "Tiny", Price: dec("5")}, SizeCm: 10, DoughType: "thin",
	})
	assertKind(t, err, usecase.KindValidation)

	_, err = env.dishes.CreatePizza(ctx, usecase.PizzaInput{
		DishInput: usecase.DishInput{Name: "NoDough", Price: dec("5")}, SizeCm: 30,
	})
	assertKind(t, err, usecase.KindValidation)

	_, err = env.dishes.CreateSalad(ctx, usecase.SaladInput{
		DishInput: usecase.DishInput{Name: "Heavy", Price: dec("5")}, Calories: 2001,
	})
	assertKind(t, err, usecase.KindValidation)
}

func TestDishUsecase_UpdateAndAudit(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	p, err := env.dishes.CreatePizza(ctx, usecase.PizzaInput{
		DishInput: usecase.DishInput{Name: "Hawaii", Price: dec("11.00")}, SizeCm: 30, DoughType: "thin",
	})
	require.NoError(t, err)

	size := 40
	price := dec("13.00")
	out, err := env.dishes.UpdatePizza(ctx, 5, p.ID, usecase.PizzaPatch{
		DishPatch: usecase.DishPatch{Price: &price},
		SizeCm:    &size,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, out.Pizza.SizeCm)
	assert.Equal(t, "Hawaii", out.Name)

	logs, err := env.audit.List(ctx, usecase.ListAuditLogsInput{ResourceType: "dish"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionUpdateDishPrice, logs[0].Action)
	assert.JSONEq(t, `{"price":"13.00"}`, logs[0].AfterJSON)

	//種類違いは404
	cal := 100
	_, err = env.dishes.UpdateSalad(ctx, 5, p.ID, usecase.SaladPatch{Calories: &cal})
	assertKind(t, err, usecase.KindNotFound)

	bad := 99
	_, err = env.dishes.UpdatePizza(ctx, 5, p.ID, usecase.PizzaPatch{SizeCm: &bad})
	assertKind(t, err, usecase.KindValidation)
}

func TestDishUsecase_DeleteReferenced(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	c := env.customer(t, "John", "5550200")
	used := env.dish(t, "Used", "5.00")
	unused := env.dish(t, "Unused", "5.00")

	_, err := env.orders.Create(ctx, usecase.CreateOrderInput{CustomerID: c.ID, Items: []usecase.OrderItemInput{{DishID: used.ID, Quantity: 1}}})
	require.NoError(t, err)

	assertKind(t, env.dishes.Delete(ctx, used.ID), usecase.KindConflict)
	require.NoError(t, env.dishes.Delete(ctx, unused.ID))
	assertKind(t, env.dishes.Delete(ctx, unused.ID), usecase.KindNotFound)
}

func TestDishUsecase_Lists(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	env.dish(t, "Bread", "2.00")
	_, err := env.dishes.CreateSalad(ctx, usecase.SaladInput{
		DishInput: usecase.DishInput{Name: "Garden", Price: dec("6.00")}, IsVegetarian: true, Calories: 150,
	})
	require.NoError(t, err)
	_, err = env.dishes.CreateSalad(ctx, usecase.SaladInput{
		DishInput: usecase.DishInput{Name: "Chicken", Price: dec("9.00"), IsAvailable: new(bool)}, Calories: 450,
	})
	require.NoError(t, err)

	salads, err := env.dishes.ListAll(ctx, "SALAD")
	require.NoError(t, err)
	assert.Len(t, salads, 2)

	_, err = env.dishes.ListAll(ctx, "soup")
	assertKind(t, err, usecase.KindValidation)

	available, err := env.dishes.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	veg, err := env.dishes.ListVegetarianSalads(ctx)
	require.NoError(t, err)
	require.Len(t, veg, 1)
	assert.Equal(t, "Garden", veg[0].Name)

	lo, hi := dec("5.00"), dec("10.00")
	ranged, err := env.dishes.ListByPriceRange(ctx, &lo, &hi)
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	_, err = env.dishes.ListByPriceRange(ctx, &hi, &lo)
	assertKind(t, err, usecase.KindValidation)
}

func TestDishUsecase_CreateUnavailable(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	off := false
	d, err := env.dishes.CreateDish(ctx, usecase.DishInput{Name: "Seasonal", Price: dec("3.00"), IsAvailable: &off})
	require.NoError(t, err)
	assert.False(t, d.IsAvailable)

	got, err := env.dishes.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)

	//注文できない
	c := env.customer(t, "Hungry", "5550210")
	_, err = env.orders.Create(ctx, usecase.CreateOrderInput{CustomerID: c.ID, Items: []usecase.OrderItemInput{{DishID: d.ID, Quantity: 1}}})
	assertKind(t, err, usecase.KindValidation)

	//明細追加もできない
	open := env.dish(t, "Always", "1.00")
	o, err := env.orders.Create(ctx, usecase.CreateOrderInput{CustomerID: c.ID, Items: []usecase.OrderItemInput{{DishID: open.ID, Quantity: 1}}})
	require.NoError(t, err)
	_, err = env.orders.AddItem(ctx, o.ID, usecase.OrderItemInput{DishID: d.ID, Quantity: 1})
	assertKind(t, err, usecase.KindValidation)

	//再び提供すれば注文できる
	on := true
	_, err = env.dishes.UpdateDish(ctx, 1, d.ID, usecase.DishPatch{IsAvailable: &on})
	require.NoError(t, err)
	_, err = env.orders.AddItem(ctx, o.ID, usecase.OrderItemInput{DishID: d.ID, Quantity: 1})
	require.NoError(t, err)
}
