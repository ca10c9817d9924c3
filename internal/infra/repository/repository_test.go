package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"restaurant/internal/domain/model"
	"restaurant/internal/infra/db"
	repo "restaurant/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// テストごとに別のインメモリDB
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.OpenInMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedCustomer(t *testing.T, gdb *gorm.DB, phone string) model.Customer {
	t.Helper()
	c := model.Customer{FullName: "Customer " + phone, PhoneNumber: phone}
	require.NoError(t, NewCustomerGormRepository(gdb).Create(context.Background(), &c))
	return c
}

func seedDish(t *testing.T, gdb *gorm.DB, name string, price string) model.Dish {
	t.Helper()
	d := model.Dish{Kind: model.DishKindPlain, Name: name, Price: dec(price), IsAvailable: true}
	require.NoError(t, NewDishGormRepository(gdb).Create(context.Background(), &d))
	return d
}

func seedOrder(t *testing.T, gdb *gorm.DB, customerID int64, status model.OrderStatus, items ...model.OrderItem) model.Order {
	t.Helper()
	now := time.Now()
	o := model.Order{CustomerID: customerID, Status: status, Items: items, CreatedAt: now, UpdatedAt: now}
	o.RecalculateTotal()
	require.NoError(t, NewOrderGormRepository(gdb).Create(context.Background(), &o))
	return o
}

func item(d model.Dish, qty int) model.OrderItem {
	return model.OrderItem{DishID: d.ID, DishNameSnapshot: d.Name, Quantity: qty, PriceAtOrder: d.Price}
}

// =====================
// Dish
// =====================

func TestDishRepository_CreateWithVariantsAndList(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewDishGormRepository(gdb)

	pizza := model.Dish{Kind: model.DishKindPizza, Name: "Margherita", Price: dec("12.50"), IsAvailable: true,
		Pizza: &model.Pizza{SizeCm: 30, DoughType: "thin"}}
	salad := model.Dish{Kind: model.DishKindSalad, Name: "Greek", Price: dec("8.00"), IsAvailable: true,
		Salad: &model.Salad{IsVegetarian: true, Calories: 300, Dressing: "olive"}}
	meat := model.Dish{Kind: model.DishKindSalad, Name: "Caesar", Price: dec("9.00"), IsAvailable: false,
		Salad: &model.Salad{IsVegetarian: false, Calories: 500}}
	for _, d := range []*model.Dish{&pizza, &salad, &meat} {
		require.NoError(t, r.Create(ctx, d))
	}

	got, err := r.FindByID(ctx, pizza.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Pizza)
	assert.Equal(t, 30, got.Pizza.SizeCm)
	assert.Nil(t, got.Salad)
	assert.True(t, dec("12.50").Equal(got.Price))

	all, err := r.List(ctx, repo.DishListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	//名前順
	assert.Equal(t, "Caesar", all[0].Name)

	available, err := r.List(ctx, repo.DishListQuery{AvailableOnly: true})
	require.NoError(t, err)
	assert.Len(t, available, 2)

	kind := model.DishKindSalad
	veg, err := r.List(ctx, repo.DishListQuery{Kind: &kind, VegetarianOnly: true})
	require.NoError(t, err)
	require.Len(t, veg, 1)
	assert.Equal(t, "Greek", veg[0].Name)

	lo, hi := dec("8.50"), dec("12.50")
	ranged, err := r.List(ctx, repo.DishListQuery{MinPrice: &lo, MaxPrice: &hi})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)
}

func TestDishRepository_UpdateAndDelete(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewDishGormRepository(gdb)

	d := model.Dish{Kind: model.DishKindPizza, Name: "Pepperoni", Price: dec("11.00"), IsAvailable: true,
		Pizza: &model.Pizza{SizeCm: 30, DoughType: "thick"}}
	require.NoError(t, r.Create(ctx, &d))

	d.Price = dec("13.00")
	d.Pizza.SizeCm = 40
	require.NoError(t, r.Update(ctx, d))

	got, err := r.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, dec("13.00").Equal(got.Price))
	assert.Equal(t, 40, got.Pizza.SizeCm)

	assert.ErrorIs(t, r.Update(ctx, model.Dish{ID: 9999, Kind: model.DishKindPlain, Name: "x", Price: dec("1")}), repo.ErrNotFound)

	require.NoError(t, r.Delete(ctx, d.ID))
	_, err = r.FindByID(ctx, d.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	assert.ErrorIs(t, r.Delete(ctx, d.ID), repo.ErrNotFound)
}

func TestDishRepository_DeleteReferenced(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()

	c := seedCustomer(t, gdb, "5550001")
	d := seedDish(t, gdb, "Soup", "4.00")
	seedOrder(t, gdb, c.ID, model.OrderStatusPending, item(d, 1))

	err := NewDishGormRepository(gdb).Delete(ctx, d.ID)
	assert.ErrorIs(t, err, repo.ErrReferenced)
}

// =====================
// Customer
// =====================

func TestCustomerRepository_Basics(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewCustomerGormRepository(gdb)

	a := model.Customer{FullName: "Alice", PhoneNumber: "5550001", LoyaltyPoints: 10}
	b := model.Customer{FullName: "Bob", PhoneNumber: "5550002", LoyaltyPoints: 50}
	require.NoError(t, r.Create(ctx, &a))
	require.NoError(t, r.Create(ctx, &b))

	//電話番号はユニーク
	dup := model.Customer{FullName: "Eve", PhoneNumber: "5550001"}
	assert.ErrorIs(t, r.Create(ctx, &dup), repo.ErrConflict)

	got, err := r.FindByPhone(ctx, "5550002")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	top, err := r.TopByLoyalty(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Bob", top[0].FullName)
}

func TestCustomerRepository_UpsertProfile(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewCustomerGormRepository(gdb)

	c := seedCustomer(t, gdb, "5550003")
	p := model.CustomerProfile{CustomerID: c.ID, Email: "c@example.com", Address: "1 Main St"}
	require.NoError(t, r.UpsertProfile(ctx, &p))

	p2 := model.CustomerProfile{CustomerID: c.ID, Email: "c2@example.com", Address: "2 Main St"}
	require.NoError(t, r.UpsertProfile(ctx, &p2))
	assert.Equal(t, p.ID, p2.ID)

	got, err := r.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "c2@example.com", got.Profile.Email)

	//メールは他の顧客と重複できない
	other := seedCustomer(t, gdb, "5550004")
	err = r.UpsertProfile(ctx, &model.CustomerProfile{CustomerID: other.ID, Email: "c2@example.com"})
	assert.ErrorIs(t, err, repo.ErrConflict)
}

func TestCustomerRepository_DeleteWithOrders(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewCustomerGormRepository(gdb)

	c := seedCustomer(t, gdb, "5550005")
	d := seedDish(t, gdb, "Bread", "2.00")
	seedOrder(t, gdb, c.ID, model.OrderStatusPending, item(d, 1))

	assert.ErrorIs(t, r.Delete(ctx, c.ID), repo.ErrReferenced)

	lonely := seedCustomer(t, gdb, "5550006")
	require.NoError(t, r.Delete(ctx, lonely.ID))
	assert.ErrorIs(t, r.Delete(ctx, lonely.ID), repo.ErrNotFound)
}

// =====================
// Order
// =====================

func TestOrderRepository_CreateFindList(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewOrderGormRepository(gdb)

	c := seedCustomer(t, gdb, "5550007")
	d1 := seedDish(t, gdb, "Pasta", "10.00")
	d2 := seedDish(t, gdb, "Tea", "2.50")
	o := seedOrder(t, gdb, c.ID, model.OrderStatusPending, item(d1, 2), item(d2, 1))

	got, err := r.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Pasta", got.Items[0].DishNameSnapshot)
	assert.True(t, dec("22.50").Equal(got.TotalPrice))
	assert.Equal(t, int64(1), got.Version)
	require.NotNil(t, got.Customer)
	assert.Equal(t, c.FullName, got.Customer.FullName)

	seedOrder(t, gdb, c.ID, model.OrderStatusCompleted, item(d2, 4))

	pending := model.OrderStatusPending
	list, err := r.List(ctx, repo.OrderListFilter{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = r.List(ctx, repo.OrderListFilter{CustomerID: &c.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = r.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestOrderRepository_UpdateVersioned(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewOrderGormRepository(gdb)

	c := seedCustomer(t, gdb, "5550008")
	d := seedDish(t, gdb, "Pie", "6.00")
	o := seedOrder(t, gdb, c.ID, model.OrderStatusPending, item(d, 1))

	stale := o
	o.Status = model.OrderStatusPreparing
	require.NoError(t, r.UpdateVersioned(ctx, &o))
	assert.Equal(t, int64(2), o.Version)

	//古いversionでは更新できない
	stale.Status = model.OrderStatusCancelled
	assert.ErrorIs(t, r.UpdateVersioned(ctx, &stale), repo.ErrVersionConflict)

	got, err := r.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPreparing, got.Status)

	assert.ErrorIs(t, r.DeleteVersioned(ctx, o.ID, 1), repo.ErrVersionConflict)
	require.NoError(t, r.DeleteVersioned(ctx, o.ID, 2))

	items, err := NewOrderItemGormRepository(gdb).ListByOrderID(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrderRepository_CountAndSum(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewOrderGormRepository(gdb)

	sum, err := r.SumTotal(ctx, nil)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())

	c := seedCustomer(t, gdb, "5550009")
	d := seedDish(t, gdb, "Cake", "5.25")
	seedOrder(t, gdb, c.ID, model.OrderStatusCompleted, item(d, 2))
	seedOrder(t, gdb, c.ID, model.OrderStatusCompleted, item(d, 1))
	seedOrder(t, gdb, c.ID, model.OrderStatusPending, item(d, 4))

	completed := model.OrderStatusCompleted
	n, err := r.Count(ctx, &completed)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = r.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	sum, err = r.SumTotal(ctx, &completed)
	require.NoError(t, err)
	assert.True(t, dec("15.75").Equal(sum), "got %s", sum)
}

func TestOrderItemRepository_CreateAndDelete(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewOrderItemGormRepository(gdb)

	c := seedCustomer(t, gdb, "5550010")
	d := seedDish(t, gdb, "Juice", "3.00")
	o := seedOrder(t, gdb, c.ID, model.OrderStatusPending, item(d, 1))

	it := item(d, 2)
	it.OrderID = o.ID
	require.NoError(t, r.Create(ctx, &it))

	items, err := r.ListByOrderID(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	//他の注文の明細としては消せない
	assert.ErrorIs(t, r.Delete(ctx, o.ID+1, it.ID), repo.ErrNotFound)
	require.NoError(t, r.Delete(ctx, o.ID, it.ID))
}

// =====================
// User / AuditLog / Tx
// =====================

func TestUserRepository(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewUserGormRepository(gdb)

	u := &model.User{Email: "u@example.com", UserName: "user1", PasswordHash: "x", Role: model.RoleCustomer, IsActive: true}
	require.NoError(t, r.Create(ctx, u))

	dup := &model.User{Email: "u@example.com", UserName: "user2", PasswordHash: "x", Role: model.RoleCustomer}
	assert.ErrorIs(t, r.Create(ctx, dup), repo.ErrConflict)

	byName, err := r.FindByUserName(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	require.NoError(t, r.IncrementTokenVersion(ctx, u.ID))
	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TokenVersion)

	assert.ErrorIs(t, r.IncrementTokenVersion(ctx, 9999), repo.ErrNotFound)
	_, err = r.FindByEmail(ctx, "none@example.com")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestAuditLogRepository_AppendAndSearch(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewAuditLogGormRepository(gdb)

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	entries := []model.AuditLog{
		{ActorUserID: 1, Action: model.AuditActionUpdateOrderStatus, ResourceType: model.AuditResourceOrder, ResourceID: 5, CreatedAt: base},
		{ActorUserID: 1, Action: model.AuditActionDeleteOrder, ResourceType: model.AuditResourceOrder, ResourceID: 5, CreatedAt: base.Add(time.Hour)},
		{ActorUserID: 2, Action: model.AuditActionUpdateDishPrice, ResourceType: model.AuditResourceDish, ResourceID: 5, CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, e := range entries {
		e.BeforeJSON, e.AfterJSON = "{}", "{}"
		require.NoError(t, r.Append(ctx, e))
	}

	all, err := r.Search(ctx, repo.AuditLogQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	//新しい順
	assert.Equal(t, model.AuditActionUpdateDishPrice, all[0].Action)

	//同じIDでも種類で分かれる
	history, err := r.Search(ctx, repo.HistoryOf(model.AuditResourceOrder, 5))
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.AuditActionDeleteOrder, history[0].Action)

	some, err := r.Search(ctx, repo.AuditLogQuery{Actions: []model.AuditAction{model.AuditActionDeleteOrder, model.AuditActionUpdateDishPrice}})
	require.NoError(t, err)
	assert.Len(t, some, 2)

	actor := int64(1)
	since := base.Add(30 * time.Minute)
	mine, err := r.Search(ctx, repo.AuditLogQuery{ActorUserID: &actor, Since: &since})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, model.AuditActionDeleteOrder, mine[0].Action)

	page, err := r.Search(ctx, repo.AuditLogQuery{Page: repo.Page{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, model.AuditActionDeleteOrder, page[0].Action)
}

func TestAuditLogRepository_AppendRejectsUnknown(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewAuditLogGormRepository(gdb)

	err := r.Append(ctx, model.AuditLog{ActorUserID: 1, Action: "DROP_TABLE", ResourceType: model.AuditResourceOrder, ResourceID: 1})
	assert.ErrorIs(t, err, repo.ErrInvalidAuditEntry)
	err = r.Append(ctx, model.AuditLog{ActorUserID: 1, Action: model.AuditActionDeleteOrder, ResourceType: "table", ResourceID: 1})
	assert.ErrorIs(t, err, repo.ErrInvalidAuditEntry)

	logs, err := r.Search(ctx, repo.AuditLogQuery{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestPage_Normalize(t *testing.T) {
	assert.Equal(t, repo.Page{Limit: repo.DefaultPageLimit}, repo.Page{}.Normalize())
	assert.Equal(t, repo.Page{Limit: repo.DefaultPageLimit}, repo.Page{Limit: 500, Offset: -3}.Normalize())
	assert.Equal(t, repo.Page{Limit: 10, Offset: 20}, repo.Page{Limit: 10, Offset: 20}.Normalize())
}

func TestTxManager_RollbackOnError(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	tm := NewTxManagerGorm(gdb)

	boom := errors.New("boom")
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		c := model.Customer{FullName: "Ghost", PhoneNumber: "5550999"}
		if err := r.Customers().Create(ctx, &c); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewCustomerGormRepository(gdb).FindByPhone(ctx, "5550999")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
