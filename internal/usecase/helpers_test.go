package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"restaurant/internal/domain/model"
	"restaurant/internal/infra/db"
	infraRepo "restaurant/internal/infra/repository"
	"restaurant/internal/usecase"
	auth "restaurant/internal/usecase/auth_usecase"
	"restaurant/internal/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// 実DB（インメモリsqlite）で組み立てたusecase一式
type testEnv struct {
	db        *gorm.DB
	orders    *usecase.OrderUsecase
	dishes    *usecase.DishUsecase
	customers *usecase.CustomerUsecase
	audit     *usecase.AuditLogUsecase
	auth      *usecase.AuthUsecase
	issuer    *auth.JWTIssuer
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newEnv(t *testing.T, strict bool) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.OpenInMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	userRepo := infraRepo.NewUserGormRepository(gdb)
	auditRepo := infraRepo.NewAuditLogGormRepository(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	txm := infraRepo.NewTxManagerGorm(gdb)
	issuer := auth.NewJWTIssuer(testSecret, "restaurant-api", "restaurant-clients", time.Hour)

	return &testEnv{
		db:        gdb,
		orders:    usecase.NewOrderUsecase(txm, orderRepo, usecase.OrderOptions{StrictStatus: strict, MaxRetries: 3}, nil),
		dishes:    usecase.NewDishUsecase(infraRepo.NewDishGormRepository(gdb), txm),
		customers: usecase.NewCustomerUsecase(infraRepo.NewCustomerGormRepository(gdb), orderRepo, validator.NewCustomerValidator()),
		audit:     usecase.NewAuditLogUsecase(auditRepo),
		auth: usecase.NewAuthUsecase(
			userRepo, auditRepo, validator.NewAuthValidator(userRepo),
			auth.NewBcryptPasswordHasher(4), auth.NewBcryptPasswordVerifier(),
			issuer, fixedClock{now: time.Now()}, nil,
		),
		issuer: issuer,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

func (e *testEnv) customer(t *testing.T, name string, phone string) model.Customer {
	t.Helper()
	c, err := e.customers.Create(context.Background(), usecase.CustomerInput{FullName: name, PhoneNumber: phone})
	require.NoError(t, err)
	return c
}

func (e *testEnv) dish(t *testing.T, name string, price string) model.Dish {
	t.Helper()
	d, err := e.dishes.CreateDish(context.Background(), usecase.DishInput{Name: name, Price: dec(price)})
	require.NoError(t, err)
	return d
}

func assertKind(t *testing.T, err error, kind usecase.ErrorKind) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, usecase.IsKind(err, kind), "err=%v want kind %s", err, kind)
	}
}

// 合計 = Σ(数量×注文時価格)
func assertTotalConsistent(t *testing.T, v usecase.OrderView) {
	t.Helper()
	sum := decimal.Zero
	for _, it := range v.Items {
		sum = sum.Add(it.PriceAtOrder.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	assert.True(t, sum.Equal(v.TotalPrice), "total=%s items=%s", v.TotalPrice, sum)
}
