package server

import (
	"context"
	"log/slog"

	"restaurant/internal/config"
	"restaurant/internal/handler"
	infraRepo "restaurant/internal/infra/repository"
	"restaurant/internal/infra/metrics"
	"restaurant/internal/middleware"
	"restaurant/internal/usecase"
	auth "restaurant/internal/usecase/auth_usecase"
	"restaurant/internal/validator"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const bcryptCost = 12

// App はechoと起動時に使うusecase
type App struct {
	Echo *echo.Echo
	Auth *usecase.AuthUsecase
}

// Build はRepository→Usecase→Handlerを組み立ててルートを登録する
func Build(cfg config.Config, gdb *gorm.DB, logger *slog.Logger, m *metrics.ServerMetrics) App {
	//Repository（GORM実装）
	userRepo := infraRepo.NewUserGormRepository(gdb)
	auditRepo := infraRepo.NewAuditLogGormRepository(gdb)
	dishRepo := infraRepo.NewDishGormRepository(gdb)
	customerRepo := infraRepo.NewCustomerGormRepository(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	txm := infraRepo.NewTxManagerGorm(gdb)

	//auth部品
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTAccessTTL)
	hasher := auth.NewBcryptPasswordHasher(bcryptCost)
	verifier := auth.NewBcryptPasswordVerifier()

	//Usecase
	authUC := usecase.NewAuthUsecase(
		userRepo, auditRepo, validator.NewAuthValidator(userRepo),
		hasher, verifier, issuer, auth.RealClock{}, logger,
	)
	dishUC := usecase.NewDishUsecase(dishRepo, txm)
	customerUC := usecase.NewCustomerUsecase(customerRepo, orderRepo, validator.NewCustomerValidator())
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, usecase.OrderOptions{
		StrictStatus: cfg.StrictStatus(),
		MaxRetries:   cfg.OrderMaxRetries,
	}, logger)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	e := New(logger, m, func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})

	RegisterRoutes(e, Handlers{
		Auth:      handler.NewAuthHandler(authUC),
		AdminUser: handler.NewAdminUserHandler(authUC),
		Dish:      handler.NewDishHandler(dishUC),
		Customer:  handler.NewCustomerHandler(customerUC),
		Order:     handler.NewOrderHandler(orderUC),
		AuditLog:  handler.NewAuditLogHandler(auditUC),
	},
		middleware.AuthJWT(issuer),
		middleware.TokenVersionGuard(userRepo),
	)

	return App{Echo: e, Auth: authUC}
}
