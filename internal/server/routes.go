package server

import (
	"restaurant/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	AdminUser *handler.AdminUserHandler
	Dish      *handler.DishHandler
	Customer  *handler.CustomerHandler
	Order     *handler.OrderHandler
	AuditLog  *handler.AuditLogHandler
}

// /api 配下。authnはログイン必須ルートに付ける
func RegisterRoutes(e *echo.Echo, h Handlers, authn ...echo.MiddlewareFunc) {
	api := e.Group("/api")

	h.Auth.RegisterRoutes(api, authn...)
	h.AdminUser.RegisterRoutes(api, authn...)
	h.Dish.RegisterRoutes(api, authn...)
	h.Customer.RegisterRoutes(api, authn...)
	h.Order.RegisterRoutes(api, authn...)
	h.AuditLog.RegisterRoutes(api, authn...)
}
