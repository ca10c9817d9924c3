package handler

import (
	"net/http"

	"restaurant/internal/middleware"
	"restaurant/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	uc *usecase.AuthUsecase
}

func NewAdminUserHandler(uc *usecase.AuthUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

func (h *AdminUserHandler) RegisterRoutes(api *echo.Group, authn ...echo.MiddlewareFunc) {
	// /users 配下は「JWT必須 + token_version一致 + ADMIN限定」
	mws := append(append([]echo.MiddlewareFunc{}, authn...), middleware.AdminRoleGuard())
	users := api.Group("/users", mws...)

	users.POST("/:id/force-logout", h.ForceLogout)
}

func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "user_id")
	}

	//操作した管理者ID（監査ログ用）
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	res, err := h.uc.ForceLogout(c.Request().Context(), adminID, userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, res)
}
