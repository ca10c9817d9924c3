package handler

import (
	"net/http"
	"strconv"

	"restaurant/internal/domain/model"
	"restaurant/internal/middleware"
	"restaurant/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(api *echo.Group, authn ...echo.MiddlewareFunc) {
	staff := middleware.RequireRoles(model.RoleAdmin, model.RoleManager)

	g := api.Group("/orders", authn...)
	g.GET("", h.list, staff)
	g.GET("/statistics", h.statistics, staff)
	g.GET("/:id", h.detail)
	g.POST("", h.create)
	g.PUT("/:id", h.update, staff)
	g.DELETE("/:id", h.delete, middleware.AdminRoleGuard())
	g.POST("/:id/items", h.addItem)
	g.DELETE("/:id/items/:itemId", h.removeItem)
}

// GET /orders?customer_id=&status=
func (h *OrderHandler) list(c echo.Context) error {
	var customerID *int64
	if v := c.QueryParam("customer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return invalidParam(c, "customer_id")
		}
		customerID = &id
	}

	out, err := h.uc.List(c.Request().Context(), customerID, c.QueryParam("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) statistics(c echo.Context) error {
	out, err := h.uc.Statistics(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req usecase.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// ステータス/配達先の変更（監査ログに操作者を残す）
func (h *OrderHandler) update(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	actor, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.UpdateOrderInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.Update(c.Request().Context(), actor, id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	actor, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.Delete(c.Request().Context(), actor, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) addItem(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	var req usecase.OrderItemInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.AddItem(c.Request().Context(), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) removeItem(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return invalidParam(c, "itemId")
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), id, itemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
