package handler

import (
	"net/http"
	"strconv"

	"restaurant/internal/domain/model"
	"restaurant/internal/middleware"
	"restaurant/internal/usecase"

	"github.com/labstack/echo/v4"
)

const defaultTopCount = 10

type CustomerHandler struct {
	uc *usecase.CustomerUsecase
}

func NewCustomerHandler(uc *usecase.CustomerUsecase) *CustomerHandler {
	return &CustomerHandler{uc: uc}
}

// /customers 配下はログイン必須
func (h *CustomerHandler) RegisterRoutes(api *echo.Group, authn ...echo.MiddlewareFunc) {
	g := api.Group("/customers", authn...)

	g.GET("", h.list)
	g.GET("/top", h.top, middleware.RequireRoles(model.RoleAdmin, model.RoleManager))
	g.GET("/by-phone/:phone", h.byPhone)
	g.GET("/:id", h.detail)
	g.GET("/:id/orders", h.orders)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.PUT("/:id/profile", h.upsertProfile)
	g.DELETE("/:id", h.delete, middleware.AdminRoleGuard())
}

func (h *CustomerHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /customers/top?count=
func (h *CustomerHandler) top(c echo.Context) error {
	count := defaultTopCount
	if v := c.QueryParam("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return invalidParam(c, "count")
		}
		count = n
	}

	out, err := h.uc.TopByLoyalty(c.Request().Context(), count)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CustomerHandler) byPhone(c echo.Context) error {
	out, err := h.uc.GetByPhone(c.Request().Context(), c.Param("phone"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CustomerHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	out, err := h.uc.GetWithProfile(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CustomerHandler) orders(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	out, err := h.uc.ListOrders(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CustomerHandler) create(c echo.Context) error {
	var req usecase.CustomerInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CustomerHandler) update(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	var req usecase.CustomerPatch
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.Update(c.Request().Context(), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// PUT /customers/:id/profile
func (h *CustomerHandler) upsertProfile(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	var req usecase.ProfileInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.UpsertProfile(c.Request().Context(), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CustomerHandler) delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
