package handler

import (
	"net/http"

	"restaurant/internal/domain/model"
	"restaurant/internal/middleware"
	"restaurant/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /dishes の公開APIと管理API
type DishHandler struct {
	uc *usecase.DishUsecase
}

// DI
func NewDishHandler(uc *usecase.DishUsecase) *DishHandler {
	return &DishHandler{uc: uc}
}

func (h *DishHandler) RegisterRoutes(api *echo.Group, authn ...echo.MiddlewareFunc) {
	admin := append(append([]echo.MiddlewareFunc{}, authn...), middleware.AdminRoleGuard())

	g := api.Group("/dishes")
	g.GET("", h.list)
	g.GET("/available", h.listAvailable)
	g.GET("/price-range", h.listByPriceRange)
	g.GET("/salads/vegetarian", h.listVegetarianSalads)
	g.GET("/:id", h.detail)

	g.POST("", h.createDish, admin...)
	g.POST("/pizzas", h.createPizza, admin...)
	g.POST("/salads", h.createSalad, admin...)
	g.PUT("/:id", h.updateDish, admin...)
	g.PUT("/pizzas/:id", h.updatePizza, admin...)
	g.PUT("/salads/:id", h.updateSalad, admin...)
	g.DELETE("/:id", h.delete, admin...)
}

// GET /dishes?type=
func (h *DishHandler) list(c echo.Context) error {
	out, err := h.uc.ListAll(c.Request().Context(), c.QueryParam("type"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DishHandler) listAvailable(c echo.Context) error {
	out, err := h.uc.ListAvailable(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /dishes/price-range?min=&max=
func (h *DishHandler) listByPriceRange(c echo.Context) error {
	minPrice, ok := decimalQuery(c, "min")
	if !ok {
		return invalidParam(c, "min")
	}
	maxPrice, ok := decimalQuery(c, "max")
	if !ok {
		return invalidParam(c, "max")
	}

	out, err := h.uc.ListByPriceRange(c.Request().Context(), minPrice, maxPrice)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DishHandler) listVegetarianSalads(c echo.Context) error {
	out, err := h.uc.ListVegetarianSalads(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DishHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	out, err := h.uc.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DishHandler) createDish(c echo.Context) error {
	var req usecase.DishInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	return h.created(c, func() (model.Dish, error) {
		return h.uc.CreateDish(c.Request().Context(), req)
	})
}

func (h *DishHandler) createPizza(c echo.Context) error {
	var req usecase.PizzaInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	return h.created(c, func() (model.Dish, error) {
		return h.uc.CreatePizza(c.Request().Context(), req)
	})
}

func (h *DishHandler) createSalad(c echo.Context) error {
	var req usecase.SaladInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	return h.created(c, func() (model.Dish, error) {
		return h.uc.CreateSalad(c.Request().Context(), req)
	})
}

func (h *DishHandler) created(c echo.Context, create func() (model.Dish, error)) error {
	d, err := create()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *DishHandler) updateDish(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	actor, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	var req usecase.DishPatch
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.UpdateDish(c.Request().Context(), actor, id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DishHandler) updatePizza(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	actor, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	var req usecase.PizzaPatch
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.UpdatePizza(c.Request().Context(), actor, id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DishHandler) updateSalad(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	actor, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	var req usecase.SaladPatch
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.UpdateSalad(c.Request().Context(), actor, id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DishHandler) delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// 空ならnil
func decimalQuery(c echo.Context, name string) (*decimal.Decimal, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, false
	}
	return &d, true
}
