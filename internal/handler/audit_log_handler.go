package handler

import (
	"net/http"
	"strconv"

	"restaurant/internal/middleware"
	"restaurant/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAuditLogHandler(uc *usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{uc: uc}
}

func (h *AuditLogHandler) RegisterRoutes(api *echo.Group, authn ...echo.MiddlewareFunc) {
	mws := append(append([]echo.MiddlewareFunc{}, authn...), middleware.AdminRoleGuard())
	g := api.Group("/audit-logs", mws...)
	g.GET("", h.list)
	g.GET("/:resource/:id", h.history)
}

// GET /audit-logs?action=&resource_type=&resource_id=&actor_user_id=&from=&to=&limit=&offset=
func (h *AuditLogHandler) list(c echo.Context) error {
	in := usecase.ListAuditLogsInput{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		From:         c.QueryParam("from"),
		To:           c.QueryParam("to"),
	}

	var ok bool
	if in.ResourceID, ok = optionalInt64(c, "resource_id"); !ok {
		return invalidParam(c, "resource_id")
	}
	if in.ActorUserID, ok = optionalInt64(c, "actor_user_id"); !ok {
		return invalidParam(c, "actor_user_id")
	}

	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return invalidParam(c, "limit")
		}
		in.Limit = l
	}
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			return invalidParam(c, "offset")
		}
		in.Offset = o
	}

	out, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /audit-logs/:resource/:id （resourceはdish / order / user）
func (h *AuditLogHandler) history(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	out, err := h.uc.History(c.Request().Context(), c.Param("resource"), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func optionalInt64(c echo.Context, name string) (*int64, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, false
	}
	return &n, true
}
