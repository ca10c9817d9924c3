package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"restaurant/internal/middleware"
	"restaurant/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// usecaseのエラー種別をHTTPステータスに変換
func statusOf(kind usecase.ErrorKind) int {
	switch kind {
	case usecase.KindValidation, usecase.KindInvalidState:
		return http.StatusBadRequest
	case usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindConflict:
		return http.StatusConflict
	case usecase.KindUnauthorized:
		return http.StatusUnauthorized
	case usecase.KindForbidden:
		return http.StatusForbidden
	case usecase.KindStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	ctx := c.Request().Context()

	if ue, ok := usecase.AsError(err); ok {
		status := statusOf(ue.Kind)
		if status >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "request failed",
				slog.String("path", c.Path()),
				slog.String("kind", string(ue.Kind)),
				slog.Any("err", err),
			)
		}
		return c.JSON(status, ErrorResponse{Error: ue.Message})
	}

	//500
	slog.ErrorContext(ctx, "unexpected error", slog.String("path", c.Path()), slog.Any("err", err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// AuthJWTが入れたuser_id
func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// パスの:idなどを正のint64として読む
func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidParam(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
}
