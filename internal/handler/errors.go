package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/arcade-reservation-board/internal/repository"
	"github.com/iliyamo/arcade-reservation-board/internal/service"
)

// respondError maps service and repository errors onto HTTP responses.
// Anything unrecognised is logged and answered with a generic 500.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	if reason, ok := service.IsRejection(err); ok {
		return c.JSON(http.StatusConflict, echo.Map{"error": reason.Message(), "reason": string(reason)})
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, service.ErrAdminDenied):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "admin authorization failed"})
	case errors.Is(err, service.ErrUnknownProgram):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown program"})
	case errors.Is(err, service.ErrUnknownTime):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown time slot"})
	}
	log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
