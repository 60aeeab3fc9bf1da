package handler

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/arcade-reservation-board/internal/middleware"
	"github.com/iliyamo/arcade-reservation-board/internal/model"
	"github.com/iliyamo/arcade-reservation-board/internal/service"
)

// AdminHandler serves the operator actions.  Every route except Session
// sits behind middleware.RequireAdmin.
type AdminHandler struct {
	Svc       *service.BoardService
	Lifecycle *service.Lifecycle
	Gate      *service.AdminGate
	Log       *zap.Logger
}

// audit records a successful operator action along with the credential
// kind RequireAdmin admitted it with.
func (h *AdminHandler) audit(c echo.Context, action string, fields ...zap.Field) {
	fields = append(fields, zap.String("action", action), zap.String("via", middleware.AdminVia(c)))
	h.Log.Info("admin action", fields...)
}

// Session handles POST /v1/admin/session, trading the password for a token.
func (h *AdminHandler) Session(c echo.Context) error {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	tok, err := h.Gate.OpenSession(body.Password)
	if err != nil {
		h.Log.Warn("admin session refused", zap.String("remote_ip", c.RealIP()))
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"token_type":   "Bearer",
		"expires_at":   tok.Exp,
	})
}

// Board handles GET /v1/admin/board: the live grid with full names.
func (h *AdminHandler) Board(c echo.Context) error {
	return c.JSON(http.StatusOK, buildBoardView(h.Svc, false))
}

// Reservations handles GET /v1/admin/reservations: every reservation with
// full names, ordered by row and then column.
func (h *AdminHandler) Reservations(c echo.Context) error {
	snap := h.Svc.Snapshot()
	rs := append([]model.Reservation(nil), snap.Reservations...)
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Row != rs[j].Row {
			return rs[i].Row < rs[j].Row
		}
		return rs[i].Col < rs[j].Col
	})
	out := make([]cellView, 0, len(rs))
	for _, res := range rs {
		out = append(out, toCell(res, snap.Expired(res.Row, res.Col), false))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out, "count": len(out)})
}

// Cancel handles DELETE /v1/admin/reservations/:id.
func (h *AdminHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Svc.Cancel(c.Request().Context(), id); err != nil {
		return respondError(c, h.Log, err)
	}
	h.audit(c, "cancel", zap.Uint64("reservation_id", id))
	return c.NoContent(http.StatusNoContent)
}

// ToggleProgram handles PUT /v1/admin/programs/disabled.
func (h *AdminHandler) ToggleProgram(c echo.Context) error {
	var body struct {
		Program  string `json:"program"`
		Disabled *bool  `json:"disabled"`
	}
	if err := c.Bind(&body); err != nil || body.Program == "" || body.Disabled == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "program and disabled are required"})
	}
	if err := h.Svc.SetProgramDisabled(c.Request().Context(), body.Program, *body.Disabled); err != nil {
		return respondError(c, h.Log, err)
	}
	h.audit(c, "toggle_program", zap.String("program", body.Program), zap.Bool("disabled", *body.Disabled))
	return c.JSON(http.StatusOK, echo.Map{"program": body.Program, "disabled": *body.Disabled})
}

// ToggleTime handles PUT /v1/admin/times/disabled.
func (h *AdminHandler) ToggleTime(c echo.Context) error {
	var body struct {
		Time     string `json:"time"`
		Disabled *bool  `json:"disabled"`
	}
	if err := c.Bind(&body); err != nil || body.Time == "" || body.Disabled == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time and disabled are required"})
	}
	if err := h.Svc.SetTimeDisabled(c.Request().Context(), body.Time, *body.Disabled); err != nil {
		return respondError(c, h.Log, err)
	}
	h.audit(c, "toggle_time", zap.String("time", body.Time), zap.Bool("disabled", *body.Disabled))
	return c.JSON(http.StatusOK, echo.Map{"time": body.Time, "disabled": *body.Disabled})
}

// Purge handles POST /v1/admin/purge, running the expiry purge now.
func (h *AdminHandler) Purge(c echo.Context) error {
	n, err := h.Lifecycle.PurgeExpired(c.Request().Context(), h.Svc.Now())
	if err != nil {
		return respondError(c, h.Log, err)
	}
	h.audit(c, "purge", zap.Int64("deleted", n))
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}
