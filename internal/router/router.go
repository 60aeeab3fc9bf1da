// Package router registers the HTTP routes on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/arcade-reservation-board/internal/handler"
	"github.com/iliyamo/arcade-reservation-board/internal/middleware"
)

// Routes bundles the handlers and the middleware the routes are wrapped in.
type Routes struct {
	Board     *handler.BoardHandler
	Admin     *handler.AdminHandler
	Gate      middleware.AdminVerifier
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// RegisterRoutes registers the health check only.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterBoard registers the public board routes.  Proposals are rate
// limited; the catalog is served through the response cache.
func RegisterBoard(e *echo.Echo, r Routes) {
	v1 := e.Group("/v1")
	v1.GET("/catalog", r.Board.Catalog, r.Cache)
	v1.GET("/board", r.Board.Board)
	v1.POST("/reservations", r.Board.Propose, r.RateLimit)
}

// RegisterAdmin registers the operator routes.  The session endpoint is
// rate limited instead of guarded; everything else requires the admin
// password or a session token.
func RegisterAdmin(e *echo.Echo, r Routes) {
	e.POST("/v1/admin/session", r.Admin.Session, r.RateLimit)

	admin := e.Group("/v1/admin", middleware.RequireAdmin(r.Gate))
	admin.GET("/board", r.Admin.Board)
	admin.GET("/reservations", r.Admin.Reservations)
	admin.DELETE("/reservations/:id", r.Admin.Cancel)
	admin.PUT("/programs/disabled", r.Admin.ToggleProgram)
	admin.PUT("/times/disabled", r.Admin.ToggleTime)
	admin.POST("/purge", r.Admin.Purge)
}
