package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// HeaderAdminPassword carries the shared admin secret on a single request.
const HeaderAdminPassword = "X-Admin-Password"

// ContextAdminVia is the context key RequireAdmin stores the credential
// kind under: "password" or "session".
const ContextAdminVia = "admin_via"

// AdminVia reports how the current request was admitted, or "" when it
// never passed RequireAdmin.
func AdminVia(c echo.Context) string {
	v, _ := c.Get(ContextAdminVia).(string)
	return v
}

// AdminVerifier is satisfied by service.AdminGate.
type AdminVerifier interface {
	Check(password string) error
	VerifySession(token string) error
}

// RequireAdmin admits a request carrying either the admin password in
// X-Admin-Password or a Bearer session token.  Every failure gets the same
// generic 401 body.
func RequireAdmin(gate AdminVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if pw := req.Header.Get(HeaderAdminPassword); pw != "" {
				if gate.Check(pw) == nil {
					c.Set(ContextAdminVia, "password")
					return next(c)
				}
				return deny(c)
			}
			if auth := req.Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
				if gate.VerifySession(strings.TrimPrefix(auth, "Bearer ")) == nil {
					c.Set(ContextAdminVia, "session")
					return next(c)
				}
			}
			return deny(c)
		}
	}
}

func deny(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "admin authorization failed"})
}
