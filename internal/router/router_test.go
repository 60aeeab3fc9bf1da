package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/arcade-reservation-board/internal/handler"
)

type denyAll struct{}

func (denyAll) Check(string) error         { return errors.New("denied") }
func (denyAll) VerifySession(string) error { return errors.New("denied") }

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newServer() *echo.Echo {
	e := echo.New()
	r := Routes{
		Board:     &handler.BoardHandler{},
		Admin:     &handler.AdminHandler{},
		Gate:      denyAll{},
		RateLimit: passThrough,
		Cache:     passThrough,
	}
	RegisterRoutes(e)
	RegisterBoard(e, r)
	RegisterAdmin(e, r)
	return e
}

func TestRouteTable(t *testing.T) {
	e := newServer()
	want := map[string]bool{
		"GET /healthz":                      false,
		"GET /v1/catalog":                   false,
		"GET /v1/board":                     false,
		"POST /v1/reservations":             false,
		"POST /v1/admin/session":            false,
		"GET /v1/admin/board":               false,
		"GET /v1/admin/reservations":        false,
		"DELETE /v1/admin/reservations/:id": false,
		"PUT /v1/admin/programs/disabled":   false,
		"PUT /v1/admin/times/disabled":      false,
		"POST /v1/admin/purge":              false,
	}
	for _, r := range e.Routes() {
		key := r.Method + " " + r.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for route, seen := range want {
		if !seen {
			t.Errorf("route %s not registered", route)
		}
	}
}

func TestAdminRoutesAreGuarded(t *testing.T) {
	e := newServer()
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v1/admin/board"},
		{http.MethodGet, "/v1/admin/reservations"},
		{http.MethodDelete, "/v1/admin/reservations/1"},
		{http.MethodPut, "/v1/admin/programs/disabled"},
		{http.MethodPut, "/v1/admin/times/disabled"},
		{http.MethodPost, "/v1/admin/purge"},
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: code = %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}
