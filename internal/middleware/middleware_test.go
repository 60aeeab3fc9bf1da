package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/arcade-reservation-board/internal/config"
)

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestTokenBucketFallsBackToLocalLimiter(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            5 * time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "test:rl",
	}
	e := echo.New()
	e.POST("/v1/reservations", okHandler, NewTokenBucket(cfg, nil, zap.NewNop()))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if i == 2 && rec.Header().Get("Retry-After") == "" {
			t.Error("blocked response should carry Retry-After")
		}
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("second client code = %d", rec.Code)
	}
}

func TestTokenBucketDisabled(t *testing.T) {
	e := echo.New()
	e.POST("/x", okHandler, NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, zap.NewNop()))
	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d code = %d", i, rec.Code)
		}
	}
}

func TestLocalLimiterRefills(t *testing.T) {
	l := newLocalLimiter(config.RateLimitConfig{Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute})
	now := time.Unix(1_700_000_000, 0)
	if ok, _, _ := l.allow("k", now); !ok {
		t.Fatal("first request should pass")
	}
	ok, _, retry := l.allow("k", now)
	if ok || retry <= 0 || retry > time.Second {
		t.Fatalf("second request ok=%v retry=%v", ok, retry)
	}
	if ok, _, _ := l.allow("k", now.Add(time.Second)); !ok {
		t.Fatal("bucket should refill after one interval")
	}
}

type fakeGate struct{}

func (fakeGate) Check(pw string) error {
	if pw == "0924" {
		return nil
	}
	return errors.New("denied")
}

func (fakeGate) VerifySession(tok string) error {
	if tok == "good-token" {
		return nil
	}
	return errors.New("denied")
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()
	e.DELETE("/admin", okHandler, RequireAdmin(fakeGate{}))

	cases := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"password", HeaderAdminPassword, "0924", http.StatusOK},
		{"wrong password", HeaderAdminPassword, "1111", http.StatusUnauthorized},
		{"bearer", echo.HeaderAuthorization, "Bearer good-token", http.StatusOK},
		{"bad bearer", echo.HeaderAuthorization, "Bearer forged", http.StatusUnauthorized},
		{"nothing", "", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodDelete, "/admin", nil)
		if tc.header != "" {
			req.Header.Set(tc.header, tc.value)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s: code = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestRequireAdminRecordsCredentialKind(t *testing.T) {
	e := echo.New()
	e.GET("/admin", func(c echo.Context) error {
		return c.String(http.StatusOK, AdminVia(c))
	}, RequireAdmin(fakeGate{}))

	for header, want := range map[string]string{
		HeaderAdminPassword:     "password",
		echo.HeaderAuthorization: "session",
	} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if header == HeaderAdminPassword {
			req.Header.Set(header, "0924")
		} else {
			req.Header.Set(header, "Bearer good-token")
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Errorf("%s: %d %q, want %q", header, rec.Code, rec.Body.String(), want)
		}
	}

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := AdminVia(c); got != "" {
		t.Fatalf("unguarded AdminVia = %q", got)
	}
}

func TestBodyRecorderOverflow(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &bodyRecorder{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = w.Write([]byte("abc"))
	if w.overflow || w.body.String() != "abc" {
		t.Fatalf("overflow=%v body=%q", w.overflow, w.body.String())
	}
	_, _ = w.Write([]byte("defg"))
	if !w.overflow || w.body.Len() != 0 || rec.Body.String() != "abcdefg" {
		t.Fatalf("overflow=%v kept=%q sent=%q", w.overflow, w.body.String(), rec.Body.String())
	}
}

func newCacheServer(t *testing.T, maxBody int) (*echo.Echo, *miniredis.Miniredis, *int) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "test:cache",
		MaxBodyBytes: maxBody,
	}
	calls := 0
	e := echo.New()
	e.GET("/v1/catalog", func(c echo.Context) error {
		calls++
		c.Response().Header().Set("X-Catalog", "v1")
		return c.JSON(http.StatusOK, map[string]int{"calls": calls})
	}, NewRedisCache(cfg, rdb))
	return e, mr, &calls
}

func TestRedisCacheReplaysResponse(t *testing.T) {
	e, mr, calls := newCacheServer(t, 1024)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}
	first := get("/v1/catalog")
	if first.Header().Get("X-Cache") != "MISS" || *calls != 1 {
		t.Fatalf("first: X-Cache=%q calls=%d", first.Header().Get("X-Cache"), *calls)
	}
	second := get("/v1/catalog")
	if second.Header().Get("X-Cache") != "HIT" || *calls != 1 {
		t.Fatalf("second: X-Cache=%q calls=%d", second.Header().Get("X-Cache"), *calls)
	}
	if second.Body.String() != first.Body.String() || second.Header().Get("X-Catalog") != "v1" {
		t.Fatalf("replayed %q %v", second.Body.String(), second.Header())
	}
	if second.Header().Get("Age") == "" {
		t.Fatal("replayed response should carry Age")
	}

	// A different query is a different key.
	if rec := get("/v1/catalog?x=1"); rec.Header().Get("X-Cache") != "MISS" || *calls != 2 {
		t.Fatalf("query variant: X-Cache=%q calls=%d", rec.Header().Get("X-Cache"), *calls)
	}

	mr.FastForward(2 * time.Minute)
	if rec := get("/v1/catalog"); rec.Header().Get("X-Cache") != "MISS" || *calls != 3 {
		t.Fatalf("after ttl: X-Cache=%q calls=%d", rec.Header().Get("X-Cache"), *calls)
	}
}

func TestRedisCacheSkipsOversizedBodies(t *testing.T) {
	e, mr, calls := newCacheServer(t, 4)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/catalog", nil))
		if rec.Header().Get("X-Cache") != "MISS" {
			t.Fatalf("request %d: X-Cache=%q", i, rec.Header().Get("X-Cache"))
		}
	}
	if *calls != 2 || len(mr.Keys()) != 0 {
		t.Fatalf("calls=%d keys=%v", *calls, mr.Keys())
	}
}

func TestRequestLoggerWritesEntry(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/healthz", okHandler)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	if got := entries[0].ContextMap()["status"]; got != int64(200) {
		t.Fatalf("status field = %v", got)
	}
}
