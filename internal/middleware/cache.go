package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/arcade-reservation-board/internal/config"
)

// cachedResponse is what the cache stores per key.
type cachedResponse struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header,omitempty"`
	Body     []byte      `json:"body"`
	StoredAt int64       `json:"stored_at"`
}

// replayable reports whether a captured response may be stored.
func (r *cachedResponse) replayable() bool {
	return r.Status == http.StatusOK
}

// bodyRecorder forwards the response while keeping a bounded copy of the
// body.  overflow is set once more than limit bytes were written.
type bodyRecorder struct {
	http.ResponseWriter
	status   int
	body     bytes.Buffer
	limit    int
	overflow bool
}

func (w *bodyRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.limit > 0 && w.body.Len()+len(b) > w.limit {
			w.overflow = true
			w.body.Reset()
		} else {
			w.body.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// responseCache replays stored 200 responses from Redis.
type responseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
	now func() time.Time
}

// key derives the Redis key for the request under the configured strategy.
func (rc *responseCache) key(c echo.Context) string {
	r := c.Request()
	h := sha1.New()
	switch strings.ToLower(rc.cfg.KeyStrategy) {
	case "route":
		h.Write([]byte(c.Path()))
	case "method_route":
		h.Write([]byte(r.Method + " " + c.Path()))
	default: // route_query
		h.Write([]byte(c.Path() + "?" + r.URL.RawQuery))
	}
	return rc.cfg.Prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

func (rc *responseCache) lookup(ctx context.Context, key string) (*cachedResponse, bool) {
	raw, err := rc.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var cr cachedResponse
	if err := json.Unmarshal(raw, &cr); err != nil || cr.Status == 0 {
		return nil, false
	}
	return &cr, true
}

func (rc *responseCache) store(ctx context.Context, key string, cr *cachedResponse) {
	raw, err := json.Marshal(cr)
	if err != nil {
		return
	}
	_ = rc.rdb.Set(context.WithoutCancel(ctx), key, raw, rc.cfg.TTL).Err()
}

// replay writes cr to the client.  Content-Length is recomputed by the
// server, and Age reports how long the entry has been stored.
func (rc *responseCache) replay(c echo.Context, cr *cachedResponse) error {
	h := c.Response().Header()
	for k, vals := range cr.Header {
		if http.CanonicalHeaderKey(k) == echo.HeaderContentLength {
			continue
		}
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
	}
	age := rc.now().Unix() - cr.StoredAt
	if age < 0 {
		age = 0
	}
	h.Set("Age", strconv.FormatInt(age, 10))
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(cr.Status)
	_, err := c.Response().Write(cr.Body)
	return err
}

func (rc *responseCache) handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
			return next(c)
		}
		ctx := c.Request().Context()
		key := rc.key(c)
		if cr, ok := rc.lookup(ctx, key); ok {
			return rc.replay(c, cr)
		}

		rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: rc.cfg.MaxBodyBytes}
		c.Response().Writer = rec
		c.Response().Header().Set("X-Cache", "MISS")
		if err := next(c); err != nil {
			return err
		}
		if rec.overflow {
			return nil
		}
		hdr := c.Response().Header().Clone()
		hdr.Del("X-Cache")
		cr := &cachedResponse{Status: rec.status, Header: hdr, Body: rec.body.Bytes(), StoredAt: rc.now().Unix()}
		if cr.replayable() {
			rc.store(ctx, key, cr)
		}
		return nil
	}
}

// NewRedisCache serves the configured methods from Redis once a 200
// response has been captured.  It is a pass-through when caching is
// disabled or no Redis client is available.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	rc := &responseCache{cfg: cfg, rdb: rdb, now: time.Now}
	return rc.handle
}
