package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/freva-org/freva-nextgen-sub000/config"
)

func TestDOSProtectionMiddleware_BlocksAfterBurst(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:       true,
		RateLimit:     5,
		BurstLimit:    2,
		WindowSize:    time.Minute,
		BlockDuration: 5 * time.Minute,
	}
	e := echo.New()
	h := DOSProtectionMiddleware(cfg)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	var statuses []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/databrowser/search/freva", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := h(c); err != nil {
			he, ok := err.(*echo.HTTPError)
			if assert.True(t, ok) {
				statuses = append(statuses, he.Code)
			}
			continue
		}
		statuses = append(statuses, rec.Code)
	}

	assert.Equal(t, []int{200, 200, 429}, statuses)
}

func TestDOSProtectionMiddleware_PerIPIsolation(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:       true,
		RateLimit:     1,
		BurstLimit:    1,
		WindowSize:    time.Minute,
		BlockDuration: 5 * time.Minute,
	}
	e := echo.New()
	h := DOSProtectionMiddleware(cfg)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req1 := httptest.NewRequest(http.MethodGet, "/databrowser/search/freva", nil)
	req1.RemoteAddr = "10.0.0.1:1234"
	rec1 := httptest.NewRecorder()
	assert.NoError(t, h(e.NewContext(req1, rec1)))
	assert.Equal(t, http.StatusOK, rec1.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/databrowser/search/freva", nil)
	req2.RemoteAddr = "10.0.0.2:1234"
	rec2 := httptest.NewRecorder()
	assert.NoError(t, h(e.NewContext(req2, rec2)))
	assert.Equal(t, http.StatusOK, rec2.Code)
}

func TestDOSProtectionMiddleware_Disabled(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false}
	e := echo.New()
	h := DOSProtectionMiddleware(cfg)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/databrowser/search/freva", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		rec := httptest.NewRecorder()
		assert.NoError(t, h(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestIsWhitelistedPath(t *testing.T) {
	assert.True(t, isWhitelistedPath("/metrics", []string{"/metrics"}))
	assert.True(t, isWhitelistedPath("/api/freva-nextgen/zarr/abc.zarr/.zarray", nil))
	assert.False(t, isWhitelistedPath("/api/freva-nextgen/databrowser/search/freva", nil))
}

func TestClientIP_PrefersXForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")

	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "203.0.113.5", clientIP(c))
}
