package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestIPRateLimit(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, IPRateLimit(2))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other IP should not be limited, got %d", rec.Code)
	}
}

func TestKeyedLimiterIsPerKey(t *testing.T) {
	k := NewKeyedLimiter(time.Hour, 1)

	if !k.Allow(1) {
		t.Fatal("first call for key 1 should pass")
	}
	if k.Allow(1) {
		t.Error("second call for key 1 should be limited")
	}
	if !k.Allow(2) {
		t.Error("key 2 has its own bucket")
	}
}
