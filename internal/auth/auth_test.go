package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret-0123456789"

func newTestValidator(t *testing.T) *SessionValidator {
	t.Helper()
	v, err := NewSessionValidator(testSecret, "portal_session")
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func requestWithCookie(name, value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if value != "" {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return req
}

func TestValidateRoundTrip(t *testing.T) {
	v := newTestValidator(t)
	token, err := v.IssueToken(12, RoleAdmin, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	session, err := v.Validate(requestWithCookie("portal_session", token))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if session.UserID != 12 || !session.IsAdmin() {
		t.Errorf("session = %+v", session)
	}
}

func TestValidateRejects(t *testing.T) {
	v := newTestValidator(t)
	other, _ := NewSessionValidator("another-secret-987654", "portal_session")

	expired, _ := v.IssueToken(12, RoleAdmin, -time.Minute)
	foreign, _ := other.IssueToken(12, RoleAdmin, time.Hour)
	badRole, _ := v.IssueToken(12, Role("root"), time.Hour)
	noUser, _ := v.IssueToken(0, RoleClient, time.Hour)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"no cookie", requestWithCookie("portal_session", "")},
		{"wrong cookie name", requestWithCookie("other", foreign)},
		{"garbage", requestWithCookie("portal_session", "not-a-jwt")},
		{"expired", requestWithCookie("portal_session", expired)},
		{"wrong secret", requestWithCookie("portal_session", foreign)},
		{"unknown role", requestWithCookie("portal_session", badRole)},
		{"no user id", requestWithCookie("portal_session", noUser)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Validate(tt.req); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestNewSessionValidatorRequiresSecret(t *testing.T) {
	if _, err := NewSessionValidator("short", "c"); err == nil {
		t.Error("expected error for short secret")
	}
	if _, err := NewSessionValidator(testSecret, ""); err == nil {
		t.Error("expected error for empty cookie name")
	}
}

func TestMiddlewareAndRequireAdmin(t *testing.T) {
	v := newTestValidator(t)
	adminToken, _ := v.IssueToken(1, RoleAdmin, time.Hour)
	clientToken, _ := v.IssueToken(2, RoleClient, time.Hour)

	e := echo.New()
	e.GET("/admin", func(c echo.Context) error {
		session, _ := SessionFrom(c)
		return c.JSON(http.StatusOK, map[string]int64{"user_id": session.UserID})
	}, v.Middleware, RequireAdmin)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"client", clientToken, http.StatusForbidden},
		{"admin", adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, requestWithCookie("portal_session", tt.token))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
