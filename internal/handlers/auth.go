package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"clientportal/internal/auth"
)

// dummyHash is checked for unknown emails so every login pays one bcrypt compare.
var dummyHash = sync.OnceValue(func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("unknown-account"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(h)
})

type credentialStore interface {
	GetUserByEmail(ctx context.Context, email string) (*auth.User, error)
}

// AuthHandler issues and clears the portal session cookie.
type AuthHandler struct {
	users    credentialStore
	sessions *auth.SessionValidator
	ttl      time.Duration
	verify   func(hash, password string) error
}

func NewAuthHandler(users credentialStore, sessions *auth.SessionValidator, ttl time.Duration) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, ttl: ttl, verify: auth.VerifyPassword}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	ID    int64     `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  auth.Role `json:"role"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Email and password are required")
	}

	user, err := h.users.GetUserByEmail(c.Request().Context(), req.Email)
	if errors.Is(err, auth.ErrUserNotFound) {
		_ = h.verify(dummyHash(), req.Password)
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		slog.Error("failed to look up user", "error", err)
		return internalError(c)
	}

	if err := h.verify(user.Password, req.Password); err != nil {
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	}

	token, err := h.sessions.IssueToken(user.ID, user.Role, h.ttl)
	if err != nil {
		slog.Error("failed to issue session token", "user_id", user.ID, "error", err)
		return internalError(c)
	}

	c.SetCookie(h.cookie(c, token, time.Now().Add(h.ttl), int(h.ttl.Seconds())))
	slog.Info("User logged in", "user_id", user.ID, "role", user.Role)

	return ok(c, http.StatusOK, loginResponse{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.cookie(c, "", time.Unix(0, 0), -1))
	return c.JSON(http.StatusOK, envelope{Success: true})
}

func (h *AuthHandler) cookie(c echo.Context, value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.sessions.CookieName(),
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.IsTLS(),
		SameSite: http.SameSiteLaxMode,
	}
}
