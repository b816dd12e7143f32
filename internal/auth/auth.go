package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

const sessionKey = "session"

var ErrUnauthorized = errors.New("missing or invalid session")

// Session is what a validated cookie yields.
type Session struct {
	UserID int64
	Role   Role
}

func (s *Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

type Claims struct {
	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
	jwt.RegisteredClaims
}

// SessionValidator checks the signed session cookie set by the portal's login
// flow.
type SessionValidator struct {
	secret []byte
	cookie string
}

func NewSessionValidator(secret, cookieName string) (*SessionValidator, error) {
	if len(secret) < 16 {
		return nil, errors.New("session secret must be at least 16 bytes")
	}
	if cookieName == "" {
		return nil, errors.New("session cookie name is required")
	}
	return &SessionValidator{secret: []byte(secret), cookie: cookieName}, nil
}

func (v *SessionValidator) CookieName() string {
	return v.cookie
}

// IssueToken signs a session token. The login flow lives outside this
// service; this is used by the seed command and tests.
func (v *SessionValidator) IssueToken(userID int64, role Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *SessionValidator) Validate(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(v.cookie)
	if err != nil || cookie.Value == "" {
		return nil, ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	if claims.UserID <= 0 {
		return nil, ErrUnauthorized
	}
	switch claims.Role {
	case RoleAdmin, RoleClient:
	default:
		return nil, ErrUnauthorized
	}

	return &Session{UserID: claims.UserID, Role: claims.Role}, nil
}

// Middleware rejects requests without a valid session cookie.
func (v *SessionValidator) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := v.Validate(c.Request())
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"error":   "Unauthorized",
			})
		}
		c.Set(sessionKey, session)
		return next(c)
	}
}

// RequireAdmin must run after Middleware.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, ok := SessionFrom(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"error":   "Unauthorized",
			})
		}
		if !session.IsAdmin() {
			return c.JSON(http.StatusForbidden, map[string]interface{}{
				"success": false,
				"error":   "Forbidden",
			})
		}
		return next(c)
	}
}

func SessionFrom(c echo.Context) (*Session, bool) {
	session, ok := c.Get(sessionKey).(*Session)
	return session, ok && session != nil
}

// WithSession stores a session on the context. Handlers read it back with
// SessionFrom.
func WithSession(c echo.Context, session *Session) {
	c.Set(sessionKey, session)
}
