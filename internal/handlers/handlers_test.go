package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"clientportal/internal/auth"
	"clientportal/internal/notification"
)

type mockNotificationStore struct {
	PageFunc        func(ctx context.Context, adminID int64, limit, offset int) (*notification.AdminNotificationPage, error)
	UnreadFunc      func(ctx context.Context, adminID int64) (int, error)
	MarkFunc        func(ctx context.Context, notificationID, adminID int64) error
	MarkAllFunc     func(ctx context.Context, adminID int64) error
	UserListFunc    func(ctx context.Context, userID int64, limit int) ([]notification.Notification, error)
	UserUnreadFunc  func(ctx context.Context, userID int64) (int, error)
	UserMarkFunc    func(ctx context.Context, notificationID, userID int64) error
	UserMarkAllFunc func(ctx context.Context, userID int64) error
}

func (m *mockNotificationStore) GetAdminNotificationsPaginated(ctx context.Context, adminID int64, limit, offset int) (*notification.AdminNotificationPage, error) {
	if m.PageFunc != nil {
		return m.PageFunc(ctx, adminID, limit, offset)
	}
	return &notification.AdminNotificationPage{Notifications: []notification.AdminNotification{}}, nil
}

func (m *mockNotificationStore) GetUnreadAdminNotificationCount(ctx context.Context, adminID int64) (int, error) {
	if m.UnreadFunc != nil {
		return m.UnreadFunc(ctx, adminID)
	}
	return 0, nil
}

func (m *mockNotificationStore) MarkAdminNotificationAsRead(ctx context.Context, notificationID, adminID int64) error {
	if m.MarkFunc != nil {
		return m.MarkFunc(ctx, notificationID, adminID)
	}
	return nil
}

func (m *mockNotificationStore) MarkAllAdminNotificationsAsRead(ctx context.Context, adminID int64) error {
	if m.MarkAllFunc != nil {
		return m.MarkAllFunc(ctx, adminID)
	}
	return nil
}

func (m *mockNotificationStore) GetUserNotifications(ctx context.Context, userID int64, limit int) ([]notification.Notification, error) {
	if m.UserListFunc != nil {
		return m.UserListFunc(ctx, userID, limit)
	}
	return []notification.Notification{}, nil
}

func (m *mockNotificationStore) GetUnreadUserNotificationCount(ctx context.Context, userID int64) (int, error) {
	if m.UserUnreadFunc != nil {
		return m.UserUnreadFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockNotificationStore) MarkUserNotificationAsRead(ctx context.Context, notificationID, userID int64) error {
	if m.UserMarkFunc != nil {
		return m.UserMarkFunc(ctx, notificationID, userID)
	}
	return nil
}

func (m *mockNotificationStore) MarkAllUserNotificationsAsRead(ctx context.Context, userID int64) error {
	if m.UserMarkAllFunc != nil {
		return m.UserMarkAllFunc(ctx, userID)
	}
	return nil
}

var (
	adminSession  = &auth.Session{UserID: 4, Role: auth.RoleAdmin}
	clientSession = &auth.Session{UserID: 7, Role: auth.RoleClient}
)

// newContext builds an echo context for a direct handler call. A nil session
// leaves the request unauthenticated.
func newContext(method, target, body string, session *auth.Session) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewRequestValidator()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if session != nil {
		auth.WithSession(c, session)
	}
	return c, rec
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func assertNoCache(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if got := rec.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := rec.Header().Get("Pragma"); got != "no-cache" {
		t.Errorf("Pragma = %q", got)
	}
	if got := rec.Header().Get("Expires"); got != "0" {
		t.Errorf("Expires = %q", got)
	}
}
