package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"clientportal/internal/auth"
	"clientportal/internal/notification"
	"clientportal/internal/security"
)

type NotificationStore interface {
	GetAdminNotificationsPaginated(ctx context.Context, adminID int64, limit, offset int) (*notification.AdminNotificationPage, error)
	GetUnreadAdminNotificationCount(ctx context.Context, adminID int64) (int, error)
	MarkAdminNotificationAsRead(ctx context.Context, notificationID, adminID int64) error
	MarkAllAdminNotificationsAsRead(ctx context.Context, adminID int64) error

	GetUserNotifications(ctx context.Context, userID int64, limit int) ([]notification.Notification, error)
	GetUnreadUserNotificationCount(ctx context.Context, userID int64) (int, error)
	MarkUserNotificationAsRead(ctx context.Context, notificationID, userID int64) error
	MarkAllUserNotificationsAsRead(ctx context.Context, userID int64) error
}

type NotificationHandler struct {
	store NotificationStore
	bulk  *security.KeyedLimiter
}

// NewNotificationHandler wires the notification endpoints. bulk may be nil to
// disable the mark-all limiter.
func NewNotificationHandler(store NotificationStore, bulk *security.KeyedLimiter) *NotificationHandler {
	return &NotificationHandler{store: store, bulk: bulk}
}

// Page is capped so the offset cannot overflow.
type paginationQuery struct {
	Page  int `query:"page" validate:"min=1,max=1000000"`
	Limit int `query:"limit" validate:"min=1,max=100"`
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

type PaginatedNotifications struct {
	Notifications []notification.AdminNotification `json:"notifications"`
	UnreadCount   int                              `json:"unreadCount"`
	Pagination    Pagination                       `json:"pagination"`
}

func newPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page*limit < total,
	}
}

// GetPaginated handles GET /notifications/paginated.
func (h *NotificationHandler) GetPaginated(c echo.Context) error {
	noCache(c)

	session, found := auth.SessionFrom(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	q := paginationQuery{Page: 1, Limit: 10}
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid pagination parameters")
	}
	if err := c.Validate(&q); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid pagination parameters")
	}
	offset := (q.Page - 1) * q.Limit

	var (
		page   *notification.AdminNotificationPage
		unread int
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		page, err = h.store.GetAdminNotificationsPaginated(ctx, session.UserID, q.Limit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		unread, err = h.store.GetUnreadAdminNotificationCount(ctx, session.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("failed to fetch admin notifications", "admin_id", session.UserID, "page", q.Page, "error", err)
		return internalError(c)
	}

	return ok(c, http.StatusOK, PaginatedNotifications{
		Notifications: page.Notifications,
		UnreadCount:   unread,
		Pagination:    newPagination(q.Page, q.Limit, page.Total),
	})
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	noCache(c)

	session, found := auth.SessionFrom(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return fail(c, http.StatusBadRequest, "Invalid notification ID")
	}

	err = h.store.MarkAdminNotificationAsRead(c.Request().Context(), id, session.UserID)
	if errors.Is(err, notification.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Notification not found")
	}
	if err != nil {
		slog.Error("failed to mark admin notification read", "notification_id", id, "admin_id", session.UserID, "error", err)
		return internalError(c)
	}

	return c.JSON(http.StatusOK, envelope{Success: true})
}

// MarkAllRead handles POST /notifications/mark-all-read.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	noCache(c)

	session, found := auth.SessionFrom(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	if h.bulk != nil && !h.bulk.Allow(session.UserID) {
		return fail(c, http.StatusTooManyRequests, "Too many requests")
	}

	if err := h.store.MarkAllAdminNotificationsAsRead(c.Request().Context(), session.UserID); err != nil {
		slog.Error("failed to mark all admin notifications read", "admin_id", session.UserID, "error", err)
		return internalError(c)
	}

	return c.JSON(http.StatusOK, envelope{Success: true})
}
