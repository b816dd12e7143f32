package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"clientportal/internal/auth"
	"clientportal/internal/notification"
)

type userListQuery struct {
	Limit int `query:"limit" validate:"min=1,max=100"`
}

// ListUserNotifications handles GET /user/notifications.
func (h *NotificationHandler) ListUserNotifications(c echo.Context) error {
	noCache(c)

	session, found := auth.SessionFrom(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	q := userListQuery{Limit: 20}
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid limit")
	}
	if err := c.Validate(&q); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid limit")
	}

	list, err := h.store.GetUserNotifications(c.Request().Context(), session.UserID, q.Limit)
	if err != nil {
		slog.Error("failed to list user notifications", "user_id", session.UserID, "error", err)
		return internalError(c)
	}

	return ok(c, http.StatusOK, map[string]interface{}{
		"notifications": list,
	})
}

// UserUnreadCount handles GET /user/notifications/unread-count.
func (h *NotificationHandler) UserUnreadCount(c echo.Context) error {
	noCache(c)

	session, found := auth.SessionFrom(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	count, err := h.store.GetUnreadUserNotificationCount(c.Request().Context(), session.UserID)
	if err != nil {
		slog.Error("failed to count unread user notifications", "user_id", session.UserID, "error", err)
		return internalError(c)
	}

	return ok(c, http.StatusOK, map[string]int{"unreadCount": count})
}

// MarkUserRead handles POST /user/notifications/:id/read.
func (h *NotificationHandler) MarkUserRead(c echo.Context) error {
	noCache(c)

	session, found := auth.SessionFrom(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return fail(c, http.StatusBadRequest, "Invalid notification ID")
	}

	err = h.store.MarkUserNotificationAsRead(c.Request().Context(), id, session.UserID)
	if errors.Is(err, notification.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Notification not found")
	}
	if err != nil {
		slog.Error("failed to mark user notification read", "notification_id", id, "user_id", session.UserID, "error", err)
		return internalError(c)
	}

	return c.JSON(http.StatusOK, envelope{Success: true})
}

// MarkAllUserRead handles POST /user/notifications/mark-all-read.
func (h *NotificationHandler) MarkAllUserRead(c echo.Context) error {
	noCache(c)

	session, found := auth.SessionFrom(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	if err := h.store.MarkAllUserNotificationsAsRead(c.Request().Context(), session.UserID); err != nil {
		slog.Error("failed to mark all user notifications read", "user_id", session.UserID, "error", err)
		return internalError(c)
	}

	return c.JSON(http.StatusOK, envelope{Success: true})
}
