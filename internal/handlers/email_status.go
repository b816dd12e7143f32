package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"clientportal/internal/queue"
)

type EmailStatusReader interface {
	EmailStatus(notificationID int64) (*queue.EmailStatus, error)
}

type EmailStatusHandler struct {
	tasks EmailStatusReader
}

func NewEmailStatusHandler(tasks EmailStatusReader) *EmailStatusHandler {
	return &EmailStatusHandler{tasks: tasks}
}

// Get handles GET /notifications/:id/email-status.
func (h *EmailStatusHandler) Get(c echo.Context) error {
	noCache(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return fail(c, http.StatusBadRequest, "Invalid notification ID")
	}

	status, err := h.tasks.EmailStatus(id)
	if errors.Is(err, queue.ErrTaskNotFound) {
		return fail(c, http.StatusNotFound, "No email task for this notification")
	}
	if err != nil {
		slog.Error("failed to read email task status", "notification_id", id, "error", err)
		return internalError(c)
	}

	return ok(c, http.StatusOK, status)
}
