package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"clientportal/internal/auth"
	"clientportal/internal/mailer"
	"clientportal/internal/metrics"
	"clientportal/internal/notification"
	"clientportal/internal/queue"
)

type notificationSource interface {
	GetAdminNotification(ctx context.Context, id, adminID int64) (*notification.AdminNotification, error)
	GetAllAdminIDs(ctx context.Context) ([]int64, error)
}

type addressBook interface {
	GetUserByID(ctx context.Context, id int64) (*auth.User, error)
}

// EmailHandler mails a stored admin notification to every current admin.
type EmailHandler struct {
	notifications notificationSource
	users         addressBook
	mail          mailer.Mailer
	portalURL     string
}

func NewEmailHandler(notifications notificationSource, users addressBook, mail mailer.Mailer, portalURL string) *EmailHandler {
	return &EmailHandler{
		notifications: notifications,
		users:         users,
		mail:          mail,
		portalURL:     strings.TrimRight(portalURL, "/"),
	}
}

// ProcessTask fails only when no admin could be reached, so asynq retries the
// whole fan-out. Partial delivery is logged and accepted.
func (h *EmailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := queue.ParseAdminEmailPayload(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	n, err := h.notifications.GetAdminNotification(ctx, payload.NotificationID, 0)
	if errors.Is(err, notification.ErrNotFound) {
		slog.Warn("admin email skipped, notification is gone", "notification_id", payload.NotificationID)
		return fmt.Errorf("notification %d: %w", payload.NotificationID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}

	adminIDs, err := h.notifications.GetAllAdminIDs(ctx)
	if err != nil {
		return err
	}
	if len(adminIDs) == 0 {
		slog.Info("no admins to email", "notification_id", n.ID)
		return nil
	}

	msg := h.render(n)
	sent := 0
	for _, id := range adminIDs {
		user, err := h.users.GetUserByID(ctx, id)
		if err != nil {
			slog.Warn("failed to look up admin email", "admin_id", id, "error", err)
			metrics.EmailsSent.WithLabelValues("failed").Inc()
			continue
		}

		msg.To = user.Email
		if err := h.mail.Send(ctx, msg); err != nil {
			slog.Warn("failed to email admin", "admin_id", id, "notification_id", n.ID, "error", err)
			metrics.EmailsSent.WithLabelValues("failed").Inc()
			continue
		}
		metrics.EmailsSent.WithLabelValues("sent").Inc()
		sent++
	}

	if sent == 0 {
		return fmt.Errorf("admin email for notification %d reached none of %d admins", n.ID, len(adminIDs))
	}

	slog.Info("Admin notification emailed", "notification_id", n.ID, "sent", sent, "admins", len(adminIDs))
	return nil
}

func (h *EmailHandler) render(n *notification.AdminNotification) mailer.Message {
	var b strings.Builder
	b.WriteString(n.Message)
	if h.portalURL != "" {
		b.WriteString("\n\nOpen the portal: ")
		b.WriteString(h.portalURL)
		if n.RelatedID != nil && n.RelatedType != nil && *n.RelatedType == notification.RelatedDocumentRequests {
			fmt.Fprintf(&b, "/admin/document-requests/%d", *n.RelatedID)
		}
	}
	return mailer.Message{
		Subject: n.Title,
		Text:    b.String(),
	}
}
