package notification

import (
	"context"
	"fmt"
	"log/slog"

	"clientportal/internal/documents"
)

type creator interface {
	CreateAdminNotification(ctx context.Context, req AdminNotificationRequest) (*AdminNotification, error)
	CreateUserNotification(ctx context.Context, req UserNotificationRequest) (*Notification, error)
}

// MailEnqueuer schedules out-of-band email for a stored admin notification.
type MailEnqueuer interface {
	EnqueueAdminEmail(ctx context.Context, notificationID int64) error
}

// NotificationService turns domain events into stored notifications. It writes
// exactly one row per call and never retries.
type NotificationService struct {
	store creator
	mail  MailEnqueuer
}

// NewNotificationService builds the fan-out service. mail may be nil, in which
// case no email is scheduled.
func NewNotificationService(store creator, mail MailEnqueuer) *NotificationService {
	return &NotificationService{store: store, mail: mail}
}

func (s *NotificationService) NotifyAdminsNewDocumentRequest(ctx context.Context, req documents.DocumentRequest, requesterName string) error {
	if requesterName == "" {
		requesterName = fmt.Sprintf("User #%d", req.UserID)
	}

	relatedID := req.ID
	relatedType := RelatedDocumentRequests
	data := DocumentRequestData{
		RequestID:    req.ID,
		DocumentType: req.DocumentType,
		UserID:       req.UserID,
		UserName:     requesterName,
	}

	message := fmt.Sprintf("%s requested %s.", requesterName, req.DocumentType)
	if req.Description != "" {
		message = fmt.Sprintf("%s requested %s: %s", requesterName, req.DocumentType, req.Description)
	}

	n, err := s.store.CreateAdminNotification(ctx, AdminNotificationRequest{
		Type:        TypeDocumentRequest,
		Title:       "New Document Request",
		Message:     message,
		RelatedID:   &relatedID,
		RelatedType: &relatedType,
		Data:        data.Payload(),
	})
	if err != nil {
		return fmt.Errorf("failed to notify admins of document request %d: %w", req.ID, err)
	}

	slog.Info("Admin notification created",
		"notification_id", n.ID,
		"request_id", req.ID,
		"user_id", req.UserID)

	if s.mail != nil {
		if err := s.mail.EnqueueAdminEmail(ctx, n.ID); err != nil {
			slog.Warn("failed to schedule admin notification email", "notification_id", n.ID, "error", err)
		}
	}

	return nil
}

func (s *NotificationService) NotifyUserDocumentRequestUpdate(ctx context.Context, userID int64, req documents.DocumentRequest, update documents.UpdateType) error {
	var title, message string
	switch update {
	case documents.UpdateStatusChanged:
		title = "Document Request Updated"
		message = fmt.Sprintf("Your request for %s is now %s.", req.DocumentType, req.Status)
	case documents.UpdateAdminResponded:
		title = "Response to Your Document Request"
		message = fmt.Sprintf("An administrator responded to your request for %s.", req.DocumentType)
		if req.AdminResponse != nil && *req.AdminResponse != "" {
			message = fmt.Sprintf("An administrator responded to your request for %s: %s", req.DocumentType, *req.AdminResponse)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownUpdateType, update)
	}

	relatedID := req.ID
	relatedType := RelatedDocumentRequests
	n, err := s.store.CreateUserNotification(ctx, UserNotificationRequest{
		UserID:      userID,
		Type:        TypeDocumentRequestUpdate,
		Title:       title,
		Message:     message,
		RelatedID:   &relatedID,
		RelatedType: &relatedType,
	})
	if err != nil {
		return fmt.Errorf("failed to notify user %d of document request %d: %w", userID, req.ID, err)
	}

	slog.Info("User notification created",
		"notification_id", n.ID,
		"user_id", userID,
		"request_id", req.ID,
		"update", update)
	return nil
}
