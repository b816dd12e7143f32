package notification

import (
	"errors"
	"fmt"
	"time"
)

type NotificationType string

const (
	TypeDocumentRequest       NotificationType = "document_request"
	TypeDocumentRequestUpdate NotificationType = "document_request_update"
)

// RelatedDocumentRequests is the related_type used for rows that point at a
// document_requests row.
const RelatedDocumentRequests = "document_requests"

var (
	ErrCreationFailed    = errors.New("notification insert did not return a new id")
	ErrNotFound          = errors.New("notification not found")
	ErrUnknownUpdateType = errors.New("unknown document request update type")
)

// StoreError wraps any failure reported by the database.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("notification store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// AdminNotification is a broadcast row shared by every admin. IsRead and
// ReadByCount are computed per query, never stored on the row.
type AdminNotification struct {
	ID          int64            `json:"id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	RelatedID   *int64           `json:"related_id"`
	RelatedType *string          `json:"related_type"`
	Data        Payload          `json:"data"`
	CreatedAt   time.Time        `json:"created_at"`
	IsRead      bool             `json:"is_read"`
	ReadByCount int              `json:"read_by_count"`
}

// Notification is addressed to exactly one user and carries its own read state.
type Notification struct {
	ID          int64            `db:"id" json:"id"`
	UserID      int64            `db:"user_id" json:"user_id"`
	Type        NotificationType `db:"type" json:"type"`
	Title       string           `db:"title" json:"title"`
	Message     string           `db:"message" json:"message"`
	RelatedID   *int64           `db:"related_id" json:"related_id"`
	RelatedType *string          `db:"related_type" json:"related_type"`
	IsRead      bool             `db:"is_read" json:"is_read"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	ReadAt      *time.Time       `db:"read_at" json:"read_at"`
}

type AdminNotificationRequest struct {
	Type        NotificationType
	Title       string
	Message     string
	RelatedID   *int64
	RelatedType *string
	Data        Payload
}

type UserNotificationRequest struct {
	UserID      int64
	Type        NotificationType
	Title       string
	Message     string
	RelatedID   *int64
	RelatedType *string
}

type AdminNotificationPage struct {
	Notifications []AdminNotification
	Total         int
}
