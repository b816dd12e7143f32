package documents

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// UpdateType selects the user-facing message sent after an admin touches a
// request.
type UpdateType string

const (
	UpdateStatusChanged  UpdateType = "status_changed"
	UpdateAdminResponded UpdateType = "admin_responded"
)

var (
	ErrNotFound      = errors.New("document request not found")
	ErrInvalidStatus = errors.New("invalid document request status")
)

type DocumentRequest struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	DocumentType  string    `db:"document_type" json:"document_type"`
	Description   string    `db:"description" json:"description"`
	Status        Status    `db:"status" json:"status"`
	AdminResponse *string   `db:"admin_response" json:"admin_response"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
