package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clientportal/internal/db"
)

const columns = `id, user_id, document_type, description, status, admin_response, created_at, updated_at`

type Store struct {
	db db.Queryer
}

func NewStore(q db.Queryer) *Store {
	return &Store{db: q}
}

func (s *Store) Create(ctx context.Context, userID int64, documentType, description string) (*DocumentRequest, error) {
	var req DocumentRequest
	err := s.db.GetContext(ctx, &req, `
		INSERT INTO document_requests (user_id, document_type, description)
		VALUES ($1, $2, $3)
		RETURNING `+columns, userID, documentType, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create document request: %w", err)
	}
	return &req, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*DocumentRequest, error) {
	var req DocumentRequest
	err := s.db.GetContext(ctx, &req, `SELECT `+columns+` FROM document_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document request: %w", err)
	}
	return &req, nil
}

// ListByUser returns a user's requests newest first, optionally filtered by
// status.
func (s *Store) ListByUser(ctx context.Context, userID int64, status Status) ([]DocumentRequest, error) {
	reqs := []DocumentRequest{}
	var err error
	if status == "" {
		err = s.db.SelectContext(ctx, &reqs, `
			SELECT `+columns+` FROM document_requests
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
		`, userID)
	} else {
		err = s.db.SelectContext(ctx, &reqs, `
			SELECT `+columns+` FROM document_requests
			WHERE user_id = $1 AND status = $2
			ORDER BY created_at DESC, id DESC
		`, userID, status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list document requests: %w", err)
	}
	return reqs, nil
}

// UpdateStatus sets status and, when adminResponse is non-nil, the admin
// response.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status Status, adminResponse *string) (*DocumentRequest, error) {
	var req DocumentRequest
	err := s.db.GetContext(ctx, &req, `
		UPDATE document_requests
		SET status = $2,
		    admin_response = COALESCE($3, admin_response),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING `+columns, id, status, adminResponse)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update document request: %w", err)
	}
	return &req, nil
}
