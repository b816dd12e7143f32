package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"clientportal/internal/auth"
	"clientportal/internal/documents"
)

type DocumentService interface {
	Create(ctx context.Context, userID int64, documentType, description string) (*documents.DocumentRequest, error)
	Get(ctx context.Context, id int64) (*documents.DocumentRequest, error)
	List(ctx context.Context, userID int64, status documents.Status) ([]documents.DocumentRequest, error)
	UpdateStatus(ctx context.Context, id int64, status documents.Status, adminResponse *string) (*documents.DocumentRequest, error)
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type CreateDocumentRequest struct {
	DocumentType string `json:"document_type" validate:"required,max=100"`
	Description  string `json:"description" validate:"max=2000"`
}

type UpdateStatusRequest struct {
	Status        documents.Status `json:"status" validate:"required,oneof=pending completed rejected"`
	AdminResponse *string          `json:"admin_response" validate:"omitempty,max=2000"`
}

// Create handles POST /document-requests.
func (h *DocumentHandler) Create(c echo.Context) error {
	session, found := auth.SessionFrom(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	var req CreateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "document_type is required")
	}

	created, err := h.svc.Create(c.Request().Context(), session.UserID, req.DocumentType, req.Description)
	if err != nil {
		slog.Error("failed to create document request", "user_id", session.UserID, "error", err)
		return internalError(c)
	}

	return ok(c, http.StatusCreated, created)
}

// List handles GET /document-requests for the current user.
func (h *DocumentHandler) List(c echo.Context) error {
	session, found := auth.SessionFrom(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	status := documents.Status(c.QueryParam("status"))
	list, err := h.svc.List(c.Request().Context(), session.UserID, status)
	if errors.Is(err, documents.ErrInvalidStatus) {
		return fail(c, http.StatusBadRequest, "Invalid status")
	}
	if err != nil {
		slog.Error("failed to list document requests", "user_id", session.UserID, "error", err)
		return internalError(c)
	}

	return ok(c, http.StatusOK, list)
}

// Get handles GET /document-requests/:id. Non-owners other than admins get a
// 404 so ids are not disclosed.
func (h *DocumentHandler) Get(c echo.Context) error {
	session, found := auth.SessionFrom(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return fail(c, http.StatusBadRequest, "Invalid request ID")
	}

	req, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, documents.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Document request not found")
	}
	if err != nil {
		slog.Error("failed to get document request", "request_id", id, "error", err)
		return internalError(c)
	}
	if req.UserID != session.UserID && !session.IsAdmin() {
		return fail(c, http.StatusNotFound, "Document request not found")
	}

	return ok(c, http.StatusOK, req)
}

// UpdateStatus handles POST /document-requests/:id/status (admin only).
func (h *DocumentHandler) UpdateStatus(c echo.Context) error {
	session, found := auth.SessionFrom(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return fail(c, http.StatusBadRequest, "Invalid request ID")
	}

	var body UpdateStatusRequest
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	if err := c.Validate(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid status")
	}

	updated, err := h.svc.UpdateStatus(c.Request().Context(), id, body.Status, body.AdminResponse)
	switch {
	case errors.Is(err, documents.ErrNotFound):
		return fail(c, http.StatusNotFound, "Document request not found")
	case errors.Is(err, documents.ErrInvalidStatus):
		return fail(c, http.StatusBadRequest, "Invalid status")
	case err != nil:
		slog.Error("failed to update document request", "request_id", id, "admin_id", session.UserID, "error", err)
		return internalError(c)
	}

	slog.Info("Document request updated", "request_id", id, "admin_id", session.UserID, "status", updated.Status)
	return ok(c, http.StatusOK, updated)
}
