package documents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"clientportal/internal/cache"
	"clientportal/internal/metrics"
)

type requestStore interface {
	Create(ctx context.Context, userID int64, documentType, description string) (*DocumentRequest, error)
	GetByID(ctx context.Context, id int64) (*DocumentRequest, error)
	ListByUser(ctx context.Context, userID int64, status Status) ([]DocumentRequest, error)
	UpdateStatus(ctx context.Context, id int64, status Status, adminResponse *string) (*DocumentRequest, error)
}

// Notifier receives document request events. Implementations store the
// resulting notifications; the service treats every call as best-effort.
type Notifier interface {
	NotifyAdminsNewDocumentRequest(ctx context.Context, req DocumentRequest, requesterName string) error
	NotifyUserDocumentRequestUpdate(ctx context.Context, userID int64, req DocumentRequest, update UpdateType) error
}

type UserDirectory interface {
	DisplayName(ctx context.Context, userID int64) (string, error)
}

type Service struct {
	store    requestStore
	notifier Notifier
	users    UserDirectory

	details *cache.TTL[int64, DocumentRequest]
	lists   *cache.TTL[string, []DocumentRequest]
}

func NewService(store requestStore, notifier Notifier, users UserDirectory, ttl time.Duration) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		users:    users,
		details:  cache.New[int64, DocumentRequest](ttl),
		lists:    cache.New[string, []DocumentRequest](ttl),
	}
}

// Create stores a new request and then notifies admins. A notification
// failure is logged and does not fail the request.
func (s *Service) Create(ctx context.Context, userID int64, documentType, description string) (*DocumentRequest, error) {
	req, err := s.store.Create(ctx, userID, documentType, description)
	if err != nil {
		return nil, err
	}
	s.invalidateUser(userID)

	slog.Info("Document request created", "request_id", req.ID, "user_id", userID, "document_type", documentType)

	name, err := s.users.DisplayName(ctx, userID)
	if err != nil {
		slog.Warn("failed to look up requester name", "user_id", userID, "error", err)
		name = ""
	}
	if err := s.notifier.NotifyAdminsNewDocumentRequest(ctx, *req, name); err != nil {
		metrics.NotifyFailures.WithLabelValues("document_request_created").Inc()
		slog.Error("failed to notify admins of new document request", "request_id", req.ID, "error", err)
	}

	return req, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*DocumentRequest, error) {
	if req, ok := s.details.Get(id); ok {
		return &req, nil
	}
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.details.Set(id, *req)
	return req, nil
}

func (s *Service) List(ctx context.Context, userID int64, status Status) ([]DocumentRequest, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	key := listKey(userID, status)
	if reqs, ok := s.lists.Get(key); ok {
		return reqs, nil
	}
	reqs, err := s.store.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	s.lists.Set(key, reqs)
	return reqs, nil
}

// UpdateStatus applies an admin decision and notifies the owner. A status
// change takes precedence over a response when both happen at once.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status, adminResponse *string) (*DocumentRequest, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req, err := s.store.UpdateStatus(ctx, id, status, adminResponse)
	if err != nil {
		return nil, err
	}
	s.details.Invalidate(id)
	s.invalidateUser(req.UserID)

	var update UpdateType
	switch {
	case before.Status != req.Status:
		update = UpdateStatusChanged
	case adminResponse != nil && *adminResponse != "":
		update = UpdateAdminResponded
	default:
		return req, nil
	}

	if err := s.notifier.NotifyUserDocumentRequestUpdate(ctx, req.UserID, *req, update); err != nil {
		metrics.NotifyFailures.WithLabelValues("document_request_updated").Inc()
		slog.Error("failed to notify user of document request update",
			"request_id", req.ID, "user_id", req.UserID, "error", err)
	}

	return req, nil
}

// SweepCaches drops expired entries and reports how many were removed.
func (s *Service) SweepCaches() int {
	return s.details.Sweep() + s.lists.Sweep()
}

func (s *Service) invalidateUser(userID int64) {
	prefix := fmt.Sprintf("user:%d|", userID)
	s.lists.InvalidateFunc(func(k string) bool { return strings.HasPrefix(k, prefix) })
}

func listKey(userID int64, status Status) string {
	return fmt.Sprintf("user:%d|status:%s", userID, status)
}
