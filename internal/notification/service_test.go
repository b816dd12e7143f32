package notification

import (
	"context"
	"errors"
	"testing"

	"clientportal/internal/documents"
)

type mockCreator struct {
	adminReqs []AdminNotificationRequest
	userReqs  []UserNotificationRequest
	err       error
}

func (m *mockCreator) CreateAdminNotification(ctx context.Context, req AdminNotificationRequest) (*AdminNotification, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.adminReqs = append(m.adminReqs, req)
	return &AdminNotification{ID: int64(len(m.adminReqs)), Type: req.Type, Data: req.Data}, nil
}

func (m *mockCreator) CreateUserNotification(ctx context.Context, req UserNotificationRequest) (*Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.userReqs = append(m.userReqs, req)
	return &Notification{ID: int64(len(m.userReqs)), UserID: req.UserID}, nil
}

type mockEnqueuer struct {
	ids []int64
	err error
}

func (m *mockEnqueuer) EnqueueAdminEmail(ctx context.Context, id int64) error {
	m.ids = append(m.ids, id)
	return m.err
}

func testRequest() documents.DocumentRequest {
	return documents.DocumentRequest{
		ID:           42,
		UserID:       7,
		DocumentType: "W-2",
		Description:  "2025 tax year",
		Status:       documents.StatusPending,
	}
}

func TestNotifyAdminsNewDocumentRequest(t *testing.T) {
	store := &mockCreator{}
	mail := &mockEnqueuer{}
	svc := NewNotificationService(store, mail)

	if err := svc.NotifyAdminsNewDocumentRequest(context.Background(), testRequest(), "Ada Lovelace"); err != nil {
		t.Fatal(err)
	}

	if len(store.adminReqs) != 1 {
		t.Fatalf("expected exactly one admin notification, got %d", len(store.adminReqs))
	}
	got := store.adminReqs[0]
	if got.Type != TypeDocumentRequest {
		t.Errorf("type = %q", got.Type)
	}
	if got.RelatedType == nil || *got.RelatedType != RelatedDocumentRequests {
		t.Errorf("related_type = %v", got.RelatedType)
	}
	if got.RelatedID == nil || *got.RelatedID != 42 {
		t.Errorf("related_id = %v", got.RelatedID)
	}

	data, err := got.Data.DocumentRequest()
	if err != nil {
		t.Fatal(err)
	}
	if data.DocumentType != "W-2" || data.UserID != 7 || data.UserName != "Ada Lovelace" {
		t.Errorf("data = %+v", data)
	}

	if len(mail.ids) != 1 || mail.ids[0] != 1 {
		t.Errorf("expected email enqueued for notification 1, got %v", mail.ids)
	}
}

func TestNotifyAdminsEnqueueFailureIsIgnored(t *testing.T) {
	svc := NewNotificationService(&mockCreator{}, &mockEnqueuer{err: errors.New("redis down")})

	if err := svc.NotifyAdminsNewDocumentRequest(context.Background(), testRequest(), "Ada"); err != nil {
		t.Errorf("enqueue failure should not surface, got %v", err)
	}
}

func TestNotifyAdminsWithoutMailQueue(t *testing.T) {
	store := &mockCreator{}
	svc := NewNotificationService(store, nil)

	if err := svc.NotifyAdminsNewDocumentRequest(context.Background(), testRequest(), ""); err != nil {
		t.Fatal(err)
	}
	data, _ := store.adminReqs[0].Data.DocumentRequest()
	if data.UserName != "User #7" {
		t.Errorf("fallback name = %q", data.UserName)
	}
}

func TestNotifyAdminsPropagatesStoreError(t *testing.T) {
	storeErr := &StoreError{Op: "create admin notification", Err: errors.New("conn refused")}
	svc := NewNotificationService(&mockCreator{err: storeErr}, nil)

	err := svc.NotifyAdminsNewDocumentRequest(context.Background(), testRequest(), "Ada")
	var se *StoreError
	if !errors.As(err, &se) {
		t.Errorf("expected StoreError, got %v", err)
	}
}

func TestNotifyUserDocumentRequestUpdate(t *testing.T) {
	response := "Please upload page 2"
	tests := []struct {
		name      string
		update    documents.UpdateType
		response  *string
		wantTitle string
		wantMsg   string
	}{
		{
			name:      "status changed",
			update:    documents.UpdateStatusChanged,
			wantTitle: "Document Request Updated",
			wantMsg:   "Your request for W-2 is now pending.",
		},
		{
			name:      "admin responded",
			update:    documents.UpdateAdminResponded,
			response:  &response,
			wantTitle: "Response to Your Document Request",
			wantMsg:   "An administrator responded to your request for W-2: Please upload page 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockCreator{}
			svc := NewNotificationService(store, nil)
			req := testRequest()
			req.AdminResponse = tt.response

			if err := svc.NotifyUserDocumentRequestUpdate(context.Background(), 7, req, tt.update); err != nil {
				t.Fatal(err)
			}
			if len(store.userReqs) != 1 {
				t.Fatalf("expected one user notification, got %d", len(store.userReqs))
			}
			got := store.userReqs[0]
			if got.UserID != 7 || got.Title != tt.wantTitle || got.Message != tt.wantMsg {
				t.Errorf("got %+v", got)
			}
			if got.RelatedID == nil || *got.RelatedID != 42 {
				t.Errorf("related_id = %v", got.RelatedID)
			}
		})
	}
}

func TestNotifyUserUnknownUpdateType(t *testing.T) {
	store := &mockCreator{}
	svc := NewNotificationService(store, nil)

	err := svc.NotifyUserDocumentRequestUpdate(context.Background(), 7, testRequest(), "deleted")
	if !errors.Is(err, ErrUnknownUpdateType) {
		t.Errorf("expected ErrUnknownUpdateType, got %v", err)
	}
	if len(store.userReqs) != 0 {
		t.Error("no notification should be stored")
	}
}
