package poller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("portal_session")
		if err != nil || cookie.Value != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/api/notifications/paginated" || r.URL.Query().Get("page") != "2" || r.URL.Query().Get("limit") != "10" {
			t.Errorf("unexpected request %s", r.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"notifications":[{"id":5,"title":"T","is_read":false,"created_at":"2026-05-01T12:00:00Z","data":null}],"unreadCount":4,"pagination":{"page":2,"limit":10,"total":11,"totalPages":2,"hasMore":false}}}`))
	}))
	defer srv.Close()

	page, err := NewClient(srv.URL+"/", "portal_session", "tok").Page(context.Background(), 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Notifications) != 1 || page.Notifications[0].ID != 5 || page.UnreadCount != 4 {
		t.Errorf("unexpected page %+v", page)
	}
	if page.Pagination.HasMore || page.Pagination.TotalPages != 2 {
		t.Errorf("pagination %+v", page.Pagination)
	}
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/notifications/mark-all-read":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":"Notification not found"}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "portal_session", "tok")

	if err := c.MarkAllRead(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	var se *StatusError
	if err := c.MarkRead(context.Background(), 999); !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusNotFound || se.Message != "Notification not found" {
		t.Errorf("status error %+v", se)
	}
}
