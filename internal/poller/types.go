// Package poller keeps a client-side view of the admin notification feed and
// alerts once per new notification.
package poller

import "time"

type Notification struct {
	ID          int64                  `json:"id"`
	Type        string                 `json:"type"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	RelatedID   *int64                 `json:"related_id"`
	RelatedType *string                `json:"related_type"`
	Data        map[string]interface{} `json:"data"`
	CreatedAt   time.Time              `json:"created_at"`
	IsRead      bool                   `json:"is_read"`
	ReadByCount int                    `json:"read_by_count"`
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

type Page struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
	Pagination    Pagination     `json:"pagination"`
}
