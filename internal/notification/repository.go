package notification

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"clientportal/internal/db"
	"clientportal/internal/metrics"
)

const adminColumns = `
	n.id, n.type, n.title, n.message, n.related_id, n.related_type, n.data, n.created_at`

type adminNotificationRow struct {
	ID          int64            `db:"id"`
	Type        NotificationType `db:"type"`
	Title       string           `db:"title"`
	Message     string           `db:"message"`
	RelatedID   *int64           `db:"related_id"`
	RelatedType *string          `db:"related_type"`
	Data        sql.NullString   `db:"data"`
	CreatedAt   time.Time        `db:"created_at"`
	IsRead      bool             `db:"is_read"`
	ReadByCount int              `db:"read_by_count"`
}

func (r adminNotificationRow) hydrate() AdminNotification {
	return AdminNotification{
		ID:          r.ID,
		Type:        r.Type,
		Title:       r.Title,
		Message:     r.Message,
		RelatedID:   r.RelatedID,
		RelatedType: r.RelatedType,
		Data:        decodePayload(r.ID, r.Data),
		CreatedAt:   r.CreatedAt,
		IsRead:      r.IsRead,
		ReadByCount: r.ReadByCount,
	}
}

// Repository is the only component that queries the notification tables.
type Repository struct {
	db db.Queryer
}

func NewRepository(q db.Queryer) *Repository {
	return &Repository{db: q}
}

func (r *Repository) CreateAdminNotification(ctx context.Context, req AdminNotificationRequest) (*AdminNotification, error) {
	data, err := encodePayload(req.Data)
	if err != nil {
		return nil, err
	}

	var id int64
	err = r.db.GetContext(ctx, &id, `
		INSERT INTO admin_notifications (type, title, message, related_id, related_type, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, req.Type, req.Title, req.Message, req.RelatedID, req.RelatedType, data)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && id == 0) {
		return nil, ErrCreationFailed
	}
	if err != nil {
		return nil, storeErr("create admin notification", err)
	}

	metrics.NotificationsCreated.WithLabelValues("admin").Inc()
	return r.GetAdminNotification(ctx, id, 0)
}

// GetAdminNotification loads one admin notification with read state computed
// for adminID. An adminID of 0 matches no admin.
func (r *Repository) GetAdminNotification(ctx context.Context, id, adminID int64) (*AdminNotification, error) {
	var row adminNotificationRow
	err := r.db.GetContext(ctx, &row, `
		SELECT`+adminColumns+`,
			EXISTS (
				SELECT 1 FROM admin_notification_reads r
				WHERE r.notification_id = n.id AND r.admin_id = $2
			) AS is_read,
			(SELECT COUNT(*) FROM admin_notification_reads rc WHERE rc.notification_id = n.id) AS read_by_count
		FROM admin_notifications n
		WHERE n.id = $1
	`, id, adminID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get admin notification", err)
	}

	n := row.hydrate()
	return &n, nil
}

// GetAdminNotificationsPaginated returns one page, newest first. Total counts
// every admin notification, not only the ones unread by adminID.
func (r *Repository) GetAdminNotificationsPaginated(ctx context.Context, adminID int64, limit, offset int) (*AdminNotificationPage, error) {
	var rows []adminNotificationRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT`+adminColumns+`,
			EXISTS (
				SELECT 1 FROM admin_notification_reads r
				WHERE r.notification_id = n.id AND r.admin_id = $1
			) AS is_read,
			(SELECT COUNT(*) FROM admin_notification_reads rc WHERE rc.notification_id = n.id) AS read_by_count
		FROM admin_notifications n
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $2 OFFSET $3
	`, adminID, limit, offset)
	if err != nil {
		return nil, storeErr("list admin notifications", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM admin_notifications`); err != nil {
		return nil, storeErr("count admin notifications", err)
	}

	page := &AdminNotificationPage{
		Notifications: make([]AdminNotification, 0, len(rows)),
		Total:         total,
	}
	for _, row := range rows {
		page.Notifications = append(page.Notifications, row.hydrate())
	}
	return page, nil
}

func (r *Repository) GetUnreadAdminNotificationCount(ctx context.Context, adminID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM admin_notifications n
		WHERE NOT EXISTS (
			SELECT 1 FROM admin_notification_reads r
			WHERE r.notification_id = n.id AND r.admin_id = $1
		)
	`, adminID)
	if err != nil {
		return 0, storeErr("count unread admin notifications", err)
	}
	return count, nil
}

// MarkAdminNotificationAsRead records the first read only; repeat calls are
// no-ops.
func (r *Repository) MarkAdminNotificationAsRead(ctx context.Context, notificationID, adminID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_notification_reads (notification_id, admin_id)
		VALUES ($1, $2)
		ON CONFLICT (notification_id, admin_id) DO NOTHING
	`, notificationID, adminID)
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	if err != nil {
		return storeErr("mark admin notification read", err)
	}

	metrics.NotificationReads.WithLabelValues("admin", "one").Inc()
	return nil
}

func (r *Repository) MarkAllAdminNotificationsAsRead(ctx context.Context, adminID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_notification_reads (notification_id, admin_id)
		SELECT n.id, $1
		FROM admin_notifications n
		WHERE NOT EXISTS (
			SELECT 1 FROM admin_notification_reads r
			WHERE r.notification_id = n.id AND r.admin_id = $1
		)
		ON CONFLICT (notification_id, admin_id) DO NOTHING
	`, adminID)
	if err != nil {
		return storeErr("mark all admin notifications read", err)
	}

	metrics.NotificationReads.WithLabelValues("admin", "all").Inc()
	return nil
}

func (r *Repository) CreateUserNotification(ctx context.Context, req UserNotificationRequest) (*Notification, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `
		INSERT INTO notifications (user_id, type, title, message, related_id, related_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, req.UserID, req.Type, req.Title, req.Message, req.RelatedID, req.RelatedType)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && id == 0) {
		return nil, ErrCreationFailed
	}
	if err != nil {
		return nil, storeErr("create user notification", err)
	}

	var n Notification
	err = r.db.GetContext(ctx, &n, `
		SELECT id, user_id, type, title, message, related_id, related_type, is_read, created_at, read_at
		FROM notifications
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCreationFailed
	}
	if err != nil {
		return nil, storeErr("get user notification", err)
	}

	metrics.NotificationsCreated.WithLabelValues("user").Inc()
	return &n, nil
}

func (r *Repository) GetUserNotifications(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	notifications := []Notification{}
	err := r.db.SelectContext(ctx, &notifications, `
		SELECT id, user_id, type, title, message, related_id, related_type, is_read, created_at, read_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, storeErr("list user notifications", err)
	}
	return notifications, nil
}

// MarkUserNotificationAsRead only touches a row owned by userID. read_at keeps
// the time of the first read.
func (r *Repository) MarkUserNotificationAsRead(ctx context.Context, notificationID, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return storeErr("mark user notification read", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("mark user notification read", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	metrics.NotificationReads.WithLabelValues("user", "one").Inc()
	return nil
}

func (r *Repository) MarkAllUserNotificationsAsRead(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return storeErr("mark all user notifications read", err)
	}

	metrics.NotificationReads.WithLabelValues("user", "all").Inc()
	return nil
}

func (r *Repository) GetUnreadUserNotificationCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return 0, storeErr("count unread user notifications", err)
	}
	return count, nil
}

// GetAllAdminIDs lists the current admin recipients for out-of-band delivery.
func (r *Repository) GetAllAdminIDs(ctx context.Context) ([]int64, error) {
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM users WHERE role = 'admin' ORDER BY id`); err != nil {
		return nil, storeErr("list admin ids", err)
	}
	return ids, nil
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
