package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

const (
	QueueNotificationEmail = "notification_email"

	TaskAdminEmail = "notification:admin_email"
)

type AdminEmailPayload struct {
	NotificationID int64 `json:"notification_id"`
}

// Queue schedules background work on Redis through asynq.
type Queue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

func New(redisAddr string) *Queue {
	redisOpt := asynq.RedisClientOpt{
		Addr: redisAddr,
	}

	slog.Info("Task queue configured", "redis_addr", redisAddr)
	return &Queue{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
	}
}

func NewAdminEmailTask(notificationID int64) (*asynq.Task, error) {
	if notificationID <= 0 {
		return nil, fmt.Errorf("invalid notification id %d", notificationID)
	}
	payload, err := json.Marshal(AdminEmailPayload{NotificationID: notificationID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TaskAdminEmail, payload), nil
}

func ParseAdminEmailPayload(t *asynq.Task) (AdminEmailPayload, error) {
	var p AdminEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if p.NotificationID <= 0 {
		return p, fmt.Errorf("invalid notification id %d", p.NotificationID)
	}
	return p, nil
}

// EnqueueAdminEmail schedules the admin email for a notification. The task id
// is derived from the notification id, so a second enqueue is a no-op.
func (q *Queue) EnqueueAdminEmail(ctx context.Context, notificationID int64) error {
	task, err := NewAdminEmailTask(notificationID)
	if err != nil {
		return err
	}

	info, err := q.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueNotificationEmail),
		asynq.TaskID(AdminEmailTaskID(notificationID)),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
		asynq.Retention(24*time.Hour),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue admin email: %w", err)
	}

	slog.Debug("Admin email enqueued", "task_id", info.ID, "notification_id", notificationID)
	return nil
}

func AdminEmailTaskID(notificationID int64) string {
	return fmt.Sprintf("admin-email-%d", notificationID)
}

// ErrTaskNotFound means no admin email task is retained for the notification.
var ErrTaskNotFound = errors.New("task not found")

// EmailStatus is the delivery state of one notification's admin email.
type EmailStatus struct {
	TaskID      string     `json:"taskId"`
	State       string     `json:"state"`
	Retried     int        `json:"retried"`
	MaxRetry    int        `json:"maxRetry"`
	LastError   string     `json:"lastError,omitempty"`
	NextRetryAt *time.Time `json:"nextRetryAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// EmailStatus reports the state of the admin email scheduled for a notification.
func (q *Queue) EmailStatus(notificationID int64) (*EmailStatus, error) {
	info, err := q.inspector.GetTaskInfo(QueueNotificationEmail, AdminEmailTaskID(notificationID))
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task info: %w", err)
	}
	return emailStatusFrom(info), nil
}

func emailStatusFrom(info *asynq.TaskInfo) *EmailStatus {
	s := &EmailStatus{
		TaskID:    info.ID,
		State:     info.State.String(),
		Retried:   info.Retried,
		MaxRetry:  info.MaxRetry,
		LastError: info.LastErr,
	}
	if !info.NextProcessAt.IsZero() {
		next := info.NextProcessAt
		s.NextRetryAt = &next
	}
	if !info.CompletedAt.IsZero() {
		done := info.CompletedAt
		s.CompletedAt = &done
	}
	return s
}

func (q *Queue) Close() error {
	if err := q.inspector.Close(); err != nil {
		slog.Warn("failed to close queue inspector", "error", err)
	}
	return q.client.Close()
}
