package worker

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"clientportal/internal/queue"
)

const concurrency = 10

type Worker struct {
	server *asynq.Server
	emails *EmailHandler
}

func NewWorker(redisAddr string, emails *EmailHandler) *Worker {
	redisOpt := asynq.RedisClientOpt{
		Addr: redisAddr,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				queue.QueueNotificationEmail: 1,
			},
		},
	)

	return &Worker{
		server: server,
		emails: emails,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	mux := asynq.NewServeMux()
	mux.Handle(queue.TaskAdminEmail, w.emails)

	slog.Info("Starting worker",
		"queues", []string{queue.QueueNotificationEmail},
		"concurrency", concurrency)

	if err := w.server.Start(mux); err != nil {
		return err
	}

	slog.Info("Worker started successfully")

	<-ctx.Done()

	w.server.Shutdown()
	slog.Info("Worker stopped")
	return nil
}
