package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"clientportal/internal/auth"
	"clientportal/internal/config"
	"clientportal/internal/db"
	"clientportal/internal/mailer"
	"clientportal/internal/notification"
	"clientportal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.SetupLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	mail, err := mailer.New(ctx, cfg.MailTransport, cfg.MailFrom)
	if err != nil {
		log.Fatalf("Failed to configure mailer: %v", err)
	}

	emails := worker.NewEmailHandler(notification.NewRepository(pool), auth.NewUserStore(pool), mail, cfg.PortalURL)
	if err := worker.NewWorker(cfg.RedisAddr, emails).Start(ctx); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
