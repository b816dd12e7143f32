package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"clientportal/internal/auth"
	"clientportal/internal/config"
	"clientportal/internal/db"
	"clientportal/internal/documents"
	"clientportal/internal/handlers"
	"clientportal/internal/notification"
	"clientportal/internal/queue"
	"clientportal/internal/routes"
	"clientportal/internal/security"
	"clientportal/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.SetupLogger()

	sessions, err := auth.NewSessionValidator(cfg.SessionSecret, cfg.SessionCookie)
	if err != nil {
		log.Fatalf("Failed to configure sessions: %v", err)
	}

	pool, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	tasks := queue.New(cfg.RedisAddr)
	defer tasks.Close()

	repo := notification.NewRepository(pool)
	notifier := notification.NewNotificationService(repo, tasks)
	users := auth.NewUserStore(pool)
	docs := documents.NewService(documents.NewStore(pool), notifier, users, cfg.DocumentCacheTTL)

	srv := server.NewServer(routes.Dependencies{
		Sessions:      sessions,
		RateLimit:     security.IPRateLimit(cfg.RequestsPerMinute),
		Auth:          handlers.NewAuthHandler(users, sessions, cfg.SessionTTL),
		Notifications: handlers.NewNotificationHandler(repo, security.NewKeyedLimiter(10*time.Second, 3)),
		EmailStatus:   handlers.NewEmailStatusHandler(tasks),
		Documents:     handlers.NewDocumentHandler(docs),
		DB:            pool,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepCaches(ctx, docs, cfg.DocumentCacheTTL)

	go func() {
		if err := srv.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}

func sweepCaches(ctx context.Context, docs *documents.Service, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := docs.SweepCaches(); n > 0 {
				slog.Debug("swept document caches", "removed", n)
			}
		}
	}
}
