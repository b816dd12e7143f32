package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"clientportal/internal/auth"
	"clientportal/internal/config"
	"clientportal/internal/db"
	"clientportal/utils"
)

func main() {
	adminEmail := flag.String("admin", "admin@example.com", "admin email")
	clientEmail := flag.String("client", "client@example.com", "client email")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the printed session tokens")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.SetupLogger()

	pool, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	var sessions *auth.SessionValidator
	if cfg.SessionSecret != "" {
		sessions, err = auth.NewSessionValidator(cfg.SessionSecret, cfg.SessionCookie)
		if err != nil {
			log.Fatalf("Failed to configure sessions: %v", err)
		}
	}

	ctx := context.Background()
	users := auth.NewUserStore(pool)
	for _, seed := range []struct {
		email string
		name  string
		role  auth.Role
	}{
		{*adminEmail, "Portal Admin", auth.RoleAdmin},
		{*clientEmail, "Portal Client", auth.RoleClient},
	} {
		password, err := utils.GeneratePassword(16)
		if err != nil {
			log.Fatalf("Failed to generate password: %v", err)
		}

		user, err := users.CreateUser(ctx, seed.email, password, seed.name, seed.role)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", seed.email, err)
		}
		fmt.Printf("%-6s id=%d email=%s password=%s\n", user.Role, user.ID, user.Email, password)

		if sessions != nil {
			token, err := sessions.IssueToken(user.ID, user.Role, *tokenTTL)
			if err != nil {
				log.Fatalf("Failed to issue token: %v", err)
			}
			fmt.Printf("       %s=%s\n", sessions.CookieName(), token)
		}
	}
}
