//go:build mage

package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
)

// MigrateUp runs all pending migrations
func MigrateUp() error {
	loadEnv()
	return run("go", "run", "./cmd/migrate", "up")
}

// MigrateDown rolls back the last migration
func MigrateDown() error {
	loadEnv()
	return run("go", "run", "./cmd/migrate", "down")
}

// MigrateCreate creates new migration files
func MigrateCreate(name string) error {
	if name == "" {
		return fmt.Errorf("migration name is required")
	}
	return run("migrate", "create", "-ext", "sql", "-dir", "internal/migrations/sql", "-seq", name)
}

// Seed creates an admin and a client user
func Seed() error {
	loadEnv()
	return run("go", "run", "./cmd/seed")
}

// Test runs the unit tests
func Test() error {
	return run("go", "test", "./...")
}

// TestIntegration runs the Postgres-backed tests (needs Docker)
func TestIntegration() error {
	return run("go", "test", "-tags", "integration", "./...")
}

// Helper functions

func loadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	return cmd.Run()
}
