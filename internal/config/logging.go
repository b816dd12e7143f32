package config

import (
	"log/slog"
	"os"
)

// SetupLogger installs a JSON slog handler at the configured level as the
// process default.
func (c *Config) SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: c.SlogLevel(),
	}))
	slog.SetDefault(logger)
	return logger
}
