package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// EnvFiles are loaded, in order, before the configuration is expanded.
var EnvFiles = []string{".env", ".env.local"}

// loadEnvFiles loads every present env file without overriding variables
// that are already set.
func loadEnvFiles() {
	for _, path := range EnvFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", "path", path, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", path)
	}
}
