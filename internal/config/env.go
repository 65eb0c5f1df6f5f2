package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Init loads a local .env file when one exists and configures logging.
// Deployed environments (Lambda) provide variables directly.
func Init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		Logger.WithError(err).Warn("Failed to parse .env file, using process environment")
	}
	InitLogger(GetEnv("LOG_LEVEL", "info"))
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || value == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}
