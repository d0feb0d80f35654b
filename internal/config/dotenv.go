package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotenv reads .env (or ENV_FILE) into the process environment without
// overriding variables that are already set. NO_DOTENV=1 disables it.
func LoadDotenv() {
	if os.Getenv("NO_DOTENV") == "1" {
		return
	}
	path := ".env"
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		path = envFile
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}
