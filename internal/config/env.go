package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

var errNoEnvFile = errors.New("no .env file found")

// envFiles are tried in order; the first one present is loaded.
var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads the first present env file. Existing process environment
// variables are not overwritten.
func loadEnvFile() error {
	for _, envPath := range envFiles {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		return godotenv.Load(envPath)
	}
	return errNoEnvFile
}
