package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/ollama/seqprep/envconfig"
)

// LoadDotEnv loads environment variables from a .env file located in the
// seqprep home directory and reloads the configuration. Variables already
// set in the environment win. A missing file is not an error.
func LoadDotEnv() error {
	envPath := filepath.Join(envconfig.Home, ".env")

	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to check if .env file exists: %w", err)
	}

	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("could not load %s: %w", envPath, err)
	}

	envconfig.LoadConfig()
	return nil
}
