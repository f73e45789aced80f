package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"

	"kudos/internal/platform/config"
)

type Globals struct {
	Debug   bool
	Version string
	EnvFile string
}

// loadConfig applies the dotenv file, if present, and reads the environment.
// Variables already set in the process win over the file.
func (g *Globals) loadConfig() (config.Config, error) {
	if g.EnvFile != "" {
		if err := godotenv.Load(g.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, fmt.Errorf("load %s: %w", g.EnvFile, err)
		}
	}
	cfg := config.FromEnv()
	if g.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
