// Package config also layers broker credentials from the process environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables recognized by ApplyEnv. A .env file in the working
// directory is loaded first, best-effort, so local setups never need to
// commit secrets into YAML.
const (
	EnvAPIKey    = "OBOT_API_KEY"
	EnvAPISecret = "OBOT_API_SECRET"
)

// ApplyEnv overlays broker credentials from the environment onto cfg.
// YAML values survive when the corresponding variable is unset.
func ApplyEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	_ = godotenv.Load() // best-effort

	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Broker.APIKey = v
	}
	if v := os.Getenv(EnvAPISecret); v != "" {
		cfg.Broker.APISecret = v
	}
}
