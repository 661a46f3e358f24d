package config

import (
	"fmt"
	"os"
)

// Environment selects which PilotDeck deployment the CLI talks to
type Environment string

const (
	EnvProd  Environment = "prod"
	EnvDev   Environment = "dev"
	EnvLocal Environment = "local"
)

// EnvConfig holds environment-specific URLs
type EnvConfig struct {
	// APIBaseURL is the REST root, including the /api prefix
	APIBaseURL string
	// ReleasesURL is queried by the update check
	ReleasesURL string
}

// GetEnvironment returns the current environment from PILOTDECK_ENV
func GetEnvironment() Environment {
	env := os.Getenv("PILOTDECK_ENV")
	if env == "" {
		return EnvProd
	}

	switch Environment(env) {
	case EnvProd, EnvDev, EnvLocal:
		return Environment(env)
	default:
		return EnvProd
	}
}

// GetEnvConfig returns the configuration for the specified environment
func GetEnvConfig(env Environment) (*EnvConfig, error) {
	releases := getEnvOrDefault("PILOTDECK_RELEASES_URL", "https://api.github.com/repos/pilotdeck/pilotdeck/releases/latest")

	switch env {
	case EnvProd:
		return &EnvConfig{
			APIBaseURL:  getEnvOrDefault("PILOTDECK_SERVER_URL", "http://localhost:8689/api"),
			ReleasesURL: releases,
		}, nil
	case EnvDev:
		// Vite dev server proxies /api to the backend
		return &EnvConfig{
			APIBaseURL:  getEnvOrDefault("PILOTDECK_SERVER_URL", "http://localhost:5173/api"),
			ReleasesURL: releases,
		}, nil
	case EnvLocal:
		return &EnvConfig{
			APIBaseURL:  getEnvOrDefault("PILOTDECK_SERVER_URL", "http://127.0.0.1:8689/api"),
			ReleasesURL: releases,
		}, nil
	default:
		return nil, fmt.Errorf("invalid environment: %s", env)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
