package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer  string // Issuer claim for tokens (default: bartab-oidc)
	KeySeed string // Required: seed for the ES512 key pair, at least 16 characters

	ClientsFile     string        // Path to the YAML client registry (default: ./clients.yaml)
	TokenExpiration time.Duration // Lifetime of codes, access tokens and signed tokens (default: 1h)
	SweepInterval   time.Duration // Token store sweep interval (default: half of TokenExpiration)

	DatabaseFile        string        // Path to SQLite database file (default: ./auth.db)
	PepperFile          string        // Path to file containing pepper for password hashing (default: ./pepper)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Issuer:              getEnvOrDefault("AUTH_ISSUER", "bartab-oidc"),
		KeySeed:             os.Getenv("AUTH_KEY_SEED"),
		ClientsFile:         getEnvOrDefault("AUTH_CLIENTS_FILE", "clients.yaml"),
		TokenExpiration:     getEnvDurationOrDefault("AUTH_TOKEN_EXPIRATION", time.Hour),
		SweepInterval:       getEnvDurationOrDefault("AUTH_SWEEP_INTERVAL", 0),
		DatabaseFile:        getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:          getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("1h", "90s") or a bare
// number of seconds, the unit token lifetimes are expressed in.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultValue
}
