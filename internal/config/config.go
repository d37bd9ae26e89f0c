package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	RedisURL    string // empty disables the session store
	JWKSURL     string
	CORSOrigins string
	TablePrefix string
	// Outline limits
	MaxTreeDepth int
	MaxTreeNodes int
	// Sessions kept per user before the oldest are evicted (0 keeps all)
	SessionKeep int
	// Logging
	LogDir      string
	LogMaxFiles int
	// Apply embedded migrations on startup
	AutoMigrate bool
	Debug       bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  env,
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
		JWKSURL:      getEnv("AUTH_JWKS_URL", ""),
		CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:  getTablePrefix(env),
		MaxTreeDepth: getEnvInt("MAX_TREE_DEPTH", DefaultMaxTreeDepth),
		MaxTreeNodes: getEnvInt("MAX_TREE_NODES", DefaultMaxTreeNodes),
		SessionKeep:  getEnvInt("SESSION_KEEP", DefaultSessionKeep),
		LogDir:       getEnv("LOG_DIR", ""),
		LogMaxFiles:  getEnvInt("LOG_MAX_FILES", 10),
		AutoMigrate:  getEnv("AUTO_MIGRATE", getDefaultDebug(env)) == "true",
		Debug:        getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns "true" outside production
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
