package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Identity (optional; empty secret means claims are trusted unverified,
	// demo mode matching the original hosted identity provider)
	JWTSecret string

	// External collaborators
	WebhookURL string
	BackendURL string

	// Frontend
	FrontendURL string

	// Workers
	WorkerCount int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		Env:         getEnvOrDefault("ENV", "development"),
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		RedisURL:    mustGetEnv("REDIS_URL"),
		JWTSecret:   getEnvOrDefault("JWT_SECRET", ""),
		WebhookURL:  getEnvOrDefault("SUMMARIZER_WEBHOOK_URL", "http://localhost:5678/webhook-test/ytube"),
		BackendURL:  getEnvOrDefault("BACKEND_URL", "http://localhost:8080"),
		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
		WorkerCount: getEnvAsIntOrDefault("WORKER_COUNT", 3),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
