package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	// Message channel between the foreground server and the background worker.
	NatsURL string

	// Task source (read-only snapshot per evaluation cycle).
	TaskDBPath string

	// Scheduler
	SchedulerTickSeconds int // Seconds between due-task evaluations (default: 30)

	// Notification settings overlay, read fresh on every cycle.
	// Missing or corrupt files fall back to documented defaults.
	NotifySettingsPath string

	// Diagnostics
	ErrorHistorySize   int // Ring buffer bound for recorded delivery failures
	PingTimeoutSeconds int // Worker liveness probe timeout

	// Server
	ServerShutdownTimeoutSeconds int

	// Logging
	LogLevel  string
	LogFormat string
}

var AppConfig *Config

func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),

		NatsURL: getEnvOrDefault("NATS_URL", ""),

		TaskDBPath: getEnvOrDefault("TASK_DB_PATH", "taskbell.db"),

		SchedulerTickSeconds: getEnvAsInt("SCHEDULER_TICK_SECONDS", 30),

		NotifySettingsPath: getEnvOrDefault("NOTIFY_SETTINGS_PATH", "notify.yaml"),

		ErrorHistorySize:   getEnvAsInt("ERROR_HISTORY_SIZE", 50),
		PingTimeoutSeconds: getEnvAsInt("PING_TIMEOUT_SECONDS", 5),

		ServerShutdownTimeoutSeconds: getEnvAsInt("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 30),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "debug"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
