package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	// WhatsApp Cloud API
	WhatsAppVerifyToken string
	WhatsAppAppSecret   string
	WhatsAppAPIBaseURL  string

	// Intent classifier (optional; keyword fallback when empty)
	AWSRegion      string
	BedrockModelID string

	// Workers
	UseMemoryQueue      bool
	ReminderWorkers     int
	TaskPollInterval    time.Duration
	TrialSweepHour      int
	ConversationLockTTL time.Duration
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		WhatsAppVerifyToken: getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppAppSecret:   getEnv("WHATSAPP_APP_SECRET", ""),
		WhatsAppAPIBaseURL:  getEnv("WHATSAPP_API_BASE_URL", "https://graph.facebook.com/v21.0"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),

		UseMemoryQueue:      getEnvAsBool("USE_MEMORY_QUEUE", false),
		ReminderWorkers:     getEnvAsInt("REMINDER_WORKERS", 10),
		TaskPollInterval:    getEnvAsDuration("TASK_POLL_INTERVAL", 5*time.Second),
		TrialSweepHour:      getEnvAsInt("TRIAL_SWEEP_HOUR", 9),
		ConversationLockTTL: getEnvAsDuration("CONVERSATION_LOCK_TTL", 30*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
