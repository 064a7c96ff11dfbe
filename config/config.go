package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port string

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBLogLevel string // silent, error, warn, info

	JWTKey string

	UploadDir string

	SyncWebhookURL        string
	SyncWebhookTimeoutSec int

	AnalyticsCron      string
	ProgressMaxRetries int
	EnableScheduler    bool
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port: getEnv("PORT", "3000"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "quizcore"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBLogLevel: getEnv("DB_LOG_LEVEL", "warn"),

		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),

		SyncWebhookURL:        getEnv("SYNC_WEBHOOK_URL", ""),
		SyncWebhookTimeoutSec: getEnvInt("SYNC_WEBHOOK_TIMEOUT_SEC", 5),

		AnalyticsCron:      getEnv("ANALYTICS_CRON", "*/15 * * * *"),
		ProgressMaxRetries: getEnvInt("PROGRESS_MAX_RETRIES", 5),
		EnableScheduler:    getEnvBool("ENABLE_SCHEDULER", true),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SyncWebhookURL == "" {
		log.Println("SYNC_WEBHOOK_URL not set. Attempt sync notifications are disabled.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}
