package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL reference data
	PostgresURI string

	// Disruption mailbox
	MailClientID     string
	MailClientSecret string
	MailRefreshToken string
	MailPollInterval time.Duration

	// Collaborator services
	AgentServiceURL        string
	NotificationServiceURL string
	RouteSearchServiceURL  string
	CollaboratorToken      string

	// Monitoring
	MonitorInterval time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "pmrassist"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		MailClientID:     getEnv("MAIL_CLIENT_ID", ""),
		MailClientSecret: getEnv("MAIL_CLIENT_SECRET", ""),
		MailRefreshToken: getEnv("MAIL_REFRESH_TOKEN", ""),
		MailPollInterval: time.Duration(getEnvAsInt("MAIL_POLL_INTERVAL", 60)) * time.Second,

		AgentServiceURL:        getEnv("AGENT_SERVICE_URL", ""),
		NotificationServiceURL: getEnv("NOTIFICATION_SERVICE_URL", ""),
		RouteSearchServiceURL:  getEnv("ROUTE_SEARCH_SERVICE_URL", ""),
		CollaboratorToken:      getEnv("COLLABORATOR_TOKEN", ""),

		MonitorInterval: time.Duration(getEnvAsInt("MONITOR_INTERVAL", 60)) * time.Second,
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
