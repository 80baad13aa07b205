package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Assistant     AssistantConfig
	Reports       ReportsConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// AssistantConfig configures the LLM endpoint. Against the local dev proxy
// no API key is needed, the proxy injects its own.
type AssistantConfig struct {
	APIURL            string
	APIKey            string
	Model             string
	MaxTokens         int
	DevProxy          bool
	RequestsPerMinute int
}

type ReportsConfig struct {
	StoragePath string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Load reads configuration from the environment, with a .env file as
// fallback when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "expense-assistant-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Assistant: AssistantConfig{
			APIURL:            getEnv("ASSISTANT_API_URL", ""),
			APIKey:            getEnv("ASSISTANT_API_KEY", ""),
			Model:             getEnv("ASSISTANT_MODEL", "gpt-4o-mini"),
			MaxTokens:         getEnvAsInt("ASSISTANT_MAX_TOKENS", 1024),
			DevProxy:          getEnvAsBool("ASSISTANT_DEV_PROXY", false),
			RequestsPerMinute: getEnvAsInt("ASSISTANT_REQUESTS_PER_MINUTE", 20),
		},
		Reports: ReportsConfig{
			StoragePath: getEnv("REPORTS_STORAGE_PATH", "./reports"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	if cfg.Assistant.APIURL == "" {
		return nil, errors.New("ASSISTANT_API_URL is required")
	}
	if cfg.Assistant.APIKey == "" && !cfg.Assistant.DevProxy {
		return nil, errors.New("ASSISTANT_API_KEY is required unless ASSISTANT_DEV_PROXY is set")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
