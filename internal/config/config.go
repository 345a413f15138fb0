package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	LogLevel string
	Database DatabaseConfig
	JWT      JWTConfig
	Search   SearchConfig
	LLM      LLMConfig
	Kafka    KafkaConfig
	Lockout  LockoutConfig
	Cookie   CookieConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// AccessTTL returns the access token lifetime
func (j JWTConfig) AccessTTL() time.Duration {
	return time.Duration(j.AccessTokenMins) * time.Minute
}

// RefreshTTL returns the refresh token lifetime
func (j JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(j.RefreshTokenDays) * 24 * time.Hour
}

// SearchConfig holds the Elasticsearch configuration
type SearchConfig struct {
	URL      string
	Username string
	Password string
	Index    string
	TopK     int
	Timeout  time.Duration
}

// LLMConfig holds the local Ollama configuration. Both models run on the
// local host; no external network dependency.
type LLMConfig struct {
	BaseURL        string
	GenerateModel  string
	EmbeddingModel string
	Timeout        time.Duration
}

// KafkaConfig holds the audit event configuration. Empty Address disables
// publishing.
type KafkaConfig struct {
	Address string
	Topic   string
}

// LockoutConfig holds the login lockout policy
type LockoutConfig struct {
	MaxFailedAttempts int
	Window            time.Duration
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// Load reads configuration from .env file and environment variables.
// Defaults are for local development only and are unsafe for production.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "8000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: loadDatabaseConfig(),
		JWT:      loadJWTConfig(),
		Search:   loadSearchConfig(),
		LLM:      loadLLMConfig(),
		Kafka:    loadKafkaConfig(),
		Lockout:  loadLockoutConfig(),
		Cookie:   loadCookieConfig(appMode),
	}

	if config.IsProd() && config.JWT.Secret == devJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in prod mode")
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

const devJWTSecret = "dev-secret-change-me"

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "orgchat"),
		Password: getEnv("DB_PASS", "orgchat"),
		DBName:   getEnv("DB_NAME", "orgchat"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func loadJWTConfig() JWTConfig {
	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "30"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv("JWT_SECRET", devJWTSecret),
		RefreshSecret:    getEnv("JWT_REFRESH_SECRET", devJWTSecret+"-refresh"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

func loadSearchConfig() SearchConfig {
	topK, _ := strconv.Atoi(getEnv("SEARCH_TOP_K", "5"))
	timeoutSec, _ := strconv.Atoi(getEnv("SEARCH_TIMEOUT_SECONDS", "10"))

	return SearchConfig{
		URL:      getEnv("ES_URL", "http://localhost:9200"),
		Username: getEnv("ES_USER", ""),
		Password: getEnv("ES_PASSWORD", ""),
		Index:    getEnv("ES_INDEX", "org_employees"),
		TopK:     topK,
		Timeout:  time.Duration(timeoutSec) * time.Second,
	}
}

func loadLLMConfig() LLMConfig {
	timeoutSec, _ := strconv.Atoi(getEnv("LLM_TIMEOUT_SECONDS", "60"))

	return LLMConfig{
		BaseURL:        getEnv("OLLAMA_URL", "http://127.0.0.1:11434"),
		GenerateModel:  getEnv("OLLAMA_MODEL", "llama3.1"),
		EmbeddingModel: getEnv("OLLAMA_EMBED_MODEL", "mxbai-embed-large"),
		Timeout:        time.Duration(timeoutSec) * time.Second,
	}
}

func loadKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Address: getEnv("KAFKA_ADDRESS", ""),
		Topic:   getEnv("KAFKA_AUDIT_TOPIC", "auth_events"),
	}
}

func loadLockoutConfig() LockoutConfig {
	maxAttempts, _ := strconv.Atoi(getEnv("LOCKOUT_MAX_ATTEMPTS", "5"))
	windowMins, _ := strconv.Atoi(getEnv("LOCKOUT_WINDOW_MINUTES", "15"))

	return LockoutConfig{
		MaxFailedAttempts: maxAttempts,
		Window:            time.Duration(windowMins) * time.Minute,
	}
}

func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv("COOKIE_SECURE", "false"))
	if mode == "prod" {
		secure = true
	}

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "http://localhost:3000,http://127.0.0.1:3000"
		}
		return ""
	}
	return origins
}
