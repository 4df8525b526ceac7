package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Keys     APIKeys
	Ai       AIConfig
	Session  SessionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	EventLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	EventTopic         string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	SecretKey string
	TokenTTL  time.Duration
}

type APIKeys struct {
	Cohere       string
	HuggingFace  string
	GoogleGemini string
}

type AIConfig struct {
	Provider      string // "cohere", "ollama", "huggingface" or "gemini"
	Model         string // fixed model identifier; empty uses the provider default
	MaxTokens     int    // fixed token cap sent with every completion
	BaseURL       string // empty means the provider default
	FailurePolicy string // "generic" or "detailed"
	Timeout       time.Duration
}

type SessionConfig struct {
	Backend  string // "memory" or "redis"
	MaxTurns int    // 0 keeps every turn
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			EventLogFilePath:   getEnv("EVENT_LOG_FILE_PATH", "logs/chat_events.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			EventTopic:         getEnv("CHAT_EVENT_TOPIC", "CHAT_EVENTS"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			SecretKey: getEnv("SECRET_KEY", ""),
			TokenTTL:  getEnvAsDuration("TOKEN_TTL", time.Hour),
		},
		Keys: APIKeys{
			Cohere:       getEnv("COHERE_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			Provider:      getEnv("AI_PROVIDER", "cohere"),
			Model:         getEnv("AI_MODEL", ""),
			MaxTokens:     getEnvAsInt("AI_MAX_TOKENS", 100),
			BaseURL:       getEnv("AI_BASE_URL", ""),
			FailurePolicy: getEnv("AI_FAILURE_POLICY", "generic"),
			Timeout:       getEnvAsDuration("AI_TIMEOUT", 0),
		},
		Session: SessionConfig{
			Backend:  getEnv("SESSION_BACKEND", "memory"),
			MaxTurns: getEnvAsInt("SESSION_MAX_TURNS", 0),
		},
	}
}

// IsProduction reports whether logs should be emitted as JSON only.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
