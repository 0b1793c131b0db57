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
	SMTP     SMTPConfig
	Chat     ChatConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionStore       string // "memory" or "redis"
	AdminJWTSecret     string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	// LeadRecipient receives new-lead notifications.
	LeadRecipient string
}

type ChatConfig struct {
	// BotName and CompanyName feed the system prompt and greetings.
	BotName     string
	CompanyName string

	FuzzyThreshold      int
	SemanticMaxDistance float64
	SemanticRetryMax    float64
	CacheCapacity       int
	CacheTTL            time.Duration
	SessionTTL          time.Duration
	HistoryWindow       int
	WarmupWorkers       int
	WarmupInterval      time.Duration
	WarmupOnStart       bool

	IntentsPath   string
	KnowledgePath string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "openai"
	EmbeddingBaseURL  string
	EmbeddingModel    string
	EmbeddingAPIKey   string

	LLMProvider string // "ollama" or "openai"
	LLMBaseURL  string
	LLMAPIKey   string
	LLMModel    string
	// FastModel answers short simple questions with lower latency.
	FastModel string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionStore:       getEnv("SESSION_STORE", "memory"),
			AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:          getEnv("SMTP_HOST", ""),
			Port:          getEnvAsInt("SMTP_PORT", 587),
			Email:         getEnv("SMTP_EMAIL", ""),
			Password:      getEnv("SMTP_PASSWORD", ""),
			SenderName:    getEnv("SMTP_SENDER_NAME", "BizChat"),
			LeadRecipient: getEnv("LEAD_NOTIFICATION_EMAIL", ""),
		},
		Chat: ChatConfig{
			BotName:             getEnv("BOT_NAME", "עטרה"),
			CompanyName:         getEnv("COMPANY_NAME", "Atarize"),
			FuzzyThreshold:      getEnvAsInt("INTENT_FUZZY_THRESHOLD", 70),
			SemanticMaxDistance: getEnvAsFloat("INTENT_SEMANTIC_MAX_DISTANCE", 1.2),
			SemanticRetryMax:    getEnvAsFloat("INTENT_SEMANTIC_RETRY_MAX", 1.4),
			CacheCapacity:       getEnvAsInt("RESPONSE_CACHE_CAPACITY", 500),
			CacheTTL:            getEnvAsDuration("RESPONSE_CACHE_TTL", time.Hour),
			SessionTTL:          getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			HistoryWindow:       getEnvAsInt("HISTORY_WINDOW", 10),
			WarmupWorkers:       getEnvAsInt("WARMUP_WORKERS", 3),
			WarmupInterval:      getEnvAsDuration("WARMUP_INTERVAL", 6*time.Hour),
			WarmupOnStart:       getEnvAsBool("WARMUP_ON_START", false),
			IntentsPath:         getEnv("INTENTS_FILE", "data/intents.json"),
			KnowledgePath:       getEnv("KNOWLEDGE_FILE", "data/knowledge.json"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", "http://localhost:11434"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingAPIKey:   getEnv("EMBEDDING_API_KEY", ""),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMAPIKey:         getEnv("LLM_API_KEY", ""),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			FastModel:         getEnv("LLM_FAST_MODEL", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
