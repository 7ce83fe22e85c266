package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full runtime configuration, loaded from the environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Chroma   ChromaConfig
	LLM      LLMConfig
	Debate   DebateConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	Mode         string // "debug" or "release"
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Path        string
	BusyTimeout int
}

type ChromaConfig struct {
	Host       string
	Port       int
	UseTLS     bool
	AuthToken  string
	Timeout    time.Duration
	Collection string
	TopK       int
}

type LLMConfig struct {
	GeminiAPIKey string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
}

type DebateConfig struct {
	MaxConcurrent  int
	Timeout        time.Duration
	Rounds         int
	RolesPath      string
	MetricsEnabled bool
}

// Load reads configuration from environment variables with safe defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("PORT", "8000"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getDurationEnv("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("WRITE_TIMEOUT", 330*time.Second),
		},
		Database: DatabaseConfig{
			Path:        getEnv("DB_PATH", "cogito.db"),
			BusyTimeout: getIntEnv("DB_BUSY_TIMEOUT_MS", 5000),
		},
		Chroma: ChromaConfig{
			Host:       getEnv("CHROMA_HOST", "localhost"),
			Port:       getIntEnv("CHROMA_PORT", 8001),
			UseTLS:     getBoolEnv("CHROMA_TLS", false),
			AuthToken:  getEnv("CHROMA_AUTH_TOKEN", ""),
			Timeout:    getDurationEnv("CHROMA_TIMEOUT", 10*time.Second),
			Collection: getEnv("CHROMA_COLLECTION", "cogito_knowledge_base"),
			TopK:       getIntEnv("RETRIEVAL_TOP_K", 3),
		},
		LLM: LLMConfig{
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			Model:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout:      getDurationEnv("LLM_TIMEOUT", 60*time.Second),
			MaxRetries:   getIntEnv("LLM_MAX_RETRIES", 3),
		},
		Debate: DebateConfig{
			MaxConcurrent:  getIntEnv("DEBATE_MAX_CONCURRENT", 2),
			Timeout:        getDurationEnv("DEBATE_TIMEOUT", 300*time.Second),
			Rounds:         getIntEnv("DEBATE_ROUNDS", 2),
			RolesPath:      getEnv("DEBATE_ROLES_PATH", ""),
			MetricsEnabled: getBoolEnv("METRICS_ENABLED", true),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
