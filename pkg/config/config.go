package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	GigaChat  GigaChatConfig
	Embedding EmbeddingConfig
	RAG       RAGConfig
	Answer    AnswerConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
	RequestsPerSecond  float64
	Burst              int
}

type EmbeddingConfig struct {
	URL        string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

type RAGConfig struct {
	TopK             int
	MaxContextTokens int
	BatchConcurrency int
}

type AnswerConfig struct {
	GroupSize            int
	ClassifyAttempts     int
	RetryBackoff         time.Duration
	PhysicalControlGroup string
	RemoteJustification  string
}

// DefaultRemoteJustification is recorded for physical controls of fully remote organizations.
const DefaultRemoteJustification = "We operate as a fully remote organization without physical offices or facilities under our control, so physical security controls are not applicable to us."

func Load() (*Config, error) {
	// .env is optional; plain environment variables work for containers
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 0)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "comply_rag"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "false") == "true",
			RequestsPerSecond:  getEnvFloat("GIGACHAT_REQUESTS_PER_SECOND", 5),
			Burst:              getEnvInt("GIGACHAT_BURST", 10),
		},
		Embedding: EmbeddingConfig{
			URL:        getEnv("EMBEDDING_URL", "http://localhost:11434/api/embeddings"),
			Model:      getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			Dimensions: getEnvInt("EMBEDDING_DIMENSIONS", 768),
			Timeout:    time.Duration(getEnvInt("EMBEDDING_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		RAG: RAGConfig{
			TopK:             getEnvInt("RAG_TOP_K", 5),
			MaxContextTokens: getEnvInt("RAG_MAX_CONTEXT_TOKENS", 6000),
			BatchConcurrency: getEnvInt("RAG_BATCH_CONCURRENCY", 10),
		},
		Answer: AnswerConfig{
			GroupSize:            getEnvInt("ANSWER_GROUP_SIZE", 10),
			ClassifyAttempts:     getEnvInt("ANSWER_CLASSIFY_ATTEMPTS", 2),
			RetryBackoff:         time.Duration(getEnvInt("ANSWER_RETRY_BACKOFF_MS", 500)) * time.Millisecond,
			PhysicalControlGroup: getEnv("ANSWER_PHYSICAL_CONTROL_GROUP", "7"),
			RemoteJustification:  getEnv("ANSWER_REMOTE_JUSTIFICATION", DefaultRemoteJustification),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}
