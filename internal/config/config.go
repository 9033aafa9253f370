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
	Keys     APIKeys
	Ai       AIConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string // empty disables the API guard
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI       string
	HuggingFace  string
	EmbedTopic   string // watermill topic for note indexing jobs
	EventsStream string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "none"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", "openai", "huggingface"
	LLMModel          string
	LLMBaseURL        string
	LLMTimeout        time.Duration
}

type PipelineConfig struct {
	ChunkSize         int
	ChunkOverlap      int
	IndexChunkSize    int
	IndexChunkOverlap int
	MaxKeywords       int
	Diversity         float64
	MaxTags           int
	SearchResults     int
	SearchDelay       time.Duration
	SearchCacheTTL    time.Duration
	RewriteThreshold  int
	RewriteMaxLoops   int
	LearnMaxRetries   int
	SequentialFanOut  bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			EmbedTopic:   getEnv("EMBED_NOTE_CONTENT_TOPIC_NAME", "EMBED_NOTE_CONTENT"),
			EventsStream: getEnv("NATS_EVENTS_STREAM", "EVENTS"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMTimeout:        getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
		},
		Pipeline: PipelineConfig{
			ChunkSize:         getEnvAsInt("PIPELINE_CHUNK_SIZE", 800000),
			ChunkOverlap:      getEnvAsInt("PIPELINE_CHUNK_OVERLAP", 8000),
			IndexChunkSize:    getEnvAsInt("INDEX_CHUNK_SIZE", 500),
			IndexChunkOverlap: getEnvAsInt("INDEX_CHUNK_OVERLAP", 100),
			MaxKeywords:       getEnvAsInt("PIPELINE_MAX_KEYWORDS", 10),
			Diversity:         getEnvAsFloat("PIPELINE_KEYWORD_DIVERSITY", 0.2),
			MaxTags:           getEnvAsInt("PIPELINE_MAX_TAGS", 10),
			SearchResults:     getEnvAsInt("PIPELINE_SEARCH_RESULTS", 2),
			SearchDelay:       getEnvAsDuration("PIPELINE_SEARCH_DELAY", time.Second),
			SearchCacheTTL:    getEnvAsDuration("PIPELINE_SEARCH_CACHE_TTL", time.Hour),
			RewriteThreshold:  getEnvAsInt("REWRITE_THRESHOLD", 28),
			RewriteMaxLoops:   getEnvAsInt("REWRITE_MAX_LOOPS", 4),
			LearnMaxRetries:   getEnvAsInt("STYLE_LEARN_MAX_RETRIES", 3),
			SequentialFanOut:  getEnvAsBool("PIPELINE_SEQUENTIAL_FANOUT", false),
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
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("1s", "2m").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
