package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration shared by every service.
type Config struct {
	// Server
	Port       int    `env:"PORT" envDefault:"8000"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"8081"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	// LLM & Embeddings
	LLMProvider    string `env:"LLM_PROVIDER" envDefault:"azure"` // "azure" (Azure OpenAI) or "openai"
	OpenAIKey      string `env:"OPENAI_API_KEY"`
	LLMModel       string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-ada-002"`

	AzureEndpoint            string `env:"AZURE_OPENAI_ENDPOINT"`
	AzureAPIKey              string `env:"AZURE_OPENAI_API_KEY"`
	AzureAPIVersion          string `env:"AZURE_OPENAI_VERSION" envDefault:"2023-05-15"`
	AzureDeployment          string `env:"AZURE_DEPLOYMENT_NAME"`
	AzureEmbeddingDeployment string `env:"AZURE_EMBEDDING_DEPLOYMENT" envDefault:"text-embedding-ada-002"`
	AzureEmbeddingVersion    string `env:"AZURE_EMBEDDING_VERSION" envDefault:"2023-05-15"`

	// Retrieval
	DocsDir  string   `env:"DOCS_DIR" envDefault:"."`
	DocFiles []string `env:"DOC_FILES" envSeparator:"," envDefault:"unlimitedai.txt,unlimitedautomation.txt,unlimitedcs.txt"`
	TopK     int      `env:"RETRIEVAL_TOP_K" envDefault:"2"`

	// Document fetching
	FetchTimeout int `env:"FETCH_TIMEOUT" envDefault:"30"` // seconds

	// Sentiment fan-out
	SentimentConcurrency int `env:"SENTIMENT_CONCURRENCY" envDefault:"4"`

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"none"` // "postgres" or "none"
	DBURL         string `env:"DB_URL"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"none"` // "nats" or "none"
	QueueURL      string `env:"QUEUE_URL"`

	// Cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"none"` // "redis" or "none"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"3600"` // seconds
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
