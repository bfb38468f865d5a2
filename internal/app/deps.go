package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"

	"buddy-backends/internal/assistant"
	"buddy-backends/internal/cache"
	"buddy-backends/internal/config"
	"buddy-backends/internal/docqa"
	"buddy-backends/internal/embeddings"
	"buddy-backends/internal/extract"
	"buddy-backends/internal/llm"
	"buddy-backends/internal/logger"
	"buddy-backends/internal/matching"
	"buddy-backends/internal/queue"
	"buddy-backends/internal/retrieval"
	"buddy-backends/internal/sentiment"
	"buddy-backends/internal/store"
)

// AvatarDeps bundles what the grounded assistant service needs.
type AvatarDeps struct {
	Config    config.Config
	Log       *slog.Logger
	Assistant *assistant.Service
}

// SummarizerDeps bundles what the document service needs. Store and Queue are nil
// when their provider is "none".
type SummarizerDeps struct {
	Config    config.Config
	Log       *slog.Logger
	Docs      *docqa.Service
	Sentiment *sentiment.Analyzer
	Matcher   *matching.Matcher
	Store     store.Store
	Queue     queue.Queue
}

// WorkerDeps bundles what the async summary worker needs.
type WorkerDeps struct {
	Config config.Config
	Log    *slog.Logger
	Docs   *docqa.Service
	Store  store.Store
	Queue  queue.Queue
}

// BuildAvatar loads config and builds the reference index before serving.
func BuildAvatar() (AvatarDeps, error) {
	cfg, log := load("avatar")

	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return AvatarDeps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return AvatarDeps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	index := retrieval.Build(context.Background(), log, retrieval.FileLoader{Dir: cfg.DocsDir}, embedder, cfg.DocFiles)
	log.Info("reference index built", "documents", index.Len(), "sources", len(cfg.DocFiles))

	return AvatarDeps{
		Config:    cfg,
		Log:       log,
		Assistant: assistant.New(index, llmClient, log, cfg.TopK),
	}, nil
}

// BuildSummarizer wires the document, sentiment and matching services.
func BuildSummarizer() (SummarizerDeps, error) {
	cfg, log := load("summarizer")

	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return SummarizerDeps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	st, err := buildStore(cfg, log)
	if err != nil {
		return SummarizerDeps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return SummarizerDeps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}

	deps := SummarizerDeps{
		Config:    cfg,
		Log:       log,
		Docs:      buildDocs(cfg, log, llmClient),
		Sentiment: sentiment.New(llmClient, log, cfg.SentimentConcurrency),
		Matcher:   matching.New(st, llmClient, log),
		Store:     st,
		Queue:     q,
	}
	return deps, nil
}

// BuildWorker requires both a store and a queue.
func BuildWorker() (WorkerDeps, error) {
	cfg, log := load("worker")

	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return WorkerDeps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	st, err := buildStore(cfg, log)
	if err != nil {
		return WorkerDeps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	if st == nil {
		return WorkerDeps{}, errors.New("worker requires STORE_PROVIDER=postgres")
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return WorkerDeps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	if q == nil {
		return WorkerDeps{}, errors.New("worker requires QUEUE_PROVIDER=nats")
	}

	return WorkerDeps{
		Config: cfg,
		Log:    log,
		Docs:   buildDocs(cfg, log, llmClient),
		Store:  st,
		Queue:  q,
	}, nil
}

// load reads .env when present, then the environment.
func load(service string) (config.Config, *slog.Logger) {
	envErr := godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, service)
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		log.Warn("failed to load .env", "err", envErr)
	}
	return cfg, log
}

func buildDocs(cfg config.Config, log *slog.Logger, client llm.Client) *docqa.Service {
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	return docqa.New(
		extract.New(time.Duration(cfg.FetchTimeout)*time.Second),
		client,
		buildCache(cfg, log),
		ttl,
		log,
	)
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	case "none", "":
		log.Info("no store configured; user directory and summary jobs disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid options: postgres, none)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL, nats.Name("buddy-backends"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: nats, none)", cfg.QueueProvider)
	}
}

// buildCache never fails: an unreachable Redis degrades to no caching.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.CacheProvider != "redis" {
		return cache.NewNoOpCache()
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("redis unavailable; answer caching disabled", "addr", cfg.RedisAddr, "err", err)
		return cache.NewNoOpCache()
	}
	log.Info("using Redis answer cache", "addr", cfg.RedisAddr, "ttl_seconds", cfg.CacheTTL)
	return c
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "azure":
		if err := requireAzure(cfg); err != nil {
			return nil, err
		}
		if cfg.AzureDeployment == "" {
			return nil, fmt.Errorf("AZURE_DEPLOYMENT_NAME is required when LLM_PROVIDER=azure")
		}
		client, err := llm.NewClientWithOptions(openai.ChatModel(cfg.AzureDeployment),
			azure.WithEndpoint(cfg.AzureEndpoint, cfg.AzureAPIVersion),
			azure.WithAPIKey(cfg.AzureAPIKey),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Azure OpenAI client: %w", err)
		}
		log.Info("using Azure OpenAI LLM client", "deployment", cfg.AzureDeployment, "api_version", cfg.AzureAPIVersion)
		return client, nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.LLMModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: azure, openai)", cfg.LLMProvider)
	}
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	switch cfg.LLMProvider {
	case "azure":
		if err := requireAzure(cfg); err != nil {
			return nil, err
		}
		embedder, err := embeddings.NewEmbedderWithOptions(openai.EmbeddingModel(cfg.AzureEmbeddingDeployment),
			azure.WithEndpoint(cfg.AzureEndpoint, cfg.AzureEmbeddingVersion),
			azure.WithAPIKey(cfg.AzureAPIKey),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Azure OpenAI embedder: %w", err)
		}
		log.Info("using Azure OpenAI embedder", "deployment", cfg.AzureEmbeddingDeployment)
		return embedder, nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		embedder, err := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
		}
		log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel)
		return embedder, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: azure, openai)", cfg.LLMProvider)
	}
}

func requireAzure(cfg config.Config) error {
	if cfg.AzureEndpoint == "" || cfg.AzureAPIKey == "" {
		return fmt.Errorf("AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_API_KEY are required when LLM_PROVIDER=azure")
	}
	return nil
}
