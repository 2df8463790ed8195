package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// ChunkSettings configures the word-window chunker.
type ChunkSettings struct {
	// SplitLength is the number of words per chunk.
	SplitLength int

	// SplitOverlap is the number of words shared with the preceding chunk.
	SplitOverlap int

	// CleanHeaderFooter strips lines repeated at page boundaries.
	CleanHeaderFooter bool
}

// RetrievalSettings configures the query façade.
type RetrievalSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// ExpertiseTopK is the number of chunks returned by a subject lookup.
	ExpertiseTopK int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// MaxTokens bounds the length of generated answers.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StoreSettings locates the document stores.
type StoreSettings struct {
	// PostgresURL is the pgvector database used by the full tier.
	PostgresURL string

	// DataDir holds the local SQLite store used when PostgreSQL is unavailable.
	DataDir string

	// Dimensions overrides the embedding size recorded in the store.
	// Zero means "use the embedder's size".
	Dimensions int
}

// CacheSettings configures the embedding cache.
type CacheSettings struct {
	// RedisURL enables the Redis embedding cache when set.
	RedisURL string

	// TTL is how long cached embeddings live.
	TTL time.Duration
}

// IsConfigured returns true if the cache has somewhere to write.
func (c CacheSettings) IsConfigured() bool {
	return c.RedisURL != ""
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// RateLimit is the sustained requests per second allowed (0 disables limiting).
	RateLimit float64

	// RateBurst is the token bucket size.
	RateBurst int
}

// Settings holds all application settings.
type Settings struct {
	Chunking  ChunkSettings
	Retrieval RetrievalSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Store     StoreSettings
	Cache     CacheSettings
	Server    ServerSettings

	// PromptDir holds user-editable prompt templates.
	PromptDir string
}

// DefaultSettings returns settings with sensible defaults.
// AI providers and stores are left unconfigured; bootstrap then settles on
// whichever tier the environment supports.
func DefaultSettings() Settings {
	return Settings{
		Chunking: ChunkSettings{
			SplitLength:       200,
			SplitOverlap:      20,
			CleanHeaderFooter: true,
		},
		Retrieval: RetrievalSettings{
			TopK:          DefaultTopK,
			ExpertiseTopK: DefaultExpertiseTopK,
		},
		LLM: LLMSettings{
			MaxTokens: 500,
		},
		Cache: CacheSettings{
			TTL: 24 * time.Hour,
		},
		Server: ServerSettings{
			Addr:      ":8000",
			RateLimit: 20,
			RateBurst: 40,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFromChunking builds the processor pipeline for the chunk settings.
func PipelineConfigFromChunking(c ChunkSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"split_length":        c.SplitLength,
				"split_overlap":       c.SplitOverlap,
				"clean_header_footer": c.CleanHeaderFooter,
			},
		},
	}
}
