package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
	"github.com/custodia-labs/educhat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeySplitLength       = "chunking.split_length"
	KeySplitOverlap      = "chunking.split_overlap"
	KeyCleanHeaderFooter = "chunking.clean_header_footer"
	KeyTopK              = "retrieval.top_k"
	KeyExpertiseTopK     = "retrieval.expertise_top_k"
	KeyEmbedProvider     = "embedding.provider"
	KeyEmbedModel        = "embedding.model"
	KeyEmbedBaseURL      = "embedding.base_url"
	KeyEmbedAPIKey       = "embedding.api_key"
	KeyLLMProvider       = "llm.provider"
	KeyLLMModel          = "llm.model"
	KeyLLMBaseURL        = "llm.base_url"
	KeyLLMAPIKey         = "llm.api_key"
	KeyLLMMaxTokens      = "llm.max_tokens"
	KeyPostgresURL       = "store.postgres_url"
	KeyDataDir           = "store.data_dir"
	KeyDimensions        = "store.dimensions"
	KeyRedisURL          = "cache.redis_url"
	KeyCacheTTL          = "cache.ttl"
	KeyServerAddr        = "server.addr"
	KeyRateLimit         = "server.rate_limit"
	KeyRateBurst         = "server.rate_burst"
	KeyPromptDir         = "prompts.dir"
)

// defaultOllamaURL is used for local providers with no base URL.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService reads and writes application settings through a ConfigStore.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Unset or unparsable keys take their defaults.
func (s *SettingsService) Get() (domain.Settings, error) {
	d := domain.DefaultSettings()

	return domain.Settings{
		Chunking: domain.ChunkSettings{
			SplitLength:       s.getInt(KeySplitLength, d.Chunking.SplitLength),
			SplitOverlap:      s.getInt(KeySplitOverlap, d.Chunking.SplitOverlap),
			CleanHeaderFooter: s.getBool(KeyCleanHeaderFooter, d.Chunking.CleanHeaderFooter),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:          s.getInt(KeyTopK, d.Retrieval.TopK),
			ExpertiseTopK: s.getInt(KeyExpertiseTopK, d.Retrieval.ExpertiseTopK),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(KeyEmbedProvider),
			Model:    s.configStore.GetString(KeyEmbedModel),
			BaseURL:  s.configStore.GetString(KeyEmbedBaseURL),
			APIKey:   s.configStore.GetString(KeyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:  s.getProvider(KeyLLMProvider),
			Model:     s.configStore.GetString(KeyLLMModel),
			BaseURL:   s.configStore.GetString(KeyLLMBaseURL),
			APIKey:    s.configStore.GetString(KeyLLMAPIKey),
			MaxTokens: s.getInt(KeyLLMMaxTokens, d.LLM.MaxTokens),
		},
		Store: domain.StoreSettings{
			PostgresURL: s.configStore.GetString(KeyPostgresURL),
			DataDir:     s.configStore.GetString(KeyDataDir),
			Dimensions:  s.getInt(KeyDimensions, d.Store.Dimensions),
		},
		Cache: domain.CacheSettings{
			RedisURL: s.configStore.GetString(KeyRedisURL),
			TTL:      s.getDuration(KeyCacheTTL, d.Cache.TTL),
		},
		Server: domain.ServerSettings{
			Addr:      s.getString(KeyServerAddr, d.Server.Addr),
			RateLimit: s.getFloat(KeyRateLimit, d.Server.RateLimit),
			RateBurst: s.getInt(KeyRateBurst, d.Server.RateBurst),
		},
		PromptDir: s.configStore.GetString(KeyPromptDir),
	}, nil
}

// Set stores a single key and saves the configuration.
// Numeric and boolean strings are stored typed so they round-trip through TOML.
func (s *SettingsService) Set(key, value string) error {
	var v any = value
	if i, err := strconv.Atoi(value); err == nil {
		v = i
	} else if b, err := strconv.ParseBool(value); err == nil {
		v = b
	} else if f, err := strconv.ParseFloat(value, 64); err == nil {
		v = f
	}

	previous, existed := s.configStore.Get(key)
	if err := s.configStore.Set(key, v); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := s.Validate(); err != nil {
		if existed {
			_ = s.configStore.Set(key, previous)
		} else {
			_ = s.configStore.Set(key, nil)
		}
		return err
	}
	return s.configStore.Save()
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidConfig, provider)
	}
	if !supportsEmbeddings(provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidConfig, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidConfig, provider)
	}

	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	values := map[string]any{
		KeyEmbedProvider: provider.String(),
		KeyEmbedModel:    model,
		KeyEmbedBaseURL:  baseURLFor(provider, s.configStore.GetString(KeyEmbedBaseURL)),
		KeyEmbedAPIKey:   apiKey,
	}
	if dims, ok := domain.EmbeddingDimensions()[model]; ok {
		values[KeyDimensions] = dims
	}
	return s.save(values)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidConfig, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidConfig, provider)
	}

	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	return s.save(map[string]any{
		KeyLLMProvider: provider.String(),
		KeyLLMModel:    model,
		KeyLLMBaseURL:  baseURLFor(provider, s.configStore.GetString(KeyLLMBaseURL)),
		KeyLLMAPIKey:   apiKey,
	})
}

// Validate checks the settings for values the pipeline cannot start with.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	c := settings.Chunking
	if c.SplitLength <= 0 || c.SplitOverlap < 0 || c.SplitOverlap >= c.SplitLength {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk length %d",
			domain.ErrInvalidConfig, c.SplitOverlap, c.SplitLength)
	}
	if settings.Retrieval.TopK <= 0 || settings.Retrieval.ExpertiseTopK <= 0 {
		return fmt.Errorf("%w: retrieval limits must be positive", domain.ErrInvalidConfig)
	}
	if settings.Server.RateLimit < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

func (s *SettingsService) save(values map[string]any) error {
	for key, value := range values {
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return s.configStore.Save()
}

func supportsEmbeddings(provider domain.AIProvider) bool {
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			return true
		}
	}
	return false
}

// baseURLFor keeps a custom URL for local providers and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getDuration accepts Go duration strings ("12h") or whole seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return ""
	}
	return provider
}
