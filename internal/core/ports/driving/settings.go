package driving

import (
	"context"

	"github.com/custodia-labs/educhat/internal/core/domain"
)

// SettingsService manages application configuration.
type SettingsService interface {
	// Get returns the current settings, with defaults for unset keys.
	Get() (domain.Settings, error)

	// Set stores one dotted key and persists the configuration.
	Set(key, value string) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the settings for values the pipeline cannot use.
	Validate() error
}

// ProviderValidator checks that a provider configuration can be reached
// before the settings command reports success.
type ProviderValidator interface {
	// ValidateEmbeddingConfig creates the embedding service and pings it.
	ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error

	// ValidateLLMConfig creates the LLM service and pings it.
	ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error
}
