package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/educhat/internal/adapters/driven/embedding/cache"
	"github.com/custodia-labs/educhat/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/educhat/internal/adapters/driven/embedding/ollama"
	ollamallm "github.com/custodia-labs/educhat/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/educhat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/educhat/internal/adapters/driven/storage/pgvector"
	"github.com/custodia-labs/educhat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
	"github.com/custodia-labs/educhat/internal/core/services"
	"github.com/custodia-labs/educhat/internal/logger"
)

// Resolver builds the bootstrap probes from settings.
type Resolver struct {
	settings domain.Settings
}

// NewResolver creates a resolver for the given settings.
func NewResolver(settings domain.Settings) *Resolver {
	return &Resolver{settings: settings}
}

// Probes returns the full, alternate-path and degraded strategies in bootstrap order.
func (r *Resolver) Probes() services.Probes {
	return services.Probes{
		Full:     r.Full,
		AltPaths: r.AltPaths,
		Degraded: r.Degraded,
	}
}

// Full resolves the primary deployment: PostgreSQL with pgvector plus the
// configured embedding and LLM providers.
func (r *Resolver) Full(ctx context.Context) (*services.Components, error) {
	s := r.settings
	if s.Store.PostgresURL == "" {
		return nil, errors.New("no PostgreSQL URL configured")
	}
	if !s.Embedding.IsConfigured() {
		return nil, errors.New("no embedding provider configured")
	}
	if !s.LLM.IsConfigured() {
		return nil, errors.New("no LLM provider configured")
	}

	c := &services.Components{}

	embedder, err := CreateAndValidateEmbeddingService(ctx, &s.Embedding)
	if err != nil {
		return c, err
	}
	c.Embedder = r.withCache(ctx, embedder)

	dims, err := r.dimensions(ctx, c.Embedder)
	if err != nil {
		return c, err
	}

	store, err := pgvector.NewStore(ctx, pgvector.Config{URL: s.Store.PostgresURL, Dimensions: dims})
	if err != nil {
		return c, err
	}
	c.Store = store

	c.LLM, err = CreateAndValidateLLMService(ctx, &s.LLM)
	return c, err
}

// AltPaths resolves the same tier through local entry points: the SQLite
// store in the data directory, with a local Ollama standing in for any
// provider that is not configured.
func (r *Resolver) AltPaths(ctx context.Context) (*services.Components, error) {
	s := r.settings
	c := &services.Components{}

	embedSettings := s.Embedding
	if !embedSettings.IsConfigured() {
		embedSettings = domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  ollamaembed.DefaultBaseURL,
			Model:    ollamaembed.DefaultModel,
		}
	}
	embedder, err := CreateAndValidateEmbeddingService(ctx, &embedSettings)
	if err != nil {
		return c, err
	}
	c.Embedder = r.withCache(ctx, embedder)

	dims, err := r.dimensions(ctx, c.Embedder)
	if err != nil {
		return c, err
	}

	store, err := sqlite.NewStore(s.Store.DataDir)
	if err != nil {
		return c, fmt.Errorf("%w: sqlite: %v", domain.ErrStoreUnavailable, err)
	}
	c.Store = store
	if err := ping(ctx, store.Ping); err != nil {
		return c, fmt.Errorf("%w: sqlite: ping failed: %v", domain.ErrStoreUnavailable, err)
	}
	stored, err := store.Dimensions(ctx)
	if err != nil {
		return c, fmt.Errorf("%w: sqlite: %v", domain.ErrStoreUnavailable, err)
	}
	if stored > 0 && stored != dims {
		return c, fmt.Errorf("%w: %s holds %d-dimension vectors, %s produces %d",
			domain.ErrDimensionMismatch, store.Path(), stored, c.Embedder.ModelName(), dims)
	}

	llmSettings := s.LLM
	if !llmSettings.IsConfigured() {
		llmSettings = domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  ollamallm.DefaultBaseURL,
			Model:    ollamallm.DefaultLLMModel,
		}
	}
	c.LLM, err = CreateAndValidateLLMService(ctx, &llmSettings)
	return c, err
}

// Degraded resolves retrieval without a model server: an in-memory store
// and the local hashing embedder.
func (r *Resolver) Degraded(_ context.Context) (*services.Components, error) {
	return &services.Components{
		Store:    memory.NewDocumentStore(),
		Embedder: hashing.NewEmbeddingService(hashing.DefaultDimensions),
	}, nil
}

// withCache wraps embedder in the Redis cache when one is configured and
// reachable. An unreachable cache is logged and skipped.
func (r *Resolver) withCache(ctx context.Context, embedder driven.EmbeddingService) driven.EmbeddingService {
	cs := r.settings.Cache
	if !cs.IsConfigured() {
		return embedder
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	client, err := cache.Dial(pingCtx, cs.RedisURL)
	if err != nil {
		logger.Warn("Embedding cache disabled: %v", err)
		return embedder
	}
	logger.Debug("Caching %s embeddings in Redis", embedder.ModelName())
	return cache.New(embedder, client, cache.Config{TTL: cs.TTL})
}

// dimensions returns the embedder's vector size, embedding a probe string
// when the model is not known in advance. A configured store size must match.
func (r *Resolver) dimensions(ctx context.Context, embedder driven.EmbeddingService) (int, error) {
	dims := embedder.Dimensions()
	if dims == 0 {
		probeCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		vec, err := embedder.Embed(probeCtx, "dimension probe")
		if err != nil {
			return 0, fmt.Errorf("learning embedding size: %w", err)
		}
		dims = len(vec)
	}

	if want := r.settings.Store.Dimensions; want > 0 && want != dims {
		return 0, fmt.Errorf("%w: store configured for %d, %s produces %d",
			domain.ErrDimensionMismatch, want, embedder.ModelName(), dims)
	}
	return dims, nil
}
