// Package cache wraps an embedding service with a Redis-backed vector cache.
// Cache faults never fail an embedding call; they are logged and the wrapped
// service is used directly.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/educhat/internal/adapters/driven/storage/vectors"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
	"github.com/custodia-labs/educhat/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultTTL       = 24 * time.Hour
	DefaultKeyPrefix = "emb:"
)

// Client is the subset of the Redis client the cache uses.
type Client interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Config holds cache configuration.
type Config struct {
	// TTL is how long a cached vector lives (default: 24h).
	TTL time.Duration

	// KeyPrefix namespaces cache keys (default: "emb:").
	KeyPrefix string
}

// EmbeddingService serves embeddings from Redis when present and
// stores the wrapped service's results otherwise.
type EmbeddingService struct {
	inner  driven.EmbeddingService
	client Client
	ttl    time.Duration
	prefix string
}

// New wraps inner with a cache stored in client.
func New(inner driven.EmbeddingService, client Client, cfg Config) *EmbeddingService {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	return &EmbeddingService{
		inner:  inner,
		client: client,
		ttl:    cfg.TTL,
		prefix: cfg.KeyPrefix,
	}
}

// Dial connects to the Redis server at url and checks it responds.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	return client, nil
}

// key is the cache key of text under the wrapped model.
func (s *EmbeddingService) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return s.prefix + s.inner.ModelName() + ":" + hex.EncodeToString(sum[:])
}

// Embed returns the cached vector for text, embedding and caching it on a miss.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch looks every text up in one round trip and embeds only the misses.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = s.key(t)
	}

	out := make([][]float32, len(texts))
	dims := s.inner.Dimensions()

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Warn("embedding cache lookup failed: %v", err)
		values = nil
	}
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		vec := vectors.Decode([]byte(str))
		if dims > 0 && len(vec) != dims {
			continue
		}
		out[i] = vec
	}

	var missIdx []int
	var missTexts []string
	for i, vec := range out {
		if vec == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, texts[i])
		}
	}
	logger.Debug("embedding cache: %d hits, %d misses", len(texts)-len(missIdx), len(missIdx))
	if len(missIdx) == 0 {
		return out, nil
	}

	fresh, err := s.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedding cache: got %d vectors for %d texts", len(fresh), len(missTexts))
	}

	for j, i := range missIdx {
		out[i] = fresh[j]
		if err := s.client.Set(ctx, keys[i], vectors.Encode(fresh[j]), s.ttl).Err(); err != nil {
			logger.Warn("embedding cache store failed: %v", err)
		}
	}
	return out, nil
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping checks the wrapped service. Redis availability is checked by Dial.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the Redis client and the wrapped service.
func (s *EmbeddingService) Close() error {
	cerr := s.client.Close()
	if err := s.inner.Close(); err != nil {
		return err
	}
	return cerr
}
