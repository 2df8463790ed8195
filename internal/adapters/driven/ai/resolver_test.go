package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/educhat/internal/adapters/driven/embedding/cache"
	"github.com/custodia-labs/educhat/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/educhat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
	"github.com/custodia-labs/educhat/internal/core/services"
)

const fakeDims = 4

// newFakeOllama serves the Ollama endpoints the adapters call. Embeddings
// are fakeDims wide, so an unknown model learns its size from the first call.
func newFakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/api/embed":
			var req struct {
				Input []string `json:"input"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			out := make([][]float32, len(req.Input))
			for i := range out {
				out[i] = []float32{1, 0, 0, float32(i)}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": out})
		case "/api/generate":
			_ = json.NewEncoder(w).Encode(map[string]any{"response": "An answer.", "done": true})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func localSettings(t *testing.T, url string) domain.Settings {
	t.Helper()
	s := domain.DefaultSettings()
	s.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: url, Model: "tiny-embed"}
	s.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: url, Model: "tiny-llm"}
	s.Store.DataDir = t.TempDir()
	return s
}

func TestResolver_Full_RequiresConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Settings)
		want   string
	}{
		{name: "no database", mutate: func(*domain.Settings) {}, want: "no PostgreSQL URL configured"},
		{
			name: "no embedder",
			mutate: func(s *domain.Settings) {
				s.Store.PostgresURL = "postgres://localhost/edu"
				s.Embedding = domain.EmbeddingSettings{}
			},
			want: "no embedding provider configured",
		},
		{
			name: "no llm",
			mutate: func(s *domain.Settings) {
				s.Store.PostgresURL = "postgres://localhost/edu"
				s.LLM = domain.LLMSettings{}
			},
			want: "no LLM provider configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := localSettings(t, "http://127.0.0.1:1")
			tt.mutate(&s)

			c, err := NewResolver(s).Full(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Nil(t, c)
		})
	}
}

func TestResolver_Full_DatabaseDown(t *testing.T) {
	srv := newFakeOllama(t)
	s := localSettings(t, srv.URL)
	s.Store.PostgresURL = "postgres://educhat@127.0.0.1:1/educhat?connect_timeout=1"

	c, err := NewResolver(s).Full(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	require.NotNil(t, c)
	assert.NotNil(t, c.Embedder, "partial components are returned for bootstrap to close")
	assert.NoError(t, c.Close())
}

func TestResolver_AltPaths(t *testing.T) {
	srv := newFakeOllama(t)

	c, err := NewResolver(localSettings(t, srv.URL)).AltPaths(context.Background())
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Store)
	assert.NotNil(t, c.LLM)
	assert.Equal(t, "tiny-embed", c.Embedder.ModelName())
	assert.Equal(t, fakeDims, c.Embedder.Dimensions())
}

func TestResolver_AltPaths_DimensionMismatch(t *testing.T) {
	srv := newFakeOllama(t)
	s := localSettings(t, srv.URL)
	s.Store.Dimensions = 768

	c, err := NewResolver(s).AltPaths(context.Background())
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	if c != nil {
		c.Close()
	}
}

func TestResolver_AltPaths_StoredDimensionMismatch(t *testing.T) {
	srv := newFakeOllama(t)
	s := localSettings(t, srv.URL)

	// Records written by a previous, wider embedding model.
	store, err := sqlite.NewStore(s.Store.DataDir)
	require.NoError(t, err)
	require.NoError(t, store.WriteRecords(context.Background(), []driven.EmbeddedRecord{{
		Record:    domain.IndexedRecord{ID: "old-1", Chunk: domain.Chunk{Content: "algebra basics"}},
		Embedding: make([]float32, 8),
	}}))
	require.NoError(t, store.Close())

	c, err := NewResolver(s).AltPaths(context.Background())
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	require.NotNil(t, c)
	assert.NoError(t, c.Close())

	p := services.Bootstrap(context.Background(), NewResolver(s).Probes())
	defer p.Close()
	assert.Equal(t, domain.TierDegraded, p.Tier())

	res, err := services.NewTutorService(p, 5, 10).Ask(context.Background(), "explain algebra", domain.AskOptions{})
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestResolver_AltPaths_EmbedderDown(t *testing.T) {
	s := localSettings(t, "http://127.0.0.1:1")

	c, err := NewResolver(s).AltPaths(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	if c != nil {
		assert.Nil(t, c.Store)
	}
}

func TestResolver_Degraded(t *testing.T) {
	c, err := NewResolver(domain.DefaultSettings()).Degraded(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, c.Store)
	assert.Nil(t, c.LLM)
	assert.Equal(t, hashing.ModelName, c.Embedder.ModelName())
	assert.Equal(t, hashing.DefaultDimensions, c.Embedder.Dimensions())
}

func TestResolver_BootstrapTiers(t *testing.T) {
	srv := newFakeOllama(t)

	full := services.Bootstrap(context.Background(), NewResolver(localSettings(t, srv.URL)).Probes())
	defer full.Close()
	assert.Equal(t, domain.TierFull, full.Tier())
	assert.Len(t, full.Warnings(), 1, "the PostgreSQL probe fails first")

	s := localSettings(t, "http://127.0.0.1:1")
	degraded := services.Bootstrap(context.Background(), NewResolver(s).Probes())
	defer degraded.Close()
	assert.Equal(t, domain.TierDegraded, degraded.Tier())
	assert.Len(t, degraded.Warnings(), 2)
}

func TestResolver_CacheUnreachableIsSkipped(t *testing.T) {
	srv := newFakeOllama(t)
	s := localSettings(t, srv.URL)
	s.Cache.RedisURL = "redis://127.0.0.1:1/0"

	c, err := NewResolver(s).AltPaths(context.Background())
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "tiny-embed", c.Embedder.ModelName())
}

func TestResolver_CacheWrapsEmbedder(t *testing.T) {
	url := os.Getenv("EDUCHAT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("EDUCHAT_TEST_REDIS_URL not set")
	}
	srv := newFakeOllama(t)
	s := localSettings(t, srv.URL)
	s.Cache.RedisURL = url

	c, err := NewResolver(s).AltPaths(context.Background())
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &cache.EmbeddingService{}, c.Embedder)
	assert.Equal(t, "tiny-embed", c.Embedder.ModelName())
}
