package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/educhat/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/educhat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/services"
)

func degradedOnly(domain.Settings) services.Probes {
	fail := func(context.Context) (*services.Components, error) {
		return nil, errors.New("unavailable")
	}
	return services.Probes{
		Full:     fail,
		AltPaths: fail,
		Degraded: func(context.Context) (*services.Components, error) {
			return &services.Components{
				Store:    memory.NewDocumentStore(),
				Embedder: hashing.NewEmbeddingService(0),
			}, nil
		},
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNew_Degraded(t *testing.T) {
	path := writeConfig(t, "config.toml", "[retrieval]\ntop_k = 2\n")

	a, err := New(context.Background(), Options{ConfigPath: path, Probes: degradedOnly})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, domain.TierDegraded, a.Pipeline.Tier())
	assert.Equal(t, 2, a.LoadedSettings().Retrieval.TopK)
	assert.Equal(t, path, a.Config.Path())

	n, err := a.Ingest.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	res, err := a.Tutor.Ask(context.Background(), "What is a force in physics?", domain.AskOptions{})
	require.NoError(t, err)
	assert.Len(t, res.Documents, 2)
}

func TestNew_YAMLConfig(t *testing.T) {
	path := writeConfig(t, "educhat.yaml", "chunking:\n  split_length: 50\n  split_overlap: 5\n")

	a, err := New(context.Background(), Options{ConfigPath: path, Probes: degradedOnly})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 50, a.LoadedSettings().Chunking.SplitLength)
}

func TestNew_InvalidChunkWindow(t *testing.T) {
	path := writeConfig(t, "config.toml", "[chunking]\nsplit_length = 10\nsplit_overlap = 10\n")

	_, err := New(context.Background(), Options{ConfigPath: path, Probes: degradedOnly})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestNew_InvalidConfigFile(t *testing.T) {
	path := writeConfig(t, "config.toml", "[chunking\n")

	_, err := New(context.Background(), Options{ConfigPath: path, Probes: degradedOnly})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestNew_NoProbesSucceed(t *testing.T) {
	path := writeConfig(t, "config.toml", "")
	none := func(domain.Settings) services.Probes { return services.Probes{} }

	a, err := New(context.Background(), Options{ConfigPath: path, Probes: none})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, domain.TierNull, a.Pipeline.Tier())
	res, err := a.Tutor.Ask(context.Background(), "explain algebra", domain.AskOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{domain.Acknowledgement("explain algebra")}, res.Answer)
}

func TestNew_EnvOverridesFile(t *testing.T) {
	t.Setenv("EDUCHAT_RETRIEVAL_TOP_K", "7")
	path := writeConfig(t, "config.toml", "[retrieval]\ntop_k = 2\n")

	a, err := New(context.Background(), Options{ConfigPath: path, Probes: degradedOnly})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 7, a.LoadedSettings().Retrieval.TopK)
}

func TestApp_CloseNil(t *testing.T) {
	var a *App
	assert.NoError(t, a.Close())
}
