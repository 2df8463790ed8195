package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder hashes words into a small bag-of-words vector.
type mockEmbedder struct {
	err    error
	closed atomic.Bool
}

const mockDims = 32

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	vec := make([]float32, mockDims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,:;!?'\"")))
		vec[h.Sum32()%mockDims]++
	}
	return vec, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return mockDims }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return m.err }
func (m *mockEmbedder) Close() error {
	m.closed.Store(true)
	return nil
}

// mockStore records writes and returns canned search results.
type mockStore struct {
	mu        sync.Mutex
	written   []driven.EmbeddedRecord
	hits      []domain.ScoredRecord
	searchErr error
	writeErr  error
	closed    atomic.Bool
}

func (m *mockStore) WriteRecords(_ context.Context, records []driven.EmbeddedRecord) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, records...)
	return nil
}

func (m *mockStore) Search(_ context.Context, _ []float32, topK int, _ domain.Filter) ([]domain.ScoredRecord, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if topK < len(m.hits) {
		return m.hits[:topK], nil
	}
	return m.hits, nil
}

func (m *mockStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.written), nil
}

func (m *mockStore) Close() error {
	m.closed.Store(true)
	return nil
}

// mockLLM returns a fixed answer and remembers the last prompt.
type mockLLM struct {
	mu         sync.Mutex
	answer     string
	err        error
	lastPrompt string
	lastOpts   driven.GenerateOptions
	closed     atomic.Bool
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPrompt = prompt
	m.lastOpts = opts
	return m.answer, m.err
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return m.err }
func (m *mockLLM) Close() error {
	m.closed.Store(true)
	return nil
}

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockConfigStore is an in-memory driven.ConfigStore.
type mockConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
	saves  int
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	v, _ := m.Get(key)
	i, _ := v.(int)
	return i
}

func (m *mockConfigStore) GetBool(key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	v, _ := m.Get(key)
	s, _ := v.([]string)
	return s
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == nil {
		delete(m.values, key)
		return nil
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	return nil
}

func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return ":memory:" }

// --- Probe helpers ---

var errProbe = errors.New("probe unavailable")

func failingProbe(_ context.Context) (*Components, error) {
	return nil, errProbe
}

func componentsProbe(c *Components) ResolveFunc {
	return func(_ context.Context) (*Components, error) {
		return c, nil
	}
}
