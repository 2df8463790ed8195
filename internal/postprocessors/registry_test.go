package postprocessors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
	"github.com/custodia-labs/educhat/internal/postprocessors/chunker"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.Empty(t, r.Names())
}

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	r.Register("mock", func(_ map[string]any) (driven.PostProcessor, error) {
		return &mockProcessor{name: "mock"}, nil
	})

	assert.True(t, r.Has("mock"))
	assert.False(t, r.Has("other"))

	proc, err := r.Build("mock", nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", proc.Name())
}

func TestRegistry_Build_UnknownProcessor(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build("nonexistent", nil)

	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestRegistry_Names_Sorted(t *testing.T) {
	r := NewRegistry()
	noop := func(_ map[string]any) (driven.PostProcessor, error) { return &mockProcessor{}, nil }
	r.Register("zeta", noop)
	r.Register("alpha", noop)

	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}

func TestNewDefaultRegistry(t *testing.T) {
	assert.True(t, NewDefaultRegistry().Has("chunker"))
}

func TestBuildChunker_WithConfig(t *testing.T) {
	r := NewDefaultRegistry()

	proc, err := r.Build("chunker", map[string]any{
		"split_length":  int64(50),
		"split_overlap": float64(5),
	})
	require.NoError(t, err)

	c, ok := proc.(*chunker.Processor)
	require.True(t, ok)
	assert.Equal(t, 50, c.SplitLength())
	assert.Equal(t, 5, c.SplitOverlap())
}

func TestBuildChunker_WithNilConfig(t *testing.T) {
	proc, err := NewDefaultRegistry().Build("chunker", nil)
	require.NoError(t, err)

	c := proc.(*chunker.Processor)
	assert.Equal(t, chunker.DefaultSplitLength, c.SplitLength())
	assert.Equal(t, chunker.DefaultSplitOverlap, c.SplitOverlap())
}

func TestBuildChunker_RejectsOverlap(t *testing.T) {
	proc, err := NewDefaultRegistry().Build("chunker", map[string]any{
		"split_length":  10,
		"split_overlap": 10,
	})

	assert.Nil(t, proc)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestGetIntFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      map[string]any
		expected int
		found    bool
	}{
		{"int value", map[string]any{"size": 100}, 100, true},
		{"int64 value", map[string]any{"size": int64(200)}, 200, true},
		{"float64 value", map[string]any{"size": float64(300)}, 300, true},
		{"string value", map[string]any{"size": "400"}, 0, false},
		{"missing key", map[string]any{"other": 100}, 0, false},
		{"nil config", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := getIntFromConfig(tt.cfg, "size")
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.found, ok)
		})
	}
}
