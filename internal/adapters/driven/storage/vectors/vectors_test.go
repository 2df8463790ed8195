package vectors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/educhat/internal/core/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRank(t *testing.T) {
	hit := func(id string, score float64) domain.ScoredRecord {
		return domain.ScoredRecord{IndexedRecord: domain.IndexedRecord{ID: id}, Score: score}
	}
	hits := []domain.ScoredRecord{hit("a", 0.1), hit("b", 0.9), hit("c", 0.5), hit("d", 0.9)}

	ranked := Rank(hits, 3)

	ids := make([]string, len(ranked))
	for i, h := range ranked {
		ids[i] = h.ID
	}
	assert.Equal(t, []string{"b", "d", "c"}, ids)
}

func TestRank_TopKLargerThanHits(t *testing.T) {
	hits := []domain.ScoredRecord{{Score: 1}}
	assert.Len(t, Rank(hits, 10), 1)
}

func TestEncodeDecode(t *testing.T) {
	vec := []float32{0.5, -1.25, 3.0e-7, 42}
	assert.Equal(t, vec, Decode(Encode(vec)))
	assert.Nil(t, Encode(nil))
	assert.Nil(t, Decode(nil))
}

func TestRestoreIntegers(t *testing.T) {
	meta := map[string]any{"pages": float64(12), "ratio": 0.5, "subject": "Physics"}
	RestoreIntegers(meta)

	assert.Equal(t, 12, meta["pages"])
	assert.Equal(t, 0.5, meta["ratio"])
	assert.Equal(t, "Physics", meta["subject"])
}
