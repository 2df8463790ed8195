package postprocessors

import (
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
	"github.com/custodia-labs/educhat/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - split_length (int): Words per chunk (default: 200)
//   - split_overlap (int): Words shared with the previous chunk (default: 20)
//   - clean_header_footer (bool): Strip repeated page headers/footers (default: true)
//
// Invalid lengths are passed through so the chunker can reject them.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if v, ok := getIntFromConfig(cfg, "split_length"); ok {
		opts = append(opts, chunker.WithSplitLength(v))
	}
	if v, ok := getIntFromConfig(cfg, "split_overlap"); ok {
		opts = append(opts, chunker.WithSplitOverlap(v))
	}
	if v, ok := cfg["clean_header_footer"].(bool); ok {
		opts = append(opts, chunker.WithCleanHeaderFooter(v))
	}

	p, err := chunker.New(opts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/YAML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
