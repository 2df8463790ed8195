package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
	"github.com/custodia-labs/educhat/internal/core/ports/driving"
	"github.com/custodia-labs/educhat/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineStatus = (*Pipeline)(nil)

// addBatchSize bounds how many chunks are embedded per EmbedBatch call.
const addBatchSize = 64

// Components are the collaborators a resolution strategy produces.
type Components struct {
	Store    driven.DocumentStore
	Embedder driven.EmbeddingService
	LLM      driven.LLMService
}

// Close releases every non-nil component.
func (c *Components) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	if c.Embedder != nil {
		errs = append(errs, c.Embedder.Close())
	}
	if c.LLM != nil {
		errs = append(errs, c.LLM.Close())
	}
	return errors.Join(errs...)
}

// ResolveFunc attempts to build pipeline components.
// It may return partial components alongside an error; they are closed.
type ResolveFunc func(ctx context.Context) (*Components, error)

// Probes are the resolution strategies tried in order during bootstrap.
// A nil probe always fails.
type Probes struct {
	// Full resolves the primary store, embedder and LLM.
	Full ResolveFunc

	// AltPaths resolves the same tier through alternate entry points.
	AltPaths ResolveFunc

	// Degraded resolves a store and embedder without an LLM.
	Degraded ResolveFunc
}

// GeneratorFunc wraps an LLM into the answer generator used by the full tier.
type GeneratorFunc func(llm driven.LLMService) driven.Generator

// BootstrapOption configures Bootstrap.
type BootstrapOption func(*bootstrapConfig)

type bootstrapConfig struct {
	newGenerator GeneratorFunc
}

// WithGenerator sets how the full tier turns its LLM into a generator.
func WithGenerator(fn GeneratorFunc) BootstrapOption {
	return func(c *bootstrapConfig) {
		c.newGenerator = fn
	}
}

type probeStep struct {
	state domain.BootstrapState
	probe ResolveFunc
	tier  domain.PipelineTier
}

// Bootstrap selects the pipeline tier by running the probes in order:
// PROBE_FULL, PROBE_ALT_PATHS, PROBE_DEGRADED, then NULL. The first probe
// that yields the components its tier needs wins. Bootstrap never fails;
// probe errors and panics are recorded as transition reasons and warnings.
func Bootstrap(ctx context.Context, probes Probes, opts ...BootstrapOption) *Pipeline {
	cfg := bootstrapConfig{
		newGenerator: func(llm driven.LLMService) driven.Generator {
			return NewPromptGenerator(llm, nil, DefaultMaxTokens)
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	logger.Section("Pipeline Bootstrap")

	steps := []probeStep{
		{state: domain.StateProbeFull, probe: probes.Full, tier: domain.TierFull},
		{state: domain.StateProbeAltPaths, probe: probes.AltPaths, tier: domain.TierFull},
		{state: domain.StateProbeDegraded, probe: probes.Degraded, tier: domain.TierDegraded},
	}

	p := &Pipeline{tier: domain.TierNull}
	for i, step := range steps {
		next := domain.StateNull
		if i+1 < len(steps) {
			next = steps[i+1].state
		}

		c, gen, err := resolve(ctx, step, cfg.newGenerator)
		if err != nil {
			reason := fmt.Sprintf("%s: %v", step.state, err)
			logger.Warn("Bootstrap %s failed: %v", step.state, err)
			p.warnings = append(p.warnings, reason)
			p.record(step.state, next, "", reason)
			continue
		}

		p.activate(step.tier, c, gen)
		p.record(step.state, domain.StateReady, step.tier, fmt.Sprintf("%s succeeded", step.state))
		logger.Info("Pipeline ready: %s", step.tier.Description())
		return p
	}

	p.record(domain.StateNull, domain.StateReady, domain.TierNull, "all probes failed")
	logger.Warn("No document store available; answering with acknowledgements only")
	return p
}

// resolve runs one probe, checks the components meet the tier's needs and
// builds the tier's generator. A panic in the probe or the generator factory
// fails the step.
func resolve(ctx context.Context, step probeStep, newGenerator GeneratorFunc) (c *Components, gen driven.Generator, err error) {
	if step.probe == nil {
		return nil, nil, errors.New("no resolution strategy configured")
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe panicked: %v", r)
		}
		if err != nil {
			gen = nil
			if c != nil {
				if cerr := c.Close(); cerr != nil {
					logger.Debug("closing partial components: %v", cerr)
				}
				c = nil
			}
		}
	}()

	c, err = step.probe(ctx)
	if err != nil {
		return c, nil, err
	}

	switch {
	case c == nil:
		return nil, nil, errors.New("probe returned no components")
	case c.Store == nil:
		return c, nil, errors.New("no document store")
	case c.Embedder == nil:
		return c, nil, errors.New("no embedding service")
	case step.tier.HasGenerator() && c.LLM == nil:
		return c, nil, errors.New("no LLM service")
	}

	if step.tier.HasGenerator() {
		if newGenerator == nil {
			return c, nil, errors.New("no generator configured")
		}
		if gen = newGenerator(c.LLM); gen == nil {
			return c, nil, errors.New("generator factory returned nil")
		}
		return c, gen, nil
	}

	if !step.tier.HasGenerator() && c.LLM != nil {
		if cerr := c.LLM.Close(); cerr != nil {
			logger.Debug("closing unused LLM: %v", cerr)
		}
		c.LLM = nil
	}
	return c, nil, nil
}

// Pipeline is the outcome of bootstrap: the active tier and its components.
// It is read-only after Bootstrap returns and safe for concurrent use.
type Pipeline struct {
	tier        domain.PipelineTier
	transitions []domain.Transition
	warnings    []string

	components *Components
	retriever  driven.Retriever
	generator  driven.Generator

	closeOnce sync.Once
	closeErr  error
}

// NullPipeline returns a pipeline with no store, as if every probe had failed.
func NullPipeline() *Pipeline {
	return Bootstrap(context.Background(), Probes{})
}

func (p *Pipeline) record(from, to domain.BootstrapState, tier domain.PipelineTier, reason string) {
	p.transitions = append(p.transitions, domain.Transition{From: from, To: to, Tier: tier, Reason: reason})
}

func (p *Pipeline) activate(tier domain.PipelineTier, c *Components, gen driven.Generator) {
	p.tier = tier
	p.components = c
	p.retriever = NewEmbeddingRetriever(c.Embedder, c.Store)
	p.generator = gen
}

// Tier returns the selected tier.
func (p *Pipeline) Tier() domain.PipelineTier {
	return p.tier
}

// Transitions returns the state changes bootstrap went through.
func (p *Pipeline) Transitions() []domain.Transition {
	out := make([]domain.Transition, len(p.transitions))
	copy(out, p.transitions)
	return out
}

// Warnings returns the reasons each failed probe gave.
func (p *Pipeline) Warnings() []string {
	out := make([]string, len(p.warnings))
	copy(out, p.warnings)
	return out
}

// Retriever returns the active retriever, or nil at the null tier.
func (p *Pipeline) Retriever() driven.Retriever {
	return p.retriever
}

// Generator returns the active generator, or nil below the full tier.
func (p *Pipeline) Generator() driven.Generator {
	return p.generator
}

// Components returns the active components, or nil at the null tier.
func (p *Pipeline) Components() *Components {
	return p.components
}

// Count returns the number of stored records. The null tier stores nothing.
func (p *Pipeline) Count(ctx context.Context) (int, error) {
	if p.components == nil {
		return 0, nil
	}
	return p.components.Store.Count(ctx)
}

// AddDocuments embeds chunks and writes them to the active store.
// At the null tier it logs and discards the chunks.
func (p *Pipeline) AddDocuments(ctx context.Context, chunks []domain.Chunk) (int, error) {
	if p.components == nil {
		logger.Info("Null pipeline: discarding %d chunks", len(chunks))
		return 0, nil
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	written := 0
	for start := 0; start < len(chunks); start += addBatchSize {
		end := min(start+addBatchSize, len(chunks))
		if err := p.addBatch(ctx, chunks[start:end]); err != nil {
			return written, err
		}
		written += end - start
	}

	logger.Debug("Added %d chunks", written)
	return written, nil
}

func (p *Pipeline) addBatch(ctx context.Context, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := p.components.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	now := time.Now()
	records := make([]driven.EmbeddedRecord, len(chunks))
	for i, c := range chunks {
		c.Meta = c.CloneMeta()
		records[i] = driven.EmbeddedRecord{
			Record: domain.IndexedRecord{
				ID:        uuid.NewString(),
				Chunk:     c,
				CreatedAt: now,
			},
			Embedding: vectors[i],
		}
	}

	if err := p.components.Store.WriteRecords(ctx, records); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

// Close releases the active components. It is safe to call more than once.
func (p *Pipeline) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.components.Close()
	})
	return p.closeErr
}
