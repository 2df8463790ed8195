// Package app wires configuration, adapters and core services into a
// running educhat instance. Bootstrap runs once, in New.
package app

import (
	"context"
	"fmt"

	"github.com/custodia-labs/educhat/internal/adapters/driven/ai"
	"github.com/custodia-labs/educhat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
	"github.com/custodia-labs/educhat/internal/core/services"
	"github.com/custodia-labs/educhat/internal/extractors"
	"github.com/custodia-labs/educhat/internal/postprocessors"
)

// ProbeFunc builds the bootstrap strategies for the loaded settings.
type ProbeFunc func(settings domain.Settings) services.Probes

// Options configures New.
type Options struct {
	// ConfigPath is the config file (default: ~/.educhat/config.toml).
	ConfigPath string

	// EnvFiles are .env files loaded before the config (default: ./.env).
	EnvFiles []string

	// Probes overrides the bootstrap strategies (default: ai.Resolver).
	Probes ProbeFunc
}

// App holds the services shared by every driving adapter.
type App struct {
	Config   driven.ConfigStore
	Settings *services.SettingsService
	Prompts  *file.PromptStore
	Pipeline *services.Pipeline
	Tutor    *services.TutorService
	Ingest   *services.IngestService

	settings domain.Settings
}

// New loads configuration, builds the chunking pipeline and bootstraps the
// document pipeline. Only configuration errors are returned; an unreachable
// store or model lowers the tier instead.
func New(ctx context.Context, opts Options) (*App, error) {
	if err := file.LoadEnvFiles(opts.EnvFiles...); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	var (
		store *file.ConfigStore
		err   error
	)
	if opts.ConfigPath != "" {
		store, err = file.OpenConfigFile(opts.ConfigPath)
	} else {
		store, err = file.NewConfigStore("")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	settingsService := services.NewSettingsService(store)
	if err := settingsService.Validate(); err != nil {
		return nil, err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	assembler, err := newAssembler(settings.Chunking)
	if err != nil {
		return nil, err
	}

	prompts, err := file.NewPromptStore(settings.PromptDir)
	if err != nil {
		return nil, err
	}

	probes := opts.Probes
	if probes == nil {
		probes = func(s domain.Settings) services.Probes {
			return ai.NewResolver(s).Probes()
		}
	}

	pipeline := services.Bootstrap(ctx, probes(settings),
		services.WithGenerator(func(llm driven.LLMService) driven.Generator {
			return services.NewPromptGenerator(llm, prompts, settings.LLM.MaxTokens)
		}),
	)

	return &App{
		Config:   store,
		Settings: settingsService,
		Prompts:  prompts,
		Pipeline: pipeline,
		Tutor:    services.NewTutorService(pipeline, settings.Retrieval.TopK, settings.Retrieval.ExpertiseTopK),
		Ingest:   services.NewIngestService(assembler, pipeline),
		settings: settings,
	}, nil
}

// newAssembler builds the chunker from the chunk settings through the
// processor registry, so a bad window is reported as ErrInvalidConfig.
func newAssembler(chunking domain.ChunkSettings) (*services.Assembler, error) {
	cfg := domain.PipelineConfigFromChunking(chunking)
	registry := postprocessors.NewDefaultRegistry()

	processors := make([]driven.PostProcessor, 0, len(cfg.Processors))
	for _, name := range cfg.Processors {
		p, err := registry.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, err
		}
		processors = append(processors, p)
	}

	return services.NewAssembler(extractors.NewDefaultSet(), postprocessors.NewPipeline(processors...)), nil
}

// LoadedSettings returns the settings the app was built with.
func (a *App) LoadedSettings() domain.Settings {
	return a.settings
}

// Close releases the pipeline's store and model clients.
func (a *App) Close() error {
	if a == nil || a.Pipeline == nil {
		return nil
	}
	if err := a.Pipeline.Close(); err != nil {
		return fmt.Errorf("closing pipeline: %w", err)
	}
	return nil
}
