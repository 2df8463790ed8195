// Package cli provides the educhat command line. Commands are registered on
// rootCmd in init functions and call the driving ports held in package
// variables, which main wires up through the factories below.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driving"
	"github.com/custodia-labs/educhat/internal/logger"
)

// version is set at build time with -ldflags or through SetVersion.
var version = "dev"

// Services holds the driving ports built by a bootstrapped app.
type Services struct {
	Tutor    driving.TutorService
	Ingest   driving.IngestService
	Status   driving.PipelineStatus
	Settings driving.SettingsService
	Server   domain.ServerSettings

	// Close releases the app. Optional.
	Close func() error
}

// AppFactory bootstraps the app from the config file (empty for the default).
type AppFactory func(ctx context.Context, configPath string) (*Services, error)

// SettingsFactory opens the settings without bootstrapping the pipeline.
type SettingsFactory func(configPath string) (driving.SettingsService, error)

var (
	tutorService      driving.TutorService
	ingestService     driving.IngestService
	pipelineStatus    driving.PipelineStatus
	settingsService   driving.SettingsService
	providerValidator driving.ProviderValidator
	serverSettings    = domain.DefaultSettings().Server
	closeServices     func() error

	appFactory      AppFactory
	settingsFactory SettingsFactory
)

// Persistent flags.
var (
	configPath string
	verbose    bool
)

// Command annotations naming what a command needs before it runs.
const (
	needsKey      = "educhat/needs"
	needsApp      = "app"
	needsSettings = "settings"
)

var rootCmd = &cobra.Command{
	Use:   "educhat",
	Short: "AI tutor over your course documents",
	Long: `educhat answers student questions from ingested course material.

Documents (txt, pdf, docx, pptx) are split into overlapping word windows,
embedded and stored. Questions retrieve the closest chunks and, when a
language model is reachable, a grounded answer is generated from them.

At startup educhat picks the best pipeline the environment supports:
  full      PostgreSQL/pgvector or SQLite store with an LLM
  degraded  in-memory store, retrieved passages returned as the answer
  null      no store, questions are acknowledged only`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default ~/.educhat/config.toml, .yaml also accepted)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetAppFactory sets how commands that need the pipeline build it.
func SetAppFactory(f AppFactory) {
	appFactory = f
}

// SetSettingsFactory sets how the settings commands open the config.
func SetSettingsFactory(f SettingsFactory) {
	settingsFactory = f
}

// SetProviderValidator sets the connectivity check used by the settings commands.
func SetProviderValidator(v driving.ProviderValidator) {
	providerValidator = v
}

// SetServices injects already-built services.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	tutorService = s.Tutor
	ingestService = s.Ingest
	pipelineStatus = s.Status
	if s.Settings != nil {
		settingsService = s.Settings
	}
	if s.Server.Addr != "" {
		serverSettings = s.Server
	}
	closeServices = s.Close
}

// Execute runs the root command and releases the app afterwards.
func Execute(ctx context.Context) error {
	defer func() {
		if err := release(); err != nil {
			logger.Warn("%v", err)
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// prepare applies the persistent flags and builds what the command needs.
func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	switch cmd.Annotations[needsKey] {
	case needsApp:
		if tutorService != nil || appFactory == nil {
			return nil
		}
		s, err := appFactory(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		SetServices(s)

	case needsSettings:
		if settingsService != nil || settingsFactory == nil {
			return nil
		}
		s, err := settingsFactory(configPath)
		if err != nil {
			return err
		}
		settingsService = s
	}
	return nil
}

func release() error {
	if closeServices == nil {
		return nil
	}
	fn := closeServices
	closeServices = nil
	return fn()
}

func needs(what string) map[string]string {
	return map[string]string{needsKey: what}
}
