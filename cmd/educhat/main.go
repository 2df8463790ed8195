// Package main is the entry point for the educhat CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/custodia-labs/educhat/internal/adapters/driven/ai"
	"github.com/custodia-labs/educhat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/educhat/internal/adapters/driving/cli"
	"github.com/custodia-labs/educhat/internal/app"
	"github.com/custodia-labs/educhat/internal/core/ports/driving"
	"github.com/custodia-labs/educhat/internal/core/services"
	"github.com/custodia-labs/educhat/internal/logger"
)

// Set by the release build with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logger.Sync()

	undo := setMaxProcs()
	defer undo()

	cli.SetVersion(version)
	cli.SetAppFactory(newServices)
	cli.SetSettingsFactory(openSettings)
	cli.SetProviderValidator(ai.Validator{})

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// setMaxProcs matches GOMAXPROCS to the container CPU quota.
func setMaxProcs() func() {
	undo, err := maxprocs.Set(maxprocs.Logger(logger.Debug))
	if err != nil {
		logger.Warn("Setting GOMAXPROCS: %v", err)
	}
	return undo
}

func newServices(ctx context.Context, configPath string) (*cli.Services, error) {
	a, err := app.New(ctx, app.Options{ConfigPath: configPath})
	if err != nil {
		return nil, err
	}
	return &cli.Services{
		Tutor:    a.Tutor,
		Ingest:   a.Ingest,
		Status:   a.Pipeline,
		Settings: a.Settings,
		Server:   a.LoadedSettings().Server,
		Close:    a.Close,
	}, nil
}

func openSettings(configPath string) (driving.SettingsService, error) {
	var (
		store *file.ConfigStore
		err   error
	)
	if configPath != "" {
		store, err = file.OpenConfigFile(configPath)
	} else {
		store, err = file.NewConfigStore("")
	}
	if err != nil {
		return nil, err
	}
	return services.NewSettingsService(store), nil
}
