package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/educhat/internal/adapters/driving/httpapi"
)

var (
	serveAddr string
	serveSeed bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the tutor over HTTP until interrupted.

Endpoints:
  GET  /                              liveness message
  GET  /health                        health and active tier
  GET  /status                        bootstrap transitions and warnings
  POST /chat                          question, subject?, tutor_id?
  POST /upload-document               file, subject, topic?
  GET  /subjects/{subject}/documents  chunks stored for a subject`,
	Args:        cobra.NoArgs,
	Annotations: needs(needsApp),
	RunE:        runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from settings, :8000)")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "load the sample passages before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if tutorService == nil {
		return errors.New("tutor service not configured")
	}

	if serveSeed && ingestService != nil {
		n, err := ingestService.Seed(cmd.Context())
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		cmd.Printf("Seeded %d sample chunks.\n", n)
	}

	addr := serverSettings.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Tutor:  tutorService,
		Ingest: ingestService,
		Status: pipelineStatus,
	}, httpapi.Config{
		Addr:      addr,
		RateLimit: serverSettings.RateLimit,
		RateBurst: serverSettings.RateBurst,
	})
	if err != nil {
		return err
	}

	cmd.Printf("educhat API (%s tier) listening on %s\n", tutorService.Tier(), server.Addr())
	return server.Run(cmd.Context())
}
