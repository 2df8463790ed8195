package mcp

import (
	"github.com/custodia-labs/educhat/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Tutor answers questions and lists subject material.
	Tutor driving.TutorService

	// Ingest adds files to the store. Optional.
	Ingest driving.IngestService

	// Status reports the bootstrap outcome. Optional.
	Status driving.PipelineStatus
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Tutor == nil {
		return ErrMissingTutorService
	}
	return nil
}
