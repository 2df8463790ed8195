package httpapi

import "github.com/custodia-labs/educhat/internal/core/ports/driving"

// Ports aggregates the driving ports the HTTP server calls.
type Ports struct {
	// Tutor answers questions (required).
	Tutor driving.TutorService

	// Ingest handles uploads. Without it /upload-document returns 503.
	Ingest driving.IngestService

	// Status reports the bootstrap outcome on /health and /status.
	Status driving.PipelineStatus
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Tutor == nil {
		return ErrMissingTutorService
	}
	return nil
}
