// Package tui provides an interactive terminal chat with the tutor.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/educhat/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Tutor answers questions and lists subject material. Required.
	Tutor driving.TutorService

	// Status reports the bootstrap outcome. Optional; the status view
	// falls back to the tutor's tier when nil.
	Status driving.PipelineStatus
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Tutor == nil {
		return ErrMissingTutorService
	}
	return nil
}
