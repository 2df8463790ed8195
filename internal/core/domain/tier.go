package domain

// PipelineTier is the capability level the retrieval pipeline runs at.
// Exactly one tier is active per process; it is chosen once at bootstrap.
type PipelineTier string

// Available tiers.
const (
	// TierFull has a vector store, an embedding retriever and a generator.
	TierFull PipelineTier = "full"

	// TierDegraded has an in-memory store and retriever but no generator.
	TierDegraded PipelineTier = "degraded"

	// TierNull has no store; queries receive a canned acknowledgement.
	TierNull PipelineTier = "null"
)

// IsValid returns true if the tier is recognised.
func (t PipelineTier) IsValid() bool {
	switch t {
	case TierFull, TierDegraded, TierNull:
		return true
	default:
		return false
	}
}

// HasRetriever returns true if queries at this tier retrieve from a store.
func (t PipelineTier) HasRetriever() bool {
	return t == TierFull || t == TierDegraded
}

// HasGenerator returns true if answers at this tier are generated.
func (t PipelineTier) HasGenerator() bool {
	return t == TierFull
}

// String returns the string representation.
func (t PipelineTier) String() string {
	return string(t)
}

// Description returns a human-readable description of the tier.
func (t PipelineTier) Description() string {
	switch t {
	case TierFull:
		return "Full (vector store + retriever + generator)"
	case TierDegraded:
		return "Degraded (in-memory store + retriever, no generator)"
	case TierNull:
		return "Null (no store, acknowledgement only)"
	default:
		return "Unknown"
	}
}

// BootstrapState is a state of the pipeline bootstrap state machine.
type BootstrapState string

// Bootstrap states. StateProbeFull is initial and StateReady is terminal.
const (
	StateProbeFull     BootstrapState = "PROBE_FULL"
	StateProbeAltPaths BootstrapState = "PROBE_ALT_PATHS"
	StateProbeDegraded BootstrapState = "PROBE_DEGRADED"
	StateNull          BootstrapState = "NULL"
	StateReady         BootstrapState = "READY"
)

// Transition records one step of the bootstrap state machine.
type Transition struct {
	From BootstrapState
	To   BootstrapState

	// Tier is set when To is StateReady.
	Tier PipelineTier

	// Reason explains why the transition was taken.
	Reason string
}
