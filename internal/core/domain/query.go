package domain

import "fmt"

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// DefaultExpertiseTopK is the number of chunks returned by a subject lookup.
const DefaultExpertiseTopK = 10

// AskOptions configures a question.
type AskOptions struct {
	// Subject restricts retrieval to chunks with this subject. Optional.
	Subject string

	// TopK is the number of chunks to retrieve (default: DefaultTopK).
	TopK int
}

// QueryResult is the answer to a question.
// The shape is identical for every tier so callers need not branch on it.
type QueryResult struct {
	// Answer holds the answer text. Under the degraded tier each entry is a
	// retrieved chunk; otherwise there is a single entry.
	Answer []string

	// Documents are the supporting records in rank order.
	Documents []ScoredRecord

	// Query echoes the question.
	Query string
}

// Acknowledgement returns the fixed answer given when no store is available.
func Acknowledgement(question string) string {
	return fmt.Sprintf("I understand your question: '%s'. Let me help you with this.", question)
}
