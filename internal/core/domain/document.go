package domain

import "time"

// Provenance metadata keys attached to every chunk.
const (
	MetaSource   = "source"
	MetaSubject  = "subject"
	MetaType     = "type"
	MetaFilename = "filename"
	MetaPages    = "pages"
	MetaSlides   = "slides"
	MetaTopic    = "topic"
)

// SampleSource is the MetaSource value of the built-in seed passages.
const SampleSource = "sample_content"

// Chunk is a bounded word-window segment of a document's text.
type Chunk struct {
	// Content is the text of this chunk.
	Content string

	// Position is the ordinal position within the parent document.
	Position int

	// Meta holds the provenance fields copied from the parent document.
	Meta map[string]any
}

// Subject returns the chunk's subject label, or "" if none is set.
func (c Chunk) Subject() string {
	s, _ := c.Meta[MetaSubject].(string)
	return s
}

// CloneMeta returns a shallow copy of the chunk metadata.
func (c Chunk) CloneMeta() map[string]any {
	return CopyMetadata(c.Meta)
}

// IndexedRecord is a chunk written to a document store.
// Records are never mutated; re-ingestion appends new records.
type IndexedRecord struct {
	// ID is the stable identifier assigned at write time.
	ID string

	// Chunk is the stored content and metadata.
	Chunk

	// CreatedAt is when the record was written.
	CreatedAt time.Time
}

// ScoredRecord is a record returned by a similarity search.
type ScoredRecord struct {
	IndexedRecord

	// Score is the similarity to the query (higher is closer).
	Score float64
}

// Filter restricts a similarity search by metadata.
// The zero value matches every record.
type Filter struct {
	// Subject matches records whose subject metadata equals this value.
	Subject string
}

// IsEmpty returns true if the filter matches everything.
func (f Filter) IsEmpty() bool {
	return f.Subject == ""
}

// Matches reports whether the metadata satisfies the filter.
func (f Filter) Matches(meta map[string]any) bool {
	if f.Subject == "" {
		return true
	}
	s, _ := meta[MetaSubject].(string)
	return s == f.Subject
}

// CopyMetadata creates a shallow copy of metadata.
func CopyMetadata(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
