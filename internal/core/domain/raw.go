package domain

// Format tags the kind of file a document was extracted from.
// The tag is stored under MetaType on every chunk.
type Format string

// Supported formats.
const (
	FormatText   Format = "text"
	FormatPDF    Format = "pdf"
	FormatDOCX   Format = "docx"
	FormatPPTX   Format = "pptx"
	FormatSample Format = "sample"
)

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

// DefaultSubject is used when the caller supplies no subject label.
const DefaultSubject = "General"

// RawDocument is the text extracted from one input file.
// It is produced once per file and not modified after extraction.
type RawDocument struct {
	// Content is the full extracted text.
	Content string

	// SourcePath is the file the text came from.
	SourcePath string

	// Format is the extractor that produced the document.
	Format Format

	// Subject is the caller-supplied subject label.
	Subject string

	// PageCount is the number of pages (PDF only).
	PageCount int

	// SlideCount is the number of slides (PPTX only).
	SlideCount int

	// Pages holds the text of each page or slide in order.
	// Empty for formats without page boundaries.
	Pages []string

	// Metadata is copied onto every chunk produced from this document.
	Metadata map[string]any
}

// IsPaged reports whether the document has page boundaries the chunker can use.
func (d *RawDocument) IsPaged() bool {
	return len(d.Pages) > 1
}
