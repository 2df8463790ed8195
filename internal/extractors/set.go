package extractors

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
	"github.com/custodia-labs/educhat/internal/extractors/docx"
	"github.com/custodia-labs/educhat/internal/extractors/pdf"
	"github.com/custodia-labs/educhat/internal/extractors/plaintext"
	"github.com/custodia-labs/educhat/internal/extractors/pptx"
	"github.com/custodia-labs/educhat/internal/logger"
)

// Ensure Set implements the interface.
var _ driven.ExtractorSet = (*Set)(nil)

// Set selects an extractor for a file by its extension.
type Set struct {
	byExt map[string]driven.Extractor
}

// NewSet creates a set from the given extractors.
// Later extractors win when two claim the same extension.
func NewSet(extractors ...driven.Extractor) *Set {
	s := &Set{byExt: make(map[string]driven.Extractor)}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			s.byExt[strings.ToLower(ext)] = e
		}
	}
	return s
}

// NewDefaultSet creates a set handling .txt, .pdf, .docx and .pptx.
func NewDefaultSet() *Set {
	return NewSet(plaintext.New(), pdf.New(), docx.New(), pptx.New())
}

// Extensions returns the supported extensions in sorted order.
func (s *Set) Extensions() []string {
	exts := make([]string, 0, len(s.byExt))
	for ext := range s.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports returns true if the file's extension has an extractor.
func (s *Set) Supports(path string) bool {
	_, ok := s.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ExtractFile extracts the file at path and labels it with subject.
// It returns zero documents if the extension is unsupported (logged as a
// warning) or extraction fails (logged as an error). It never panics.
func (s *Set) ExtractFile(ctx context.Context, path, subject string) []domain.RawDocument {
	if subject == "" {
		subject = domain.DefaultSubject
	}

	ext := strings.ToLower(filepath.Ext(path))
	extractor, ok := s.byExt[ext]
	if !ok {
		logger.Warn("skipping %s: %v %q", path, domain.ErrUnsupportedType, ext)
		return nil
	}

	doc, err := safeExtract(ctx, extractor, path)
	if err != nil {
		logger.Error("error processing %s file %s: %v", extractor.Format(), path, err)
		return nil
	}

	doc.Subject = subject
	logger.Debug("extracted %d characters from %s", len(doc.Content), path)
	return []domain.RawDocument{*doc}
}

// safeExtract runs the extractor, converting a parser panic into an error.
func safeExtract(ctx context.Context, e driven.Extractor, path string) (doc *domain.RawDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: parser panic: %v", domain.ErrExtraction, r)
		}
	}()

	doc, err = e.Extract(ctx, path)
	if err == nil && doc == nil {
		err = fmt.Errorf("%w: extractor returned no document", domain.ErrExtraction)
	}
	return doc, err
}
