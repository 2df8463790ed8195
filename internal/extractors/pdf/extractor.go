// Package pdf extracts per-page text from PDF files using ledongthuc/pdf.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
	"github.com/custodia-labs/educhat/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Format returns the format tag for PDF.
func (e *Extractor) Format() domain.Format {
	return domain.FormatPDF
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract returns the text of every page in order, one page per line group.
// A page whose content stream cannot be decoded contributes empty text; a file
// that cannot be opened as a PDF fails with domain.ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, path string) (doc *domain.RawDocument, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: malformed pdf: %v", domain.ErrExtraction, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %v", domain.ErrExtraction, err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, pageText(reader, i, path))
	}

	return &domain.RawDocument{
		Content:    strings.Join(pages, "\n"),
		SourcePath: path,
		Format:     domain.FormatPDF,
		PageCount:  total,
		Pages:      pages,
	}, nil
}

func pageText(reader *pdf.Reader, num int, path string) string {
	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		logger.Debug("pdf %s: page %d unreadable: %v", path, num, err)
		return ""
	}
	return strings.TrimSpace(text)
}
