// Package docx extracts paragraph text from Word documents.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const documentPart = "word/document.xml"

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Format returns the format tag for Word documents.
func (e *Extractor) Format() domain.Format {
	return domain.FormatDOCX
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".docx"}
}

// Extract returns the body paragraphs joined by newlines.
// Tables, headers and footers are not part of the body paragraph list.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open docx: %v", domain.ErrExtraction, err)
	}
	defer reader.Close()

	data, err := readPart(&reader.Reader, documentPart)
	if err != nil {
		return nil, err
	}

	paragraphs, err := parseParagraphs(data)
	if err != nil {
		return nil, err
	}

	return &domain.RawDocument{
		Content:    strings.Join(paragraphs, "\n"),
		SourcePath: path,
		Format:     domain.FormatDOCX,
	}, nil
}

// readPart returns the bytes of the named archive member.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", domain.ErrExtraction, name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrExtraction, name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: missing %s", domain.ErrExtraction, name)
}

// documentXML is the subset of word/document.xml needed for text.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

// paragraph is the text of one w:p. Runs are read wherever they sit, so text
// inside hyperlinks, insertions, smart tags and simple fields is kept.
type paragraph struct {
	Text string
}

// skippedParts hold no body text: formatting properties (whose w:tab elements
// are tab stops) and text boxes, which are paragraphs of their own.
var skippedParts = map[string]bool{
	"pPr":         true,
	"rPr":         true,
	"txbxContent": true,
}

// UnmarshalXML collects w:t text, w:tab and w:br/w:cr in document order.
func (p *paragraph) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	var (
		b      strings.Builder
		depth  int
		skip   int
		inText bool
	)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if skip > 0 {
				skip++
				continue
			}
			switch name := t.Name.Local; {
			case skippedParts[name]:
				skip = 1
			case name == "t":
				inText = true
			case name == "tab":
				b.WriteString("\t")
			case name == "br" || name == "cr":
				b.WriteString("\n")
			}

		case xml.EndElement:
			if depth == 0 {
				p.Text = b.String()
				return nil
			}
			depth--
			if skip > 0 {
				skip--
				continue
			}
			if t.Name.Local == "t" {
				inText = false
			}

		case xml.CharData:
			if inText && skip == 0 {
				b.Write(t)
			}
		}
	}
}

// parseParagraphs returns the text of every body paragraph, in order.
func parseParagraphs(content []byte) ([]string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrExtraction, documentPart, err)
	}

	paragraphs := make([]string, 0, len(doc.Body.Paragraphs))
	for _, para := range doc.Body.Paragraphs {
		paragraphs = append(paragraphs, para.Text)
	}
	return paragraphs, nil
}
