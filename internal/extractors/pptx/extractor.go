// Package pptx extracts slide text from PowerPoint presentations.
package pptx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
	"github.com/custodia-labs/educhat/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const (
	presentationPart = "ppt/presentation.xml"
	relsPart         = "ppt/_rels/presentation.xml.rels"
)

var slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Extractor handles PPTX presentations.
type Extractor struct{}

// New creates a new PPTX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Format returns the format tag for PowerPoint.
func (e *Extractor) Format() domain.Format {
	return domain.FormatPPTX
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pptx"}
}

// Extract returns the text of every slide in presentation order.
// Each slide contributes the text of its text-bearing shapes, one per line.
func (e *Extractor) Extract(ctx context.Context, filePath string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open pptx: %v", domain.ErrExtraction, err)
	}
	defer reader.Close()

	files := make(map[string]*zip.File, len(reader.File))
	for _, f := range reader.File {
		files[f.Name] = f
	}

	order := slideOrder(files)
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: presentation has no slides", domain.ErrExtraction)
	}

	slides := make([]string, 0, len(order))
	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := readFile(files[name])
		if err != nil {
			return nil, err
		}
		shapes, err := parseSlide(data)
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrExtraction, name, err)
		}
		slides = append(slides, slideText(shapes))
	}

	return &domain.RawDocument{
		Content:    strings.Join(slides, "\n"),
		SourcePath: filePath,
		Format:     domain.FormatPPTX,
		SlideCount: len(slides),
		Pages:      slides,
	}, nil
}

// slideOrder returns slide part names in presentation order. The order comes
// from the presentation's slide list; when that cannot be read, slides are
// ordered by the number in their part name.
func slideOrder(files map[string]*zip.File) []string {
	if order, err := listedSlides(files); err == nil && len(order) > 0 {
		return order
	} else if err != nil {
		logger.Debug("pptx: falling back to numeric slide order: %v", err)
	}

	type numbered struct {
		name string
		num  int
	}
	var found []numbered
	for name := range files {
		m := slidePart.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, numbered{name: name, num: n})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].num < found[j].num })

	order := make([]string, len(found))
	for i, f := range found {
		order[i] = f.name
	}
	return order
}

type presentationXML struct {
	SlideIDs []struct {
		RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

type relationshipsXML struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// listedSlides resolves the slide list in presentation.xml through its relationships.
func listedSlides(files map[string]*zip.File) ([]string, error) {
	presData, err := readFile(files[presentationPart])
	if err != nil {
		return nil, err
	}
	relsData, err := readFile(files[relsPart])
	if err != nil {
		return nil, err
	}

	var pres presentationXML
	if err := xml.Unmarshal(presData, &pres); err != nil {
		return nil, err
	}
	var rels relationshipsXML
	if err := xml.Unmarshal(relsData, &rels); err != nil {
		return nil, err
	}

	targets := make(map[string]string, len(rels.Relationships))
	for _, r := range rels.Relationships {
		targets[r.ID] = resolveTarget(r.Target)
	}

	order := make([]string, 0, len(pres.SlideIDs))
	for _, id := range pres.SlideIDs {
		name, ok := targets[id.RelID]
		if !ok {
			return nil, fmt.Errorf("slide relationship %q not found", id.RelID)
		}
		if _, ok := files[name]; !ok {
			return nil, fmt.Errorf("slide part %q missing", name)
		}
		order = append(order, name)
	}
	return order, nil
}

// resolveTarget converts a relationship target relative to ppt/ into a part name.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join("ppt", target)
}

func readFile(f *zip.File) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: missing archive member", domain.ErrExtraction)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrExtraction, f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrExtraction, f.Name, err)
	}
	return data, nil
}
