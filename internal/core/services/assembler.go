package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
	"github.com/custodia-labs/educhat/internal/logger"
)

// samplePassage is one built-in seed passage.
type samplePassage struct {
	subject string
	topic   string
	content string
}

var samplePassages = []samplePassage{
	{
		subject: "Mathematics",
		topic:   "Algebra Basics",
		content: `Algebra is a branch of mathematics that deals with symbols and the rules for manipulating these symbols.
In elementary algebra, those symbols (today written as Latin and Greek letters) represent quantities without fixed values, known as variables.
The rules of algebra are used to solve equations and find the values of these variables.

Key concepts in algebra include:
- Variables and constants
- Expressions and equations
- Linear equations
- Quadratic equations
- Systems of equations`,
	},
	{
		subject: "Physics",
		topic:   "Introduction to Physics",
		content: `Physics is the natural science that studies matter, its motion and behavior through space and time, and the related entities of energy and force.
Physics is one of the most fundamental scientific disciplines, and its main goal is to understand how the universe behaves.

Main branches of physics:
- Classical mechanics
- Thermodynamics
- Electromagnetism
- Quantum mechanics
- Relativity`,
	},
	{
		subject: "Chemistry",
		topic:   "Chemistry Fundamentals",
		content: `Chemistry is the scientific discipline involved with elements and compounds composed of atoms, molecules and ions:
their composition, structure, properties, behavior and the changes they undergo during a reaction with other substances.

Core areas of chemistry:
- Organic chemistry
- Inorganic chemistry
- Physical chemistry
- Biochemistry
- Analytical chemistry`,
	},
}

// Assembler turns files into chunks carrying provenance metadata.
// It is stateless beyond its collaborators and safe for concurrent use.
type Assembler struct {
	extractors driven.ExtractorSet
	pipeline   driven.PostProcessorPipeline
}

// NewAssembler creates an assembler from an extractor set and a chunking pipeline.
func NewAssembler(extractors driven.ExtractorSet, pipeline driven.PostProcessorPipeline) *Assembler {
	return &Assembler{
		extractors: extractors,
		pipeline:   pipeline,
	}
}

// ProcessFile extracts and chunks one file.
// Failures are logged and produce no chunks.
func (a *Assembler) ProcessFile(ctx context.Context, path, subject string) []domain.Chunk {
	return a.ProcessFileWithTopic(ctx, path, subject, "")
}

// ProcessFileWithTopic is ProcessFile with an optional topic label.
func (a *Assembler) ProcessFileWithTopic(ctx context.Context, path, subject, topic string) []domain.Chunk {
	var chunks []domain.Chunk
	for _, raw := range a.extractors.ExtractFile(ctx, path, subject) {
		raw.Metadata = provenance(&raw, topic)
		out, err := a.pipeline.Process(ctx, &raw)
		if err != nil {
			logger.Error("chunking %s: %v", path, err)
			continue
		}
		chunks = append(chunks, out...)
	}
	logger.Debug("%s: %d chunks", path, len(chunks))
	return chunks
}

// ProcessDirectory processes every regular file directly inside dir.
// A file that fails is skipped; only an unreadable directory is an error.
func (a *Assembler) ProcessDirectory(ctx context.Context, dir, subject string) ([]domain.Chunk, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var chunks []domain.Chunk
	files := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return chunks, err
		}
		files++
		chunks = append(chunks, a.ProcessFile(ctx, filepath.Join(dir, entry.Name()), subject)...)
	}

	logger.Info("Processed %d chunks from %d files in %s", len(chunks), files, dir)
	return chunks, nil
}

// SampleContent returns the built-in passages chunked like any other document.
func (a *Assembler) SampleContent(ctx context.Context) []domain.Chunk {
	var chunks []domain.Chunk
	for _, p := range samplePassages {
		raw := domain.RawDocument{
			Content: p.content,
			Format:  domain.FormatSample,
			Subject: p.subject,
			Metadata: map[string]any{
				domain.MetaSource:  domain.SampleSource,
				domain.MetaSubject: p.subject,
				domain.MetaTopic:   p.topic,
				domain.MetaType:    domain.FormatSample.String(),
			},
		}
		out, err := a.pipeline.Process(ctx, &raw)
		if err != nil {
			logger.Error("chunking sample %q: %v", p.topic, err)
			continue
		}
		chunks = append(chunks, out...)
	}
	return chunks
}

// provenance builds the metadata attached to every chunk of an extracted file.
func provenance(raw *domain.RawDocument, topic string) map[string]any {
	meta := domain.CopyMetadata(raw.Metadata)
	meta[domain.MetaSource] = raw.SourcePath
	meta[domain.MetaSubject] = raw.Subject
	meta[domain.MetaType] = raw.Format.String()
	meta[domain.MetaFilename] = filepath.Base(raw.SourcePath)

	switch raw.Format {
	case domain.FormatPDF:
		meta[domain.MetaPages] = raw.PageCount
	case domain.FormatPPTX:
		meta[domain.MetaSlides] = raw.SlideCount
	}
	if topic != "" {
		meta[domain.MetaTopic] = topic
	}
	return meta
}
