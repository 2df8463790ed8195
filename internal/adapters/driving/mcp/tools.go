package mcp

import (
	"context"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/educhat/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the student's question"`
	Subject  string `json:"subject,omitempty" jsonschema:"only retrieve material tagged with this subject"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Question  string         `json:"question"`
	Tier      string         `json:"tier"`
	Answer    []string       `json:"answer"`
	Documents []DocumentInfo `json:"documents"`
}

// DocumentInfo is one stored chunk.
type DocumentInfo struct {
	ID      string         `json:"id"`
	Content string         `json:"content"`
	Score   float64        `json:"score"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// SubjectInput is the input schema for the subject_documents tool.
type SubjectInput struct {
	Subject string `json:"subject" jsonschema:"subject label, e.g. Physics"`
}

// SubjectOutput is the output schema for the subject_documents tool.
type SubjectOutput struct {
	Subject   string         `json:"subject"`
	Documents []DocumentInfo `json:"documents"`
	Count     int            `json:"count"`
}

// IngestInput is the input schema for the ingest_file tool.
type IngestInput struct {
	Path    string `json:"path" jsonschema:"absolute path of a .txt, .pdf, .docx or .pptx file"`
	Subject string `json:"subject,omitempty" jsonschema:"subject label (default general)"`
	Topic   string `json:"topic,omitempty" jsonschema:"optional topic label"`
}

// IngestOutput is the output schema for the ingest_file tool.
type IngestOutput struct {
	Filename string `json:"filename"`
	Subject  string `json:"subject"`
	Chunks   int    `json:"chunks"`
}

// defaultSubject tags files ingested without a subject.
const defaultSubject = "general"

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask the tutor a question answered from the ingested course material",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "subject_documents",
		Description: "List the stored chunks tagged with a subject",
	}, s.handleSubjectDocuments)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_file",
			Description: "Extract, chunk and store a document so the tutor can answer from it",
		}, s.handleIngestFile)
	}
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result, err := s.ports.Tutor.Ask(ctx, input.Question, domain.AskOptions{
		Subject: input.Subject,
		TopK:    input.TopK,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Question:  result.Query,
		Tier:      s.ports.Tutor.Tier().String(),
		Answer:    result.Answer,
		Documents: toDocumentInfos(result.Documents),
	}, nil
}

func (s *Server) handleSubjectDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SubjectInput,
) (*mcp.CallToolResult, SubjectOutput, error) {
	records, err := s.ports.Tutor.SubjectExpertise(ctx, input.Subject)
	if err != nil {
		return nil, SubjectOutput{}, err
	}

	return nil, SubjectOutput{
		Subject:   input.Subject,
		Documents: toDocumentInfos(records),
		Count:     len(records),
	}, nil
}

func (s *Server) handleIngestFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, ErrIngestUnavailable
	}

	subject := input.Subject
	if subject == "" {
		subject = defaultSubject
	}

	n, err := s.ports.Ingest.IngestFile(ctx, input.Path, subject, input.Topic)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		Filename: filepath.Base(input.Path),
		Subject:  subject,
		Chunks:   n,
	}, nil
}

func toDocumentInfos(records []domain.ScoredRecord) []DocumentInfo {
	out := make([]DocumentInfo, len(records))
	for i := range records {
		out[i] = DocumentInfo{
			ID:      records[i].ID,
			Content: records[i].Content,
			Score:   records[i].Score,
			Meta:    records[i].Meta,
		}
	}
	return out
}
