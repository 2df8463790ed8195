package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for educhat resources.
const uriScheme = "educhat://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Active pipeline tier, bootstrap transitions and warnings",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "subjects/{subject}/documents",
		Name:        "subject-documents",
		Description: "Stored chunks tagged with a subject",
		MIMEType:    "application/json",
	}, s.handleSubjectResource)
}

type statusInfo struct {
	Tier        string           `json:"tier"`
	Description string           `json:"description"`
	Records     int              `json:"records"`
	Transitions []transitionInfo `json:"transitions"`
	Warnings    []string         `json:"warnings"`
}

type transitionInfo struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Tier   string `json:"tier,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// handleStatusResource reports the bootstrap outcome. Without a status
// port only the tutor's tier is known.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tier := s.ports.Tutor.Tier()
	info := statusInfo{
		Tier:        tier.String(),
		Description: tier.Description(),
		Transitions: []transitionInfo{},
		Warnings:    []string{},
	}

	if st := s.ports.Status; st != nil {
		count, err := st.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting records: %w", err)
		}
		info.Records = count
		for _, t := range st.Transitions() {
			info.Transitions = append(info.Transitions, transitionInfo{
				From:   string(t.From),
				To:     string(t.To),
				Tier:   string(t.Tier),
				Reason: t.Reason,
			})
		}
		if w := st.Warnings(); w != nil {
			info.Warnings = w
		}
	}

	return jsonResult(req.Params.URI, info)
}

// handleSubjectResource returns the chunks stored for the subject in the URI.
func (s *Server) handleSubjectResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	subject := extractSubject(req.Params.URI)
	if subject == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	records, err := s.ports.Tutor.SubjectExpertise(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("listing subject documents: %w", err)
	}

	return jsonResult(req.Params.URI, toDocumentInfos(records))
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSubject extracts the subject from educhat://subjects/{subject}/documents.
// The subject may be percent-encoded.
func extractSubject(uri string) string {
	const prefix = uriScheme + "subjects/"
	const suffix = "/documents"

	if len(uri) <= len(prefix)+len(suffix) ||
		!strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}

	raw := uri[len(prefix) : len(uri)-len(suffix)]
	subject, err := url.PathUnescape(raw)
	if err != nil || strings.Contains(subject, "/") {
		return ""
	}
	return subject
}
