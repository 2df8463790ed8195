package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/logger"
)

// ServiceName is reported by /health.
const ServiceName = "AI Tutor API"

// DocumentJSON is a retrieved record on the wire.
type DocumentJSON struct {
	ID      string         `json:"id"`
	Content string         `json:"content"`
	Score   float64        `json:"score"`
	Meta    map[string]any `json:"meta"`
}

// ChatRequest is the JSON form of a /chat request.
type ChatRequest struct {
	Question string `json:"question"`
	Subject  string `json:"subject,omitempty"`
	TutorID  string `json:"tutor_id,omitempty"`
	TopK     int    `json:"top_k,omitempty"`
}

// ChatResponse is the body of a successful /chat request.
type ChatResponse struct {
	Success   bool           `json:"success"`
	Question  string         `json:"question"`
	Answer    []string       `json:"answer"`
	Documents []DocumentJSON `json:"documents"`
	Subject   *string        `json:"subject"`
	TutorID   *string        `json:"tutor_id"`
}

// UploadResponse is the body of a successful /upload-document request.
type UploadResponse struct {
	Success       bool    `json:"success"`
	Message       string  `json:"message"`
	DocumentCount int     `json:"document_count"`
	Subject       string  `json:"subject"`
	Topic         *string `json:"topic"`
}

// StatusResponse is the body of /status.
type StatusResponse struct {
	Tier        string           `json:"tier"`
	Description string           `json:"description"`
	Records     int              `json:"records"`
	Warnings    []string         `json:"warnings"`
	Transitions []TransitionJSON `json:"transitions"`
}

// TransitionJSON is one bootstrap step on the wire.
type TransitionJSON struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Tier   string `json:"tier,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "EduChat AI Tutor API is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
		"tier":    s.ports.Tutor.Tier().String(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.ports.Status
	if status == nil {
		writeError(w, http.StatusServiceUnavailable, "status is not available")
		return
	}

	records, err := status.Count(r.Context())
	if err != nil {
		logger.Warn("Counting records: %v", err)
	}

	resp := StatusResponse{
		Tier:        status.Tier().String(),
		Description: status.Tier().Description(),
		Records:     records,
		Warnings:    status.Warnings(),
		Transitions: []TransitionJSON{},
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	for _, t := range status.Transitions() {
		resp.Transitions = append(resp.Transitions, TransitionJSON{
			From:   string(t.From),
			To:     string(t.To),
			Tier:   string(t.Tier),
			Reason: t.Reason,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := s.readChatRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "Question cannot be empty")
		return
	}

	result, err := s.ports.Tutor.Ask(r.Context(), req.Question, domain.AskOptions{
		Subject: req.Subject,
		TopK:    req.TopK,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Question cannot be empty")
		return
	case err != nil:
		logger.Error("Chat failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Success:   true,
		Question:  req.Question,
		Answer:    result.Answer,
		Documents: toDocuments(result.Documents),
		Subject:   optional(req.Subject),
		TutorID:   optional(req.TutorID),
	})
}

// readChatRequest accepts a JSON body or form fields.
func (s *Server) readChatRequest(w http.ResponseWriter, r *http.Request) (ChatRequest, error) {
	var req ChatRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		body := http.MaxBytesReader(w, r.Body, 1<<20)
		if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return req, errors.New("invalid JSON body")
		}
		return req, nil
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return req, errors.New("invalid form body")
		}
	} else if err := r.ParseForm(); err != nil {
		return req, errors.New("invalid form body")
	}

	req.Question = r.FormValue("question")
	req.Subject = r.FormValue("subject")
	req.TutorID = r.FormValue("tutor_id")
	return req, nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.ports.Ingest == nil {
		writeError(w, http.StatusServiceUnavailable, "document upload is not available")
		return
	}

	if r.ContentLength > s.cfg.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "expected a multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp files only

	subject := strings.TrimSpace(r.FormValue("subject"))
	if subject == "" {
		writeError(w, http.StatusUnprocessableEntity, "subject is required")
		return
	}
	topic := strings.TrimSpace(r.FormValue("topic"))

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	path, cleanup, err := saveUpload(file, header.Filename)
	if err != nil {
		logger.Error("Saving upload %s: %v", header.Filename, err)
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	defer cleanup()

	n, err := s.ports.Ingest.IngestFile(r.Context(), path, subject, topic)
	switch {
	case errors.Is(err, domain.ErrExtraction):
		writeError(w, http.StatusBadRequest, "Failed to process document")
		return
	case err != nil:
		logger.Error("Uploading %s: %v", header.Filename, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success:       true,
		Message:       "Document processed and added successfully",
		DocumentCount: n,
		Subject:       subject,
		Topic:         optional(topic),
	})
}

// saveUpload copies src into a private temp directory under its original
// base name, so the extension picks the extractor and the filename
// metadata matches what the student uploaded.
func saveUpload(src io.Reader, filename string) (string, func(), error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		name = "upload"
	}

	dir, err := os.MkdirTemp("", "educhat-upload-")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("Removing %s: %v", dir, err)
		}
	}

	path := filepath.Join(dir, name)
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		cleanup()
		return "", nil, err
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func (s *Server) handleSubjectDocuments(w http.ResponseWriter, r *http.Request) {
	subject := mux.Vars(r)["subject"]

	docs, err := s.ports.Tutor.SubjectExpertise(r.Context(), subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subject":   subject,
		"documents": toDocuments(docs),
	})
}

func toDocuments(records []domain.ScoredRecord) []DocumentJSON {
	docs := make([]DocumentJSON, 0, len(records))
	for _, r := range records {
		meta := r.Meta
		if meta == nil {
			meta = map[string]any{}
		}
		docs = append(docs, DocumentJSON{
			ID:      r.ID,
			Content: r.Content,
			Score:   r.Score,
			Meta:    meta,
		})
	}
	return docs
}

// optional maps "" to a JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
