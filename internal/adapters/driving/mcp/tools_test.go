package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/educhat/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and documents", func(t *testing.T) {
		tutor := &mockTutorService{result: &domain.QueryResult{
			Query:  "What is an acid?",
			Answer: []string{"A proton donor."},
			Documents: []domain.ScoredRecord{{
				IndexedRecord: domain.IndexedRecord{ID: "chem-1", Chunk: domain.Chunk{
					Content: "Acids donate protons.",
					Meta:    map[string]any{domain.MetaSubject: "Chemistry"},
				}},
				Score: 0.88,
			}},
		}}
		server := newTestServer(t, &Ports{Tutor: tutor})

		_, out, err := server.handleAsk(ctx, nil, AskInput{Question: "What is an acid?", Subject: "Chemistry", TopK: 2})

		require.NoError(t, err)
		assert.Equal(t, domain.AskOptions{Subject: "Chemistry", TopK: 2}, tutor.opts)
		assert.Equal(t, "full", out.Tier)
		assert.Equal(t, []string{"A proton donor."}, out.Answer)
		require.Len(t, out.Documents, 1)
		assert.Equal(t, "chem-1", out.Documents[0].ID)
		assert.Equal(t, 0.88, out.Documents[0].Score)
		assert.Equal(t, "Chemistry", out.Documents[0].Meta[domain.MetaSubject])
	})

	t.Run("returns error on failure", func(t *testing.T) {
		tutor := &mockTutorService{err: fmt.Errorf("retrieve: %w", domain.ErrQueryFailed)}
		server := newTestServer(t, &Ports{Tutor: tutor})

		_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "x"})

		assert.ErrorIs(t, err, domain.ErrQueryFailed)
	})
}

func TestServer_handleSubjectDocuments(t *testing.T) {
	tutor := &mockTutorService{records: []domain.ScoredRecord{
		{IndexedRecord: domain.IndexedRecord{ID: "m1"}, Score: 1},
		{IndexedRecord: domain.IndexedRecord{ID: "m2"}, Score: 1},
	}}
	server := newTestServer(t, &Ports{Tutor: tutor})

	_, out, err := server.handleSubjectDocuments(context.Background(), nil, SubjectInput{Subject: "Mathematics"})

	require.NoError(t, err)
	assert.Equal(t, "Mathematics", tutor.subject)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, "Mathematics", out.Subject)
	assert.NotNil(t, out.Documents)
}

func TestServer_handleIngestFile(t *testing.T) {
	ctx := context.Background()

	t.Run("ingests with default subject", func(t *testing.T) {
		ingest := &mockIngestService{chunks: 4}
		server := newTestServer(t, &Ports{Tutor: &mockTutorService{}, Ingest: ingest})

		_, out, err := server.handleIngestFile(ctx, nil, IngestInput{Path: "/tmp/course/lecture1.pdf", Topic: "Intro"})

		require.NoError(t, err)
		assert.Equal(t, IngestOutput{Filename: "lecture1.pdf", Subject: "general", Chunks: 4}, out)
		assert.Equal(t, "/tmp/course/lecture1.pdf", ingest.path)
		assert.Equal(t, "Intro", ingest.topic)
	})

	t.Run("extraction failure is returned", func(t *testing.T) {
		ingest := &mockIngestService{err: domain.ErrExtraction}
		server := newTestServer(t, &Ports{Tutor: &mockTutorService{}, Ingest: ingest})

		_, _, err := server.handleIngestFile(ctx, nil, IngestInput{Path: "scan.pdf", Subject: "Physics"})

		assert.ErrorIs(t, err, domain.ErrExtraction)
	})

	t.Run("no ingest service", func(t *testing.T) {
		server := newTestServer(t, &Ports{Tutor: &mockTutorService{}})

		_, _, err := server.handleIngestFile(ctx, nil, IngestInput{Path: "a.txt"})

		assert.True(t, errors.Is(err, ErrIngestUnavailable))
	})
}
