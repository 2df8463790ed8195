// Package mcp provides an MCP (Model Context Protocol) server adapter for educhat.
// It lets AI assistants ask the tutor, browse a subject's material and ingest files.
package mcp

import "errors"

// ErrMissingTutorService is returned when the tutor service is not provided.
var ErrMissingTutorService = errors.New("mcp: tutor service is required")

// ErrIngestUnavailable is returned by ingest_file when no ingest service is wired.
var ErrIngestUnavailable = errors.New("mcp: ingest is not available")
