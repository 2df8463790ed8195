// Package httpapi serves the tutor over HTTP. Routes are registered on a
// gorilla/mux router and wrapped in a negroni middleware chain providing
// panic recovery, request logging, CORS and per-client rate limiting.
package httpapi

import "errors"

// ErrMissingTutorService is returned when the tutor service is not provided.
var ErrMissingTutorService = errors.New("httpapi: tutor service is required")
