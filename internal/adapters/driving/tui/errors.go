package tui

import "errors"

// ErrMissingTutorService is returned when the tutor service is not provided.
var ErrMissingTutorService = errors.New("tui: tutor service is required")
