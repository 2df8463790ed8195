// Package services implements the driving port interfaces.
// Services hold the tutor's core logic: document assembly, pipeline
// bootstrap, retrieval and answer generation. They orchestrate calls to
// driven ports and never import adapters.
package services
