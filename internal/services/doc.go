// Package services defines shared utilities consumed by the pipeline stage
// handlers and the HTTP surface.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (validation vs external-tool vs empty-output) consistently.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
