// Package pipeline sequences the per-job processing stages and records
// their outcome on the job registry.
package pipeline
