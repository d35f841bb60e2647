// Package scheduler accepts video uploads and dispatches background
// pipeline runs with bounded concurrency.
package scheduler
