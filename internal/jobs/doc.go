// Package jobs defines the job record and the in-memory registry that tracks
// every submission through its lifecycle.
//
// A job moves through exactly one transition: processing to completed, or
// processing to failed. Both terminal states are final. The registry guards
// all mutations with a single lock and hands out copies on read, so status
// pollers never observe a partially updated record.
//
// The registry is deliberately volatile: there is no durable store behind it,
// and a process restart forgets all jobs. Workspace directories on disk are
// the only state that survives.
package jobs
