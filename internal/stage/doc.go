// Package stage declares the contract between the pipeline executor and the
// three external processing tools.
//
// Stages are opaque, swappable units of work: each handler receives a fixed
// set of named path/string arguments, executes the configured tool, and checks
// its declared output postcondition. Swapping a subprocess for an in-process
// call or a remote service only requires a new Handler implementation; the
// executor never changes.
package stage
