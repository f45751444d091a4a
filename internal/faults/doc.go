// Package faults defines the error markers shared by the classification
// pipeline and the Wrap helper that attaches stage context to them.
//
// Markers separate failures that stop a run before it starts (configuration)
// from failures that are isolated to a single file (file operations,
// extraction). Callers classify with errors.Is against the exported markers.
package faults
