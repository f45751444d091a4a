// Package logging builds the slog loggers used by clerk.
//
// Console output uses a compact human format; the on-disk log and the
// failure log are JSON. Context helpers tag lines with the run ID and the
// file being classified so a single run can be followed through the log.
package logging
