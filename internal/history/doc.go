// Package history keeps a SQLite record of organize runs and the outcome of
// every file in them.
//
// Store implements organize.ResultSink and organize.RunRecorder so a Runner
// can write to it directly. The database lives in the state directory and is
// opened in WAL mode; writes retry briefly when another process holds the
// database lock.
package history
