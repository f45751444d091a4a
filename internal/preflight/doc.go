// Package preflight checks the filesystem before an organize run touches
// any file.
//
// The CLI runs RunAll before organize and watch. A failed check is a
// configuration error: the run is refused rather than failing file by file.
package preflight
