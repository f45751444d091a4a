// Package main hosts the clerk CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, then hands each
// subcommand a loaded config, the client registry and a logger. Organizing,
// watching and classifying share one pipeline builder so the three paths
// match and place documents identically; the commands here only parse
// flags and render results.
package main
