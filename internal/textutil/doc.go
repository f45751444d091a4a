// Package textutil provides filename helpers shared by the registry and the
// classifier.
//
// Folder names are derived from client names typed by people, so they may
// carry characters that are unsafe on common filesystems. SanitizeFileName
// maps those to safe alternatives; SplitName separates a filename into the
// stem that is searched for client names and the extension that is preserved
// when a destination name needs a numeric suffix.
package textutil
