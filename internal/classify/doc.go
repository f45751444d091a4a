// Package classify decides which client a document belongs to and places
// it in that client's folder.
//
// A filename match wins over a content match. Destination names are
// resolved through a ledger shared by every worker of a run so two files
// with the same name never claim the same slot; in real runs each slot is
// also claimed on disk with an exclusive create.
package classify
