// Package matcher decides which registered client a block of text belongs
// to. A client matches when both its first and last name occur as whole
// words; the first qualifying client in registry order wins.
//
// Two strategies share those semantics. The index strategy compiles every
// name token into one Aho-Corasick automaton and scans the text once. The
// scan strategy searches each client's tokens in turn and is used for very
// small registries. Both must return the same client for every input.
package matcher
