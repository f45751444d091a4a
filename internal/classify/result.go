package classify

import (
	"path/filepath"

	"clerk/internal/clients"
)

// Kind is the outcome of classifying one file.
type Kind int

const (
	KindNoMatch Kind = iota
	KindFilename
	KindContent
	KindError
	KindCancelled
)

// Kinds lists every outcome in reporting order.
var Kinds = []Kind{KindFilename, KindContent, KindNoMatch, KindError, KindCancelled}

func (k Kind) String() string {
	switch k {
	case KindFilename:
		return "FILENAME"
	case KindContent:
		return "CONTENT"
	case KindError:
		return "ERROR"
	case KindCancelled:
		return "CANCELLED"
	default:
		return "NO_MATCH"
	}
}

// Matched reports whether the kind names a client.
func (k Kind) Matched() bool {
	return k == KindFilename || k == KindContent
}

// Result describes what happened to one source file.
type Result struct {
	Kind        Kind
	Client      clients.Client
	Source      string
	Destination string
	Folder      string
	Err         error
}

// Name returns the source file name.
func (r Result) Name() string {
	return filepath.Base(r.Source)
}

// DestinationName returns the file name the source was placed under, or ""
// when it was not placed.
func (r Result) DestinationName() string {
	if r.Destination == "" {
		return ""
	}
	return filepath.Base(r.Destination)
}
