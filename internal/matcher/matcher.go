package matcher

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"clerk/internal/clients"
)

// Mode selects the search strategy.
type Mode int

const (
	// ModeAuto indexes once the client count reaches the index threshold.
	ModeAuto Mode = iota
	// ModeIndex always builds the shared automaton.
	ModeIndex
	// ModeScan searches client by client.
	ModeScan
)

// DefaultIndexThreshold is the smallest registry ModeAuto indexes.
const DefaultIndexThreshold = 2

func (m Mode) String() string {
	switch m {
	case ModeIndex:
		return "index"
	case ModeScan:
		return "scan"
	default:
		return "auto"
	}
}

// ParseMode maps a configuration value onto a Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return ModeAuto, nil
	case "index":
		return ModeIndex, nil
	case "scan":
		return ModeScan, nil
	default:
		return ModeAuto, fmt.Errorf("matcher mode %q: want auto, index, or scan", value)
	}
}

// Option configures a Matcher.
type Option func(*settings)

type settings struct {
	mode      Mode
	threshold int
}

// WithMode forces a strategy.
func WithMode(mode Mode) Option {
	return func(s *settings) { s.mode = mode }
}

// WithIndexThreshold sets the client count at which ModeAuto indexes.
func WithIndexThreshold(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.threshold = n
		}
	}
}

// annotation ties a pattern back to a client position and name role.
type annotation struct {
	client int
	role   clients.Role
}

// Matcher is immutable after New and safe for concurrent use.
type Matcher struct {
	clients []clients.Client
	mode    Mode

	index       *automaton
	annotations [][]annotation
}

// New prepares a matcher over list. The order of list is the tie-break
// order.
func New(list []clients.Client, opts ...Option) *Matcher {
	cfg := settings{mode: ModeAuto, threshold: DefaultIndexThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Matcher{clients: make([]clients.Client, len(list))}
	for i, c := range list {
		m.clients[i] = clients.New(c.First, c.Middle, c.Last)
	}

	m.mode = cfg.mode
	if m.mode == ModeAuto {
		m.mode = ModeScan
		if len(m.clients) >= cfg.threshold {
			m.mode = ModeIndex
		}
	}
	if m.mode == ModeIndex {
		m.buildIndex()
	}
	return m
}

func (m *Matcher) buildIndex() {
	m.index = newAutomaton()
	for pos, c := range m.clients {
		for _, role := range []clients.Role{clients.RoleFirst, clients.RoleMiddle, clients.RoleLast} {
			token := c.Token(role)
			if token == "" {
				continue
			}
			id := m.index.add(token)
			if id == len(m.annotations) {
				m.annotations = append(m.annotations, nil)
			}
			m.annotations[id] = append(m.annotations[id], annotation{client: pos, role: role})
		}
	}
	m.index.build()
}

// Mode reports the strategy in use, never ModeAuto.
func (m *Matcher) Mode() Mode {
	return m.mode
}

// Len returns the number of clients the matcher was built over.
func (m *Matcher) Len() int {
	return len(m.clients)
}

// FindMatch returns the first client, in registry order, whose first and
// last names both appear in text as whole words.
func (m *Matcher) FindMatch(text string) (clients.Client, bool) {
	if len(m.clients) == 0 || text == "" {
		return clients.Client{}, false
	}
	lowered := norm.NFC.String(strings.ToLower(text))
	var pos int
	if m.index != nil {
		pos = m.findIndexed(lowered)
	} else {
		pos = m.findScanned(lowered)
	}
	if pos < 0 {
		return clients.Client{}, false
	}
	return m.clients[pos], true
}

func (m *Matcher) findIndexed(text string) int {
	found := make([]clients.Role, len(m.clients))
	m.index.scan(text, func(end, pattern int) {
		start := end - m.index.patternLen(pattern)
		if !isWholeWord(text, start, end) {
			return
		}
		for _, a := range m.annotations[pattern] {
			found[a.client] |= a.role
		}
	})
	const required = clients.RoleFirst | clients.RoleLast
	for pos, roles := range found {
		if roles&required == required {
			return pos
		}
	}
	return -1
}

func (m *Matcher) findScanned(text string) int {
	for pos, c := range m.clients {
		if containsWord(text, c.First) && containsWord(text, c.Last) {
			return pos
		}
	}
	return -1
}

// containsWord reports whether token occurs in text with word boundaries on
// both sides. Every occurrence is tried, overlapping ones included.
func containsWord(text, token string) bool {
	if token == "" {
		return false
	}
	for offset := 0; offset <= len(text)-len(token); {
		idx := strings.Index(text[offset:], token)
		if idx < 0 {
			return false
		}
		start := offset + idx
		if isWholeWord(text, start, start+len(token)) {
			return true
		}
		offset = start + 1
	}
	return false
}

// isWholeWord checks that text[start:end] is not preceded or followed by a
// letter, digit or combining mark. Text edges, whitespace, punctuation and underscores all
// count as boundaries.
func isWholeWord(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
