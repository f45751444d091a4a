package clients

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrInvalidFormat rejects names that are not two or three tokens.
	ErrInvalidFormat = errors.New("invalid client name format")
	// ErrDuplicate rejects a client already present in the registry.
	ErrDuplicate = errors.New("client already registered")
)

// Role identifies which part of a client's name a token represents.
type Role uint8

const (
	RoleFirst Role = 1 << iota
	RoleMiddle
	RoleLast
)

func (r Role) String() string {
	switch r {
	case RoleFirst:
		return "first"
	case RoleMiddle:
		return "middle"
	case RoleLast:
		return "last"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Client is a registered person. Tokens are lowercase; Middle may be empty.
// Client is comparable, so two clients with the same tokens are the same
// client and can be used as map keys.
type Client struct {
	First  string
	Middle string
	Last   string
}

// New builds a client from its tokens, lowercasing each and composing it to
// NFC so names typed or imported in decomposed form compare equal.
func New(first, middle, last string) Client {
	return Client{
		First:  normalizeToken(first),
		Middle: normalizeToken(middle),
		Last:   normalizeToken(last),
	}
}

func normalizeToken(token string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(token)))
}

// Parse splits raw on whitespace: two tokens are first and last, three are
// first, middle and last.
func Parse(raw string) (Client, error) {
	fields := strings.Fields(raw)
	switch len(fields) {
	case 2:
		return New(fields[0], "", fields[1]), nil
	case 3:
		return New(fields[0], fields[1], fields[2]), nil
	default:
		return Client{}, fmt.Errorf("%w: %q has %d name parts, want 2 or 3", ErrInvalidFormat, strings.TrimSpace(raw), len(fields))
	}
}

// MustParse is Parse for literals known to be valid.
func MustParse(raw string) Client {
	c, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the space-joined lowercase tokens, the persisted form.
func (c Client) String() string {
	if c.Middle == "" {
		return c.First + " " + c.Last
	}
	return c.First + " " + c.Middle + " " + c.Last
}

// Token returns the name part for role, empty when absent.
func (c Client) Token(role Role) string {
	switch role {
	case RoleFirst:
		return c.First
	case RoleMiddle:
		return c.Middle
	case RoleLast:
		return c.Last
	default:
		return ""
	}
}

// IsZero reports whether c is the zero Client.
func (c Client) IsZero() bool {
	return c == Client{}
}
