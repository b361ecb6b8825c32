// Package link holds the canonical link identifier shared by the static and
// runtime models, and the codecs that turn transition labels and serialized
// links back into component pairs.
//
// Serialized forms:
//
//	"source-target"    link key (static evidence, non-conformance sets)
//	"source__target"   link token (walks, call sequences)
package link

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// Sep joins the two components of a serialized link.
	Sep = "-"
	// TokenSep joins the two components of a link token and the fields of a
	// transition label.
	TokenSep = "__"
)

var (
	// ErrMalformedLink is wrapped by every *MalformedLinkError.
	ErrMalformedLink = errors.New("malformed link")
	// ErrShortLabel is returned when a transition label has fewer than two
	// "__"-separated fields.
	ErrShortLabel = errors.New("transition label has fewer than two fields")
)

// MalformedLinkError reports a serialized link whose component boundary
// cannot be determined.
type MalformedLinkError struct {
	Link   string
	Tokens int
	Reason string
}

func (e *MalformedLinkError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed link %q: %s", e.Link, e.Reason)
	}
	return fmt.Sprintf("malformed link %q: %d hyphen-separated tokens (supported: 2, 3 or 4)", e.Link, e.Tokens)
}

func (e *MalformedLinkError) Unwrap() error { return ErrMalformedLink }

// Link is a directed edge between two architectural components.
type Link struct {
	Source string
	Target string
}

// New returns a link between two lowercased component identifiers.
func New(source, target string) Link {
	return Link{Source: strings.ToLower(source), Target: strings.ToLower(target)}
}

// String returns the serialized "source-target" form.
func (l Link) String() string { return l.Source + Sep + l.Target }

// Token returns the "source__target" form used in call sequences.
func (l Link) Token() string { return l.Source + TokenSep + l.Target }

// Reverse returns the link with source and target swapped.
func (l Link) Reverse() Link { return Link{Source: l.Target, Target: l.Source} }

// ParseToken is the inverse of Link.Token.
func ParseToken(tok string) (Link, error) {
	src, dst, ok := strings.Cut(tok, TokenSep)
	if !ok || src == "" || dst == "" {
		return Link{}, &MalformedLinkError{Link: tok, Reason: "not a source__target token"}
	}
	return Link{Source: src, Target: dst}, nil
}

// Normalize lowercases a component identifier and rewrites internal hyphens
// to underscores, the form runtime-decoded links use.
func Normalize(component string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(component)), "-", "_")
}

// Denormalize restores the hyphenated display name of a normalized component.
func Denormalize(component string) string {
	return strings.ReplaceAll(component, "_", "-")
}

// SplitLink splits a serialized link on its component boundary.
//
// Component names may contain hyphens, so the split is a fixed arity
// heuristic: 2 tokens are source/target, 3 tokens are source and a
// hyphenated target, 4 tokens are two hyphenated components. Other arities
// return a *MalformedLinkError. Prefer ComponentTable.Split when the
// component list is known.
func SplitLink(serialized string) (source, target string, err error) {
	parts := strings.Split(serialized, Sep)
	switch len(parts) {
	case 2:
		source, target = parts[0], parts[1]
	case 3:
		source, target = parts[0], parts[1]+Sep+parts[2]
	case 4:
		source, target = parts[0]+Sep+parts[1], parts[2]+Sep+parts[3]
	default:
		return "", "", &MalformedLinkError{Link: serialized, Tokens: len(parts)}
	}
	if source == "" || target == "" {
		return "", "", &MalformedLinkError{Link: serialized, Tokens: len(parts), Reason: "empty component"}
	}
	return source, target, nil
}

// Parse splits a serialized link with SplitLink and returns it as a Link.
func Parse(serialized string) (Link, error) {
	src, dst, err := SplitLink(serialized)
	if err != nil {
		return Link{}, err
	}
	return Link{Source: src, Target: dst}, nil
}

// ---------------------------------------------------------------------------
// Set
// ---------------------------------------------------------------------------

// Set is an unordered set of links.
type Set map[Link]struct{}

// NewSet returns a set holding links.
func NewSet(links ...Link) Set {
	s := make(Set, len(links))
	for _, l := range links {
		s[l] = struct{}{}
	}
	return s
}

func (s Set) Add(l Link) { s[l] = struct{}{} }

func (s Set) Has(l Link) bool {
	_, ok := s[l]
	return ok
}

// HasEitherDirection reports whether l or its reverse is in the set.
func (s Set) HasEitherDirection(l Link) bool {
	return s.Has(l) || s.Has(l.Reverse())
}

func (s Set) Len() int { return len(s) }

// Sorted returns the links ordered by serialized form.
func (s Set) Sorted() []Link {
	out := make([]Link, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Strings returns the serialized links in sorted order.
func (s Set) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, l := range sorted {
		out[i] = l.String()
	}
	return out
}
