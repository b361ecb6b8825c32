package link

import (
	"sort"
	"strings"
)

// ComponentTable maps the serialized spelling of each known component to its
// canonical identifier and back. It resolves serialized links without
// guessing where one hyphenated name ends and the next begins.
type ComponentTable struct {
	canonical  map[string]string // serialized or canonical spelling -> canonical
	serialized map[string]string // canonical -> serialized spelling
}

// NewComponentTable builds a table from the known component names. Each name
// is registered under its lowercase spelling and its normalized form.
func NewComponentTable(components []string) *ComponentTable {
	t := &ComponentTable{
		canonical:  make(map[string]string, 2*len(components)),
		serialized: make(map[string]string, len(components)),
	}
	for _, c := range components {
		lower := strings.ToLower(strings.TrimSpace(c))
		if lower == "" {
			continue
		}
		canon := Normalize(lower)
		t.canonical[lower] = canon
		t.canonical[canon] = canon
		if _, ok := t.serialized[canon]; !ok {
			t.serialized[canon] = lower
		}
	}
	return t
}

// Canonical returns the canonical identifier for a spelling of a component.
func (t *ComponentTable) Canonical(name string) (string, bool) {
	c, ok := t.canonical[strings.ToLower(name)]
	return c, ok
}

// Serialized returns the original spelling of a canonical identifier.
func (t *ComponentTable) Serialized(canonical string) (string, bool) {
	s, ok := t.serialized[canonical]
	return s, ok
}

// Known reports whether name is a spelling of a known component.
func (t *ComponentTable) Known(name string) bool {
	_, ok := t.Canonical(name)
	return ok
}

// Components returns the canonical identifiers in sorted order.
func (t *ComponentTable) Components() []string {
	out := make([]string, 0, len(t.serialized))
	for c := range t.serialized {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct components.
func (t *ComponentTable) Len() int { return len(t.serialized) }

// Split resolves a serialized link into canonical components. It looks for
// the single hyphen whose two sides are both known components. When no
// hyphen qualifies the fixed arity heuristic of SplitLink is used; when more
// than one qualifies the link is ambiguous and a *MalformedLinkError is
// returned.
func (t *ComponentTable) Split(serialized string) (Link, error) {
	lower := strings.ToLower(serialized)
	var found []Link
	for i := 0; i < len(lower); i++ {
		if lower[i] != Sep[0] {
			continue
		}
		src, okSrc := t.Canonical(lower[:i])
		dst, okDst := t.Canonical(lower[i+1:])
		if okSrc && okDst {
			found = append(found, Link{Source: src, Target: dst})
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return Parse(lower)
	default:
		return Link{}, &MalformedLinkError{
			Link:   serialized,
			Tokens: strings.Count(lower, Sep) + 1,
			Reason: "ambiguous component boundary",
		}
	}
}
