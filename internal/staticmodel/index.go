package staticmodel

import (
	"sort"

	"catma/internal/link"
)

// Index is the parent/children adjacency of the static call graph. Neighbor
// lists are sorted so walks driven by a seeded source are reproducible.
type Index struct {
	parents  map[string][]string
	children map[string][]string
}

// BuildIndex indexes links. Every component named by a link gets an entry,
// possibly with no parents or no children.
func BuildIndex(links []link.Link) *Index {
	parents := make(map[string]map[string]bool)
	children := make(map[string]map[string]bool)
	touch := func(c string) {
		if parents[c] == nil {
			parents[c] = make(map[string]bool)
			children[c] = make(map[string]bool)
		}
	}
	for _, l := range links {
		touch(l.Source)
		touch(l.Target)
		children[l.Source][l.Target] = true
		parents[l.Target][l.Source] = true
	}

	idx := &Index{
		parents:  make(map[string][]string, len(parents)),
		children: make(map[string][]string, len(children)),
	}
	for c := range parents {
		idx.parents[c] = sortedKeys(parents[c])
		idx.children[c] = sortedKeys(children[c])
	}
	return idx
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Has reports whether c appears in any indexed link.
func (x *Index) Has(c string) bool {
	_, ok := x.parents[c]
	return ok
}

// Parents returns the components with a link into c.
func (x *Index) Parents(c string) []string { return clone(x.parents[c]) }

// Children returns the components c links to.
func (x *Index) Children(c string) []string { return clone(x.children[c]) }

// Components returns every indexed component, sorted.
func (x *Index) Components() []string {
	out := make([]string, 0, len(x.parents))
	for c := range x.parents {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
