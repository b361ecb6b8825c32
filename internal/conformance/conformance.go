// Package conformance compares the links of the static model with the links
// observed in the runtime model.
package conformance

import (
	"catma/internal/link"
	"catma/internal/runtimemodel"
)

// Types of non-conformance.
const (
	// TypeStatic marks a link observed at runtime without static evidence.
	TypeStatic = "static"
	// TypeDynamic marks a link with static evidence never observed at runtime.
	TypeDynamic = "dynamic"
)

// Result holds both directional differences. Presence is tested in either
// direction; reported links keep the direction they were found in.
type Result struct {
	Static  link.Set
	Dynamic link.Set
}

// Classify computes the non-conformances between the static and runtime
// link sets.
func Classify(static, runtime link.Set) Result {
	r := Result{Static: link.NewSet(), Dynamic: link.NewSet()}
	for l := range static {
		if !runtime.HasEitherDirection(l) {
			r.Dynamic.Add(l)
		}
	}
	for l := range runtime {
		if !static.HasEitherDirection(l) {
			r.Static.Add(l)
		}
	}
	return r
}

// Len returns the total number of non-conformances.
func (r Result) Len() int { return r.Static.Len() + r.Dynamic.Len() }

// Entry is one non-conformance.
type Entry struct {
	Type string
	Link link.Link
}

// Entries lists the non-conformances, static ones first, each group sorted.
func (r Result) Entries() []Entry {
	out := make([]Entry, 0, r.Len())
	for _, l := range r.Static.Sorted() {
		out = append(out, Entry{Type: TypeStatic, Link: l})
	}
	for _, l := range r.Dynamic.Sorted() {
		out = append(out, Entry{Type: TypeDynamic, Link: l})
	}
	return out
}

// RuntimeLinks decodes every labeled transition of a runtime model into a
// link. Transitions whose label cannot be decoded, or whose endpoints are
// not both known components, are skipped.
func RuntimeLinks(m *runtimemodel.Model, known []string) link.Set {
	allowed := make(map[string]bool, len(known))
	for _, c := range known {
		allowed[link.Normalize(c)] = true
	}
	out := link.NewSet()
	for _, tr := range m.Transitions() {
		if tr.Label == "" {
			continue
		}
		l, err := link.DecodeTransition(tr.Label)
		if err != nil {
			continue
		}
		if allowed[l.Source] && allowed[l.Target] {
			out.Add(l)
		}
	}
	return out
}
