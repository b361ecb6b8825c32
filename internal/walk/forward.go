package walk

import (
	"catma/internal/link"
	"catma/internal/runtimemodel"
)

// ForwardOptions controls SampleForward.
type ForwardOptions struct {
	Walks  int
	Length int
	Rand   Rand
}

// DefaultForwardOptions returns the default forward sampling budget.
func DefaultForwardOptions() ForwardOptions {
	return ForwardOptions{Walks: 1000, Length: 20}
}

type step struct {
	link link.Link
	to   string
}

// stepIndex memoizes the decodable labeled transitions of each state.
type stepIndex struct {
	g     Graph
	steps map[string][]step
}

func (x *stepIndex) from(state string) []step {
	if s, ok := x.steps[state]; ok {
		return s
	}
	var out []step
	if len(x.g.Neighbors(state)) > 0 {
		for _, e := range x.g.EdgesFrom(state) {
			label, ok := x.g.Label(e)
			if !ok {
				continue
			}
			l, err := link.DecodeTransition(label)
			if err != nil {
				continue
			}
			out = append(out, step{link: l, to: e.To})
		}
	}
	x.steps[state] = out
	return out
}

// SampleForward walks the runtime model from its initial state. Each trial
// takes up to Length uniformly chosen labeled transitions and records their
// link tokens, then appends the sentinel token required__missing.
//
// The sentinel names required, so every trial is kept, including one that
// never leaves the initial state. Exact duplicate paths are dropped.
func SampleForward(g Graph, required, missing string, opts ForwardOptions) []Path {
	r := randOrDefault(opts.Rand)
	idx := &stepIndex{g: g, steps: make(map[string][]step)}
	sentinel := link.Link{Source: required, Target: missing}.Token()

	seen := make(map[string]bool)
	var out []Path
	for range opts.Walks {
		cur := runtimemodel.InitialState
		var path Path
		for range opts.Length {
			steps := idx.from(cur)
			if len(steps) == 0 {
				break
			}
			s := steps[r.IntN(len(steps))]
			path = append(path, s.link.Token())
			cur = s.to
		}
		path = append(path, sentinel)
		k := key(path)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, path)
	}
	return out
}
