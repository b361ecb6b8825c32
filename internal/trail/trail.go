// Package trail recovers the concrete calls behind a confirmed link
// sequence by replaying it against the runtime model.
package trail

import (
	"sort"
	"strings"

	"catma/internal/link"
	"catma/internal/runtimemodel"
	"catma/internal/walk"
)

// Graph is a walk.Graph whose states can be enumerated.
type Graph interface {
	walk.Graph
	States() []string
}

// Correlate replays seq against g and returns the distinct per-hop call
// details ("port__/path") of every full match, sorted.
//
// The last token of seq is the link under investigation, which was never
// observed, so only the hops before it are replayed; a one-token sequence
// replays that token. Replays start from every state with a transition
// matching the first token. At each hop the first matching transition in
// model order is taken; a hop without a match drops that start state.
func Correlate(seq walk.Sequence, g Graph) [][]string {
	if len(seq) == 0 {
		return nil
	}
	n := len(seq) - 1
	if n < 1 {
		n = 1
	}

	seen := make(map[string]bool)
	var out [][]string
	for _, start := range startStates(g, seq[0]) {
		details, ok := replay(g, start, seq[:n])
		if !ok {
			continue
		}
		k := strings.Join(details, "\x00")
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, details)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Join(out[i], "\x00") < strings.Join(out[j], "\x00")
	})
	return out
}

// startStates returns the states with an outgoing transition whose link
// token is tok, in model order.
func startStates(g Graph, tok string) []string {
	var out []string
	for _, s := range g.States() {
		if _, ok := match(g, s, tok); ok {
			out = append(out, s)
		}
	}
	return out
}

func replay(g Graph, start string, hops []string) ([]string, bool) {
	cur := start
	details := make([]string, 0, len(hops))
	for _, tok := range hops {
		m, ok := match(g, cur, tok)
		if !ok {
			return nil, false
		}
		details = append(details, m.detail)
		cur = m.to
	}
	return details, true
}

type hop struct {
	detail string
	to     string
}

// match finds the first labeled transition out of state whose link token
// is tok.
func match(g Graph, state, tok string) (hop, bool) {
	for _, e := range g.EdgesFrom(state) {
		label, ok := g.Label(e)
		if !ok {
			continue
		}
		got, err := link.DecodeToken(label)
		if err != nil || got != tok {
			continue
		}
		detail, err := link.Detail(label)
		if err != nil {
			continue
		}
		return hop{detail: detail, to: e.To}, true
	}
	return hop{}, false
}

var _ Graph = (*runtimemodel.Model)(nil)
