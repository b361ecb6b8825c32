package walk

import (
	"slices"

	"catma/internal/link"
)

// BackwardOptions controls SampleBackward.
type BackwardOptions struct {
	Walks     int
	MinLength int
	MaxLength int
	Rand      Rand
}

// DefaultBackwardOptions returns the default backward sampling budget.
func DefaultBackwardOptions() BackwardOptions {
	return BackwardOptions{Walks: 1000, MinLength: 2, MaxLength: 5}
}

// SampleBackward walks parent links from start and returns the distinct
// sampled paths that pass through required, as link token sequences ending
// in a hop into start.
//
// Each trial draws a length in [MinLength, MaxLength] and stops early at a
// component without parents, so sequences may be shorter than the drawn
// length. An unknown start yields nothing.
func SampleBackward(idx ParentIndex, start, required string, opts BackwardOptions) []Sequence {
	r := randOrDefault(opts.Rand)
	lo, hi := opts.MinLength, opts.MaxLength
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}

	seen := make(map[string]bool)
	var out []Sequence
	for range opts.Walks {
		length := lo + r.IntN(hi-lo+1)
		cur := start
		var path []string
		for range length {
			parents := idx.Parents(cur)
			if len(parents) == 0 {
				break
			}
			next := parents[r.IntN(len(parents))]
			path = append([]string{next}, path...)
			cur = next
		}

		k := key(path)
		if seen[k] || !slices.Contains(path, required) {
			continue
		}
		seen[k] = true
		out = append(out, tokens(append(path, start)))
	}
	return out
}

// tokens converts a node path into the link tokens of its consecutive pairs.
func tokens(nodes []string) Sequence {
	seq := make(Sequence, 0, len(nodes)-1)
	for i := 0; i+1 < len(nodes); i++ {
		seq = append(seq, link.Link{Source: nodes[i], Target: nodes[i+1]}.Token())
	}
	return seq
}
