// Package walk samples call sequences by random walks: backward through the
// static call graph to propose how a missing runtime link could have been
// reached, and forward through the learned runtime model to sample what was
// actually exercised. FindOccurred intersects the two populations.
//
// Sampling is best effort. An empty result means nothing was sampled within
// the walk budget, not that no path exists.
package walk

import (
	"math/rand/v2"

	"catma/internal/runtimemodel"
)

// Rand is the random source walks draw from. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a reproducible PCG source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func randOrDefault(r Rand) Rand {
	if r != nil {
		return r
	}
	return NewRand(rand.Uint64())
}

// Graph is the view of a runtime model the forward sampler and the
// correlator traverse. *runtimemodel.Model satisfies it.
type Graph interface {
	EdgesFrom(state string) []runtimemodel.Edge
	Neighbors(state string) []string
	Label(e runtimemodel.Edge) (string, bool)
}

// ParentIndex is the view of the static graph the backward sampler needs.
// *staticmodel.Index satisfies it.
type ParentIndex interface {
	Parents(component string) []string
}

// Sequence is an ordered list of "source__target" link tokens.
type Sequence []string

// Path is a sampled runtime walk: link tokens followed by the sentinel token
// of the link under investigation.
type Path []string

func key(tokens []string) string {
	n := 0
	for _, t := range tokens {
		n += len(t) + 1
	}
	b := make([]byte, 0, n)
	for _, t := range tokens {
		b = append(b, t...)
		b = append(b, 0)
	}
	return string(b)
}

var _ Graph = (*runtimemodel.Model)(nil)
