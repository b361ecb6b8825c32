// Package runtimemodel holds the learned runtime state machine: an explicit
// adjacency-list graph of named states and labeled transitions, its DOT
// reader/writer, and the per-component model directory layout produced by
// the DFA learner.
package runtimemodel

import "sort"

// InitialState is the name of the state every learned model starts in.
const InitialState = "0"

// Edge identifies one transition of a Model.
type Edge struct {
	ID   int
	From string
	To   string
}

// Transition is an Edge together with its raw label. An empty Label marks a
// structural transition.
type Transition struct {
	Edge
	Label string
}

type transition struct {
	edge    Edge
	label   string
	labeled bool
}

// Model is a directed graph of states and transitions. Transitions keep the
// order they were added in; EdgesFrom and Neighbors follow that order.
// A Model is read-only once loaded.
type Model struct {
	Name string

	states      []string
	known       map[string]bool
	transitions []transition
	out         map[string][]int
}

// New returns an empty model.
func New(name string) *Model {
	return &Model{
		Name:  name,
		known: make(map[string]bool),
		out:   make(map[string][]int),
	}
}

// AddState registers a state. Adding a known state is a no-op.
func (m *Model) AddState(name string) {
	if m.known[name] {
		return
	}
	m.known[name] = true
	m.states = append(m.states, name)
}

// AddTransition adds a transition between two states, registering them if
// needed. An empty label marks a structural transition that carries no call
// information.
func (m *Model) AddTransition(from, to, label string) Edge {
	m.AddState(from)
	m.AddState(to)
	e := Edge{ID: len(m.transitions), From: from, To: to}
	m.transitions = append(m.transitions, transition{edge: e, label: label, labeled: label != ""})
	m.out[from] = append(m.out[from], e.ID)
	return e
}

// States returns the state names in insertion order.
func (m *Model) States() []string {
	out := make([]string, len(m.states))
	copy(out, m.states)
	return out
}

// HasState reports whether the model contains the named state.
func (m *Model) HasState(name string) bool { return m.known[name] }

// Edges returns every transition in insertion order.
func (m *Model) Edges() []Edge {
	out := make([]Edge, len(m.transitions))
	for i, t := range m.transitions {
		out[i] = t.edge
	}
	return out
}

// Transitions returns every transition with its label, in insertion order.
func (m *Model) Transitions() []Transition {
	out := make([]Transition, len(m.transitions))
	for i, t := range m.transitions {
		out[i] = Transition{Edge: t.edge, Label: t.label}
	}
	return out
}

// EdgesFrom returns the outgoing transitions of a state, labeled or not.
func (m *Model) EdgesFrom(state string) []Edge {
	ids := m.out[state]
	out := make([]Edge, len(ids))
	for i, id := range ids {
		out[i] = m.transitions[id].edge
	}
	return out
}

// Neighbors returns the distinct destination states of a state's outgoing
// transitions.
func (m *Model) Neighbors(state string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range m.out[state] {
		to := m.transitions[id].edge.To
		if !seen[to] {
			seen[to] = true
			out = append(out, to)
		}
	}
	return out
}

// Label returns the raw label of a transition and whether it has one.
func (m *Model) Label(e Edge) (string, bool) {
	if e.ID < 0 || e.ID >= len(m.transitions) {
		return "", false
	}
	t := m.transitions[e.ID]
	return t.label, t.labeled
}

// Len returns the number of transitions.
func (m *Model) Len() int { return len(m.transitions) }

// SortedStates returns the state names in lexical order.
func (m *Model) SortedStates() []string {
	out := m.States()
	sort.Strings(out)
	return out
}
