package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/awalterschulze/gographviz"

	"catma/internal/conformance"
	"catma/internal/link"
)

// Link colours of the architecture diagram.
const (
	ColorConformant = "black"
	ColorStatic     = "red"
	ColorDynamic    = "darkgreen"
)

// Edge is one coloured link of the architecture diagram.
type Edge struct {
	Link  link.Link
	Color string
}

// Architecture is the component graph with non-conformances highlighted.
type Architecture struct {
	Nodes []string
	Edges []Edge
}

// NewArchitecture combines the static links with the classification. Static
// links that are not non-conformant are drawn black, static non-conformances
// red and dynamic ones dark green. Edges are sorted by colour group then link.
func NewArchitecture(static []link.Link, res conformance.Result) *Architecture {
	nodes := make(map[string]bool)
	var conformant []link.Link
	seen := link.NewSet()
	for _, l := range static {
		nodes[l.Source], nodes[l.Target] = true, true
		if seen.Has(l) || res.Static.Has(l) || res.Dynamic.Has(l) {
			continue
		}
		seen.Add(l)
		conformant = append(conformant, l)
	}
	sort.Slice(conformant, func(i, j int) bool { return conformant[i].String() < conformant[j].String() })

	a := &Architecture{}
	for _, l := range conformant {
		a.Edges = append(a.Edges, Edge{Link: l, Color: ColorConformant})
	}
	for _, l := range res.Static.Sorted() {
		nodes[l.Source], nodes[l.Target] = true, true
		a.Edges = append(a.Edges, Edge{Link: l, Color: ColorStatic})
	}
	for _, l := range res.Dynamic.Sorted() {
		nodes[l.Source], nodes[l.Target] = true, true
		a.Edges = append(a.Edges, Edge{Link: l, Color: ColorDynamic})
	}
	for n := range nodes {
		a.Nodes = append(a.Nodes, n)
	}
	sort.Strings(a.Nodes)
	return a
}

// DOT renders the graph as a DOT digraph.
func (a *Architecture) DOT() (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("architecture"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	for _, n := range a.Nodes {
		attrs := map[string]string{"label": quote(n), "shape": "Mrecord"}
		if err := g.AddNode(g.Name, quote(n), attrs); err != nil {
			return "", fmt.Errorf("add node %s: %w", n, err)
		}
	}
	for _, e := range a.Edges {
		if err := g.AddEdge(quote(e.Link.Source), quote(e.Link.Target), true, map[string]string{"color": quote(e.Color)}); err != nil {
			return "", fmt.Errorf("add edge %s: %w", e.Link, err)
		}
	}
	return g.String(), nil
}

// PlantUML wraps the DOT graph in a PlantUML document.
func (a *Architecture) PlantUML() (string, error) {
	dot, err := a.DOT()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("@startuml\n")
	b.WriteString("skinparam monochrome true\n")
	b.WriteString("skinparam ClassBackgroundColor White\n")
	b.WriteString("skinparam defaultFontName Arial\n")
	b.WriteString("skinparam defaultFontSize 11\n\n")
	b.WriteString(dot)
	if !strings.HasSuffix(dot, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("@enduml\n")
	return b.String(), nil
}

// Mermaid renders the graph as a fenced Mermaid block with one linkStyle per
// non-black edge.
func (a *Architecture) Mermaid() string {
	var b strings.Builder
	b.WriteString("```mermaid\ngraph LR\n")
	if len(a.Edges) == 0 {
		for _, n := range a.Nodes {
			b.WriteString(fmt.Sprintf("  %s\n", n))
		}
	}
	for _, e := range a.Edges {
		b.WriteString(fmt.Sprintf("  %s --> %s\n", e.Link.Source, e.Link.Target))
	}
	for i, e := range a.Edges {
		if e.Color != ColorConformant {
			b.WriteString(fmt.Sprintf("  linkStyle %d stroke:%s\n", i, e.Color))
		}
	}
	b.WriteString("```\n")
	return b.String()
}

func quote(s string) string { return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"` }
