// Package staticmodel loads the call graph extracted from source code and
// indexes it for backward traversal.
//
// The input is the JSON document produced by the static dataflow extractor:
//
//	{
//	  "edges": { "order -> catalog": {"file": "...", "line": 12}, ... },
//	  "nodes": { "order": {"file": "...", "line": 1, "sub_items": {...}}, ... }
//	}
//
// Keys are read in document order so evidence lists are stable.
package staticmodel

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"catma/internal/link"
)

// Evidence kinds.
const (
	KindLink    = "Link"
	KindService = "Service"
)

const edgeSep = " -> "

// Evidence points at a piece of code supporting a link or a service.
type Evidence struct {
	Kind     string `yaml:"kind"`
	Location string `yaml:"location"`
	Line     string `yaml:"line"`
}

// Model is the parsed static model.
type Model struct {
	links    []link.Link
	evidence map[link.Link][]Evidence

	services        []string
	serviceEvidence map[string][]Evidence
}

// Load reads and parses a static model file.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read static model: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a static model document. Component names are lowercased and
// their hyphens rewritten to underscores, matching runtime-decoded links.
func Parse(data []byte) (*Model, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("static model is not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	edges := doc.Get("edges")
	if !edges.IsObject() {
		return nil, fmt.Errorf("static model has no edges object")
	}

	m := &Model{
		evidence:        make(map[link.Link][]Evidence),
		serviceEvidence: make(map[string][]Evidence),
	}

	var parseErr error
	edges.ForEach(func(key, value gjson.Result) bool {
		src, dst, ok := strings.Cut(key.String(), edgeSep)
		if !ok || strings.TrimSpace(src) == "" || strings.TrimSpace(dst) == "" {
			parseErr = &link.MalformedLinkError{Link: key.String(), Reason: `expected "source -> target"`}
			return false
		}
		l := link.Link{Source: link.Normalize(src), Target: link.Normalize(dst)}
		if _, seen := m.evidence[l]; !seen {
			m.links = append(m.links, l)
		}
		m.evidence[l] = append(m.evidence[l], evidenceOf(KindLink, value))
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	doc.Get("nodes").ForEach(func(key, value gjson.Result) bool {
		svc := link.Normalize(key.String())
		if _, seen := m.serviceEvidence[svc]; !seen {
			m.services = append(m.services, svc)
		}
		ev := []Evidence{evidenceOf(KindService, value)}
		value.Get("sub_items").ForEach(func(kind, sub gjson.Result) bool {
			ev = append(ev, evidenceOf(kind.String(), sub))
			return true
		})
		m.serviceEvidence[svc] = append(m.serviceEvidence[svc], ev...)
		return true
	})

	return m, nil
}

func evidenceOf(kind string, v gjson.Result) Evidence {
	return Evidence{
		Kind:     kind,
		Location: strings.ReplaceAll(v.Get("file").String(), "blob/master/master", "blob/master"),
		Line:     v.Get("line").String(),
	}
}

// Links returns the static links in document order.
func (m *Model) Links() []link.Link {
	out := make([]link.Link, len(m.links))
	copy(out, m.links)
	return out
}

// LinkSet returns the static links as a set.
func (m *Model) LinkSet() link.Set { return link.NewSet(m.links...) }

// Components returns every component named by a link or a service entry,
// sorted.
func (m *Model) Components() []string {
	seen := make(map[string]bool)
	for _, l := range m.links {
		seen[l.Source] = true
		seen[l.Target] = true
	}
	for _, s := range m.services {
		seen[s] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Evidence returns the evidence recorded for l. Links without evidence
// return an empty, non-nil slice.
func (m *Model) Evidence(l link.Link) []Evidence {
	ev := m.evidence[l]
	out := make([]Evidence, len(ev))
	copy(out, ev)
	return out
}

// FirstLocation returns the location of the first evidence of l.
func (m *Model) FirstLocation(l link.Link) (string, bool) {
	ev := m.evidence[l]
	if len(ev) == 0 {
		return "", false
	}
	return ev[0].Location, true
}

// Services returns the services that carry evidence, in document order.
func (m *Model) Services() []string {
	out := make([]string, len(m.services))
	copy(out, m.services)
	return out
}

// ServiceEvidence returns the evidence recorded for a service.
func (m *Model) ServiceEvidence(service string) []Evidence {
	ev := m.serviceEvidence[link.Normalize(service)]
	out := make([]Evidence, len(ev))
	copy(out, ev)
	return out
}

// CodeCallSequence concatenates the evidence of every hop of a link token
// sequence. Tokens that do not parse contribute nothing.
func (m *Model) CodeCallSequence(tokens []string) []Evidence {
	out := []Evidence{}
	for _, tok := range tokens {
		l, err := link.ParseToken(tok)
		if err != nil {
			continue
		}
		out = append(out, m.evidence[l]...)
	}
	return out
}
