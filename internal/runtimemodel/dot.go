package runtimemodel

// dot.go - DOT reader/writer for learned models.
//
// The learner writes quoted labels with "\n" escapes between the call line
// and the frequency line, and occasionally emits a stray node named "\n".
// Both are handled here so the rest of the code only sees clean models.

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/awalterschulze/gographviz"

	"catma/internal/link"
)

// ErrModelNotFound is returned when a model file does not exist.
var ErrModelNotFound = errors.New("runtime model not found")

const noiseNode = "\n"

// Load reads and parses a DOT model file.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrModelNotFound)
		}
		return nil, fmt.Errorf("read model: %w", err)
	}
	m, err := Parse(modelName(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse builds a Model from DOT source. Noise nodes and every transition
// touching them are dropped; label quoting and escapes are decoded.
func Parse(name string, data []byte) (*Model, error) {
	ast, err := gographviz.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse dot: %w", err)
	}
	g := gographviz.NewGraph()
	if err := gographviz.Analyse(ast, g); err != nil {
		return nil, fmt.Errorf("analyse dot: %w", err)
	}

	m := New(name)
	for _, n := range g.Nodes.Nodes {
		id := unquote(n.Name)
		if id == noiseNode {
			continue
		}
		m.AddState(id)
	}
	for _, e := range g.Edges.Edges {
		src, dst := unquote(e.Src), unquote(e.Dst)
		if src == noiseNode || dst == noiseNode {
			continue
		}
		m.AddTransition(src, dst, unquote(e.Attrs[gographviz.Label]))
	}
	return m, nil
}

// HrefFunc returns the URL a transition describing l should point at.
type HrefFunc func(l link.Link) (string, bool)

// Marshal renders the model as DOT. When href is non-nil every labeled
// transition whose link it resolves gets an href attribute, so rendered
// diagrams link each call to the code that makes it.
func Marshal(m *Model, href HrefFunc) ([]byte, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(graphID(m.Name)); err != nil {
		return nil, err
	}
	if err := g.SetDir(true); err != nil {
		return nil, err
	}
	for _, s := range m.states {
		if err := g.AddNode(g.Name, quote(s), nil); err != nil {
			return nil, fmt.Errorf("add state %q: %w", s, err)
		}
	}
	for _, t := range m.transitions {
		var attrs map[string]string
		if t.labeled {
			attrs = map[string]string{string(gographviz.Label): quote(t.label)}
			if href != nil {
				if l, err := link.DecodeTransition(t.label); err == nil {
					if url, ok := href(l); ok {
						attrs[string(gographviz.HREF)] = quote(url)
					}
				}
			}
		}
		if err := g.AddEdge(quote(t.edge.From), quote(t.edge.To), true, attrs); err != nil {
			return nil, fmt.Errorf("add transition %d: %w", t.edge.ID, err)
		}
	}
	return []byte(g.String()), nil
}

// WriteFile marshals the model and writes it to path, creating parent
// directories as needed.
func WriteFile(m *Model, path string, href HrefFunc) error {
	data, err := Marshal(m, href)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", m.Name, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var dotUnescaper = strings.NewReplacer(`\"`, `"`, `\n`, "\n", `\l`, "\n", `\r`, "\n", `\\`, `\`)

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// unquote strips DOT string quoting and decodes its escapes.
func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return dotUnescaper.Replace(s[1 : len(s)-1])
	}
	return s
}

func quote(s string) string { return `"` + dotEscaper.Replace(s) + `"` }

// graphID turns a model name into a bare DOT identifier.
func graphID(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 || (name[0] >= '0' && name[0] <= '9') {
		return "model_" + b.String()
	}
	return b.String()
}

// modelName derives a model name from its file name.
func modelName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), Suffix)
}
