// Package frontmatter reads and writes the YAML frontmatter of report notes.
package frontmatter

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Meta is the frontmatter carried by every report note.
type Meta struct {
	Tags  []string `yaml:"tags"`
	RunID string   `yaml:"run_id,omitempty"`
	Type  string   `yaml:"non_conformance_type,omitempty"`
	Link  string   `yaml:"link,omitempty"`
}

// Parse splits a markdown document into its frontmatter and body. The
// document must begin with "---\n"; the closing "---" line ends the
// frontmatter block.
func Parse(data []byte) (Meta, []byte, error) {
	const delim = "---\n"
	if !bytes.HasPrefix(data, []byte(delim)) {
		return Meta{}, nil, fmt.Errorf("frontmatter: missing opening --- delimiter")
	}
	rest := data[len(delim):]
	idx := bytes.Index(rest, []byte("\n---"))
	if idx < 0 {
		return Meta{}, nil, fmt.Errorf("frontmatter: missing closing --- delimiter")
	}
	var m Meta
	if err := yaml.Unmarshal(rest[:idx], &m); err != nil {
		return Meta{}, nil, fmt.Errorf("frontmatter: %w", err)
	}
	tail := rest[idx+4:]
	for len(tail) > 0 && tail[0] == '\n' {
		tail = tail[1:]
	}
	return m, tail, nil
}

// Write renders meta as frontmatter followed by a blank line and body.
// Tags are sorted.
func Write(meta Meta, body string) ([]byte, error) {
	tags := make([]string, len(meta.Tags))
	copy(tags, meta.Tags)
	sort.Strings(tags)
	meta.Tags = tags

	fm, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}
