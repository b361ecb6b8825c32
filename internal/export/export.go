package export

// export.go - report export: converts an analysis run into a markdown vault.
//
// Vault layout:
//   index.md                              - run summary, non-conformance list, architecture graph
//   interpretations/<type>-<src>-<dst>.md - one per non-conformance
//   graphs/architecture.md                - Mermaid LR component graph
//   architecture.puml                     - PlantUML-wrapped DOT of the same graph

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"catma/internal/conformance"
	"catma/internal/frontmatter"
	"catma/internal/interpret"
	"catma/internal/link"
)

// Input is everything a report is generated from.
type Input struct {
	Project     string
	RunID       string
	Seed        uint64
	GeneratedAt string

	StaticLinks []link.Link
	Result      conformance.Result
	Records     []*interpret.Record
}

// Report holds pre-generated page content (path → content).
// Paths are relative to the output directory, using forward slashes.
type Report struct {
	pages map[string]string
}

// Pages returns the page paths in sorted order.
func (r *Report) Pages() []string {
	paths := make([]string, 0, len(r.pages))
	for p := range r.pages {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Page returns the content of one page.
func (r *Report) Page(path string) (string, bool) {
	c, ok := r.pages[path]
	return c, ok
}

// GenerateReport builds all pages from in. No files are written.
func GenerateReport(in Input) (*Report, error) {
	pages := make(map[string]string)
	arch := NewArchitecture(in.StaticLinks, in.Result)

	index, err := buildIndexPage(in, arch)
	if err != nil {
		return nil, err
	}
	pages["index.md"] = index

	for _, rec := range in.Records {
		page, err := renderInterpretation(in.RunID, rec)
		if err != nil {
			return nil, fmt.Errorf("interpretation %s: %w", rec.Name(), err)
		}
		pages["interpretations/"+sanitizeFilename(rec.Name())+".md"] = page
	}

	graph, err := frontmatter.Write(frontmatter.Meta{Tags: []string{"catma/graph"}, RunID: in.RunID},
		"# Architecture\n\n"+arch.Mermaid()+"\n"+legend)
	if err != nil {
		return nil, err
	}
	pages["graphs/architecture.md"] = string(graph)

	puml, err := arch.PlantUML()
	if err != nil {
		return nil, fmt.Errorf("architecture diagram: %w", err)
	}
	pages["architecture.puml"] = puml

	return &Report{pages: pages}, nil
}

// WriteReport writes all pages in r to outputDir in sorted path order.
// Always creates interpretations/ and graphs/.
func WriteReport(r *Report, outputDir string) error {
	for _, sub := range []string{"interpretations", "graphs"} {
		if err := os.MkdirAll(filepath.Join(outputDir, sub), 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", sub, err)
		}
	}
	for _, p := range r.Pages() {
		abs := filepath.Join(outputDir, filepath.FromSlash(p))
		if err := writeNote(abs, r.pages[p]); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Page builders
// ---------------------------------------------------------------------------

const legend = `
| Colour | Meaning |
|--------|---------|
| black | in both models |
| red | static non-conformance: observed at runtime, no code evidence |
| darkgreen | dynamic non-conformance: code evidence, never observed |
`

// buildIndexPage builds index.md - entry point of the vault.
func buildIndexPage(in Input, arch *Architecture) (string, error) {
	var b strings.Builder
	title := "Conformance Report"
	if in.Project != "" {
		title += ": " + in.Project
	}
	b.WriteString("# " + title + "\n\n")
	if in.GeneratedAt != "" {
		b.WriteString(fmt.Sprintf("- **Generated**: %s\n", in.GeneratedAt))
	}
	b.WriteString(fmt.Sprintf("- **Run**: `%s`\n", in.RunID))
	b.WriteString(fmt.Sprintf("- **Seed**: %d\n", in.Seed))
	b.WriteString(fmt.Sprintf("- **Static links**: %d\n", len(in.StaticLinks)))
	b.WriteString(fmt.Sprintf("- **Static non-conformances**: %d\n", in.Result.Static.Len()))
	b.WriteString(fmt.Sprintf("- **Dynamic non-conformances**: %d\n\n", in.Result.Dynamic.Len()))

	byName := make(map[string]*interpret.Record, len(in.Records))
	for _, rec := range in.Records {
		byName[rec.Name()] = rec
	}

	writeSection := func(heading, typ string, links link.Set) {
		b.WriteString("## " + heading + "\n\n")
		if links.Len() == 0 {
			b.WriteString("_None._\n\n")
			return
		}
		for _, l := range links.Sorted() {
			name := typ + "-" + l.Source + "-" + l.Target
			if _, ok := byName[name]; ok {
				b.WriteString(fmt.Sprintf("- [[interpretations/%s|%s]]\n", sanitizeFilename(name), l))
			} else {
				b.WriteString("- " + l.String() + "\n")
			}
		}
		b.WriteString("\n")
	}
	writeSection("Static Non-Conformances", conformance.TypeStatic, in.Result.Static)
	writeSection("Dynamic Non-Conformances", conformance.TypeDynamic, in.Result.Dynamic)

	b.WriteString("## Architecture\n\n")
	b.WriteString(arch.Mermaid())
	b.WriteString("\nSee [[graphs/architecture|architecture]].\n")

	data, err := frontmatter.Write(frontmatter.Meta{Tags: []string{"catma/index"}, RunID: in.RunID}, b.String())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// sanitizeFilename replaces / and . with -, collapses consecutive - to one,
// and trims leading/trailing -.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, ".", "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	return s
}

// writeNote writes content to path, creating parent directories as needed.
func writeNote(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
