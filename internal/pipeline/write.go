package pipeline

// write.go - persists a run.
//
// Output layout:
//   summary.yaml                     - run id, seed, counts, sorted link sets
//   interpretations/<name>.yaml      - one record per non-conformance
//   code_linked_models/*.dot         - written by Run when OutDir is set
//   index.md, interpretations/*.md,
//   graphs/architecture.md,
//   architecture.puml                - the report vault

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"catma/internal/export"
	"catma/internal/interpret"
)

// SummaryFile is the name of the run summary inside the output directory.
const SummaryFile = "summary.yaml"

// Summary is the persisted overview of a run.
type Summary struct {
	Project     string `yaml:"project,omitempty"`
	RunID       string `yaml:"run_id"`
	Seed        uint64 `yaml:"seed"`
	GeneratedAt string `yaml:"generated_at"`

	Components             []string `yaml:"components"`
	StaticLinks            int      `yaml:"static_links"`
	RuntimeLinks           int      `yaml:"runtime_links"`
	StaticNonConformances  []string `yaml:"static_non_conformances"`
	DynamicNonConformances []string `yaml:"dynamic_non_conformances"`
	Interpretations        []string `yaml:"interpretations"`
}

// Summary returns the overview of r.
func (r *Result) Summary() Summary {
	s := Summary{
		Project:                r.Project,
		RunID:                  r.RunID,
		Seed:                   r.Seed,
		GeneratedAt:            r.GeneratedAt.Format(time.RFC3339),
		Components:             nonNil(r.Components),
		StaticLinks:            len(r.StaticLinks),
		RuntimeLinks:           r.RuntimeLinks.Len(),
		StaticNonConformances:  nonNil(r.Conformance.Static.Strings()),
		DynamicNonConformances: nonNil(r.Conformance.Dynamic.Strings()),
		Interpretations:        []string{},
	}
	for _, rec := range r.Records {
		s.Interpretations = append(s.Interpretations, interpretationPath(rec))
	}
	return s
}

// Write persists r under outDir. Existing files of a previous run with the
// same names are overwritten.
func Write(r *Result, outDir string) error {
	if err := os.MkdirAll(filepath.Join(outDir, "interpretations"), 0o755); err != nil {
		return fmt.Errorf("mkdir interpretations: %w", err)
	}
	for _, rec := range r.Records {
		data, err := yaml.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", rec.Name(), err)
		}
		if err := writeFile(filepath.Join(outDir, filepath.FromSlash(interpretationPath(rec))), data); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(r.Summary())
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := writeFile(filepath.Join(outDir, SummaryFile), data); err != nil {
		return err
	}

	report, err := export.GenerateReport(export.Input{
		Project:     r.Project,
		RunID:       r.RunID,
		Seed:        r.Seed,
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
		StaticLinks: r.StaticLinks,
		Result:      r.Conformance,
		Records:     r.Records,
	})
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	if err := export.WriteReport(report, outDir); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func interpretationPath(rec *interpret.Record) string {
	return "interpretations/" + rec.Name() + ".yaml"
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
