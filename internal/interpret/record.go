// Package interpret composes the evidence gathered for one non-conformance
// into an interpretation record.
package interpret

import (
	"strings"

	"gopkg.in/yaml.v3"

	"catma/internal/conformance"
	"catma/internal/link"
	"catma/internal/runtimemodel"
	"catma/internal/staticmodel"
	"catma/internal/walk"
)

// Record explains one non-conformance.
//
// A static record carries the most frequent calls of the link's own runtime
// model. A dynamic record carries the sampled call sequences, or, when a
// component has no runtime model, the components that lack one.
type Record struct {
	Type       string    `yaml:"non_conformance_type"`
	Link       link.Link `yaml:"-"`
	Components []string  `yaml:"components"`

	LinkCodeEvidences []staticmodel.Evidence `yaml:"link_code_evidences"`

	// static
	TopTransitions []runtimemodel.TransitionCount `yaml:"top_transitions_from_link_dyn_model,omitempty"`
	LinkDynModel   string                         `yaml:"link_dyn_model,omitempty"`

	// dynamic
	SrcDynModel string `yaml:"src_dyn_model,omitempty"`
	DstDynModel string `yaml:"dst_dyn_model,omitempty"`

	// Sampled is set when both endpoint models exist and the walks ran; the
	// sequence fields are then written even when empty.
	Sampled                bool                              `yaml:"-"`
	PotentialCallSequences []walk.Sequence                   `yaml:"potential_call_sequences"`
	OccurredCallSequences  []walk.Sequence                   `yaml:"occurred_call_sequences"`
	CodeCallSequences      map[string][]staticmodel.Evidence `yaml:"code_call_sequences"`
	CallDetailsSequences   map[string][][]string             `yaml:"call_details_sequences"`
	MissingDynamicModel    []string                          `yaml:"missing_dynamic_model,omitempty"`
}

// Name is the file-safe identifier of the record: "<type>-<source>-<target>"
// in canonical component spelling.
func (r *Record) Name() string {
	return r.Type + "-" + r.Link.Source + "-" + r.Link.Target
}

// Static reports whether the record explains a static non-conformance.
func (r *Record) Static() bool { return r.Type == conformance.TypeStatic }

// SequenceKey joins the tokens of a sequence into the key used by
// CodeCallSequences and CallDetailsSequences.
func SequenceKey(seq walk.Sequence) string { return strings.Join(seq, "-") }

// MarshalYAML writes the keys that apply to the record's type, in a fixed
// order.
func (r *Record) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, v any) error {
		var val yaml.Node
		if err := val.Encode(v); err != nil {
			return err
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, &val)
		return nil
	}

	type field struct {
		key  string
		val  any
		when bool
	}
	fields := []field{
		{"non_conformance_type", r.Type, true},
		{"components", r.Components, true},
		{"link_code_evidences", nonNil(r.LinkCodeEvidences), true},
		{"top_transitions_from_link_dyn_model", r.TopTransitions, r.Static() && r.TopTransitions != nil},
		{"link_dyn_model", r.LinkDynModel, r.LinkDynModel != ""},
		{"src_dyn_model", r.SrcDynModel, r.SrcDynModel != ""},
		{"dst_dyn_model", r.DstDynModel, r.DstDynModel != ""},
		{"potential_call_sequences", nonNil(r.PotentialCallSequences), r.Sampled},
		{"occurred_call_sequences", nonNil(r.OccurredCallSequences), r.Sampled},
		{"code_call_sequences", nonNilMap(r.CodeCallSequences), r.Sampled},
		{"call_details_sequences", nonNilMap(r.CallDetailsSequences), r.Sampled},
		{"missing_dynamic_model", r.MissingDynamicModel, len(r.MissingDynamicModel) > 0},
	}
	for _, f := range fields {
		if !f.when {
			continue
		}
		if err := add(f.key, f.val); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nonNilMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return map[string]V{}
	}
	return m
}
