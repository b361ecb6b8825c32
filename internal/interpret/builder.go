package interpret

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"catma/internal/conformance"
	"catma/internal/link"
	"catma/internal/logger"
	"catma/internal/runtimemodel"
	"catma/internal/staticmodel"
	"catma/internal/trail"
	"catma/internal/walk"
)

// CodeLinkedDir is the output subdirectory for code-linked runtime models.
const CodeLinkedDir = "code_linked_models"

// Builder builds interpretation records. Its models are read-only, so Build
// may be called from several goroutines.
type Builder struct {
	Static  *staticmodel.Model
	Index   *staticmodel.Index
	General *runtimemodel.Model
	Models  runtimemodel.Dir

	Backward walk.BackwardOptions
	Forward  walk.ForwardOptions
	TopN     int

	// OutDir, when set, receives code-linked copies of every per-component
	// model consulted, under CodeLinkedDir.
	OutDir string
	Log    *slog.Logger

	mu      sync.Mutex
	written map[string]bool
}

// NewBuilder returns a builder with default walk budgets.
func NewBuilder(static *staticmodel.Model, general *runtimemodel.Model, models runtimemodel.Dir) *Builder {
	return &Builder{
		Static:   static,
		Index:    staticmodel.BuildIndex(static.Links()),
		General:  general,
		Models:   models,
		Backward: walk.DefaultBackwardOptions(),
		Forward:  walk.DefaultForwardOptions(),
		TopN:     10,
	}
}

// Build explains one non-conformance. r drives the walks of a dynamic
// non-conformance.
func (b *Builder) Build(e conformance.Entry, r walk.Rand) (*Record, error) {
	log := logger.OrDiscard(b.Log).With(slog.String("link", e.Link.String()), slog.String("type", e.Type))

	rec := &Record{
		Type:              e.Type,
		Link:              e.Link,
		Components:        []string{link.Denormalize(e.Link.Source), link.Denormalize(e.Link.Target)},
		LinkCodeEvidences: b.Static.Evidence(e.Link),
	}

	switch e.Type {
	case conformance.TypeStatic:
		if err := b.buildStatic(rec, log); err != nil {
			return nil, err
		}
	case conformance.TypeDynamic:
		if err := b.buildDynamic(rec, r, log); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown non-conformance type %q", e.Type)
	}
	return rec, nil
}

func (b *Builder) buildStatic(rec *Record, log *slog.Logger) error {
	m, err := b.Models.LoadLink(rec.Link)
	if errors.Is(err, runtimemodel.ErrModelNotFound) {
		log.Warn("no runtime model for link", slog.String("path", b.Models.LinkPath(rec.Link)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("link model %s: %w", rec.Link, err)
	}
	rec.TopTransitions = runtimemodel.TopTransitions(m, b.TopN)
	rec.LinkDynModel, err = b.linkToCode(m, rec.Link.Source+"_"+rec.Link.Target+"_link_model")
	return err
}

func (b *Builder) buildDynamic(rec *Record, r walk.Rand, log *slog.Logger) error {
	src, dst := rec.Link.Source, rec.Link.Target

	srcModel, err := b.loadService(src)
	if err != nil {
		return err
	}
	dstModel, err := b.loadService(dst)
	if err != nil {
		return err
	}
	if srcModel != nil {
		if rec.SrcDynModel, err = b.linkToCode(srcModel, link.Denormalize(src)+"_service_model"); err != nil {
			return err
		}
	} else {
		rec.MissingDynamicModel = append(rec.MissingDynamicModel, src)
	}
	if dstModel != nil {
		if rec.DstDynModel, err = b.linkToCode(dstModel, link.Denormalize(dst)+"_service_model"); err != nil {
			return err
		}
	} else {
		rec.MissingDynamicModel = append(rec.MissingDynamicModel, dst)
	}
	if len(rec.MissingDynamicModel) > 0 {
		log.Info("skipping walks, component without runtime model", slog.Any("missing", rec.MissingDynamicModel))
		return nil
	}

	back := b.Backward
	back.Rand = r
	fwd := b.Forward
	fwd.Rand = r

	rec.Sampled = true
	rec.PotentialCallSequences = walk.SampleBackward(b.Index, dst, src, back)
	paths := walk.SampleForward(b.General, src, dst, fwd)
	rec.OccurredCallSequences = walk.FindOccurred(rec.PotentialCallSequences, paths)

	rec.CodeCallSequences = make(map[string][]staticmodel.Evidence, len(rec.PotentialCallSequences))
	for _, seq := range rec.PotentialCallSequences {
		rec.CodeCallSequences[SequenceKey(seq)] = b.Static.CodeCallSequence(seq)
	}
	rec.CallDetailsSequences = make(map[string][][]string, len(rec.OccurredCallSequences))
	for _, seq := range rec.OccurredCallSequences {
		rec.CallDetailsSequences[SequenceKey(seq)] = nonNil(trail.Correlate(seq, b.General))
	}

	log.Debug("sampled",
		slog.Int("potential", len(rec.PotentialCallSequences)),
		slog.Int("paths", len(paths)),
		slog.Int("occurred", len(rec.OccurredCallSequences)))
	return nil
}

// loadService returns the model of a component, or nil when it has none.
func (b *Builder) loadService(component string) (*runtimemodel.Model, error) {
	m, err := b.Models.LoadService(component)
	if errors.Is(err, runtimemodel.ErrModelNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("service model %s: %w", component, err)
	}
	return m, nil
}

// linkToCode writes a code-linked copy of m named name and returns its path
// relative to OutDir. Nothing is written when OutDir is empty.
func (b *Builder) linkToCode(m *runtimemodel.Model, name string) (string, error) {
	if b.OutDir == "" {
		return "", nil
	}
	rel := filepath.ToSlash(filepath.Join(CodeLinkedDir, name+".dot"))

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.written == nil {
		b.written = make(map[string]bool)
	}
	if b.written[rel] {
		return rel, nil
	}
	m.Name = name
	if _, err := runtimemodel.LinkToCode(m, filepath.Join(b.OutDir, CodeLinkedDir), b.Static.FirstLocation); err != nil {
		return "", err
	}
	b.written[rel] = true
	return rel, nil
}
