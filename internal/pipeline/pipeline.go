// Package pipeline runs one conformance analysis of a project: it loads the
// static and runtime models, classifies the links and builds an
// interpretation for every non-conformance.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"catma/internal/conformance"
	"catma/internal/container"
	"catma/internal/interpret"
	"catma/internal/link"
	"catma/internal/logger"
	"catma/internal/runtimemodel"
	"catma/internal/staticmodel"
	"catma/internal/walk"
)

// Options override parts of a project config for one run.
type Options struct {
	// Project names the analysed system in the report.
	Project string
	// Seed overrides walks.seed when non-zero.
	Seed uint64
	// Workers overrides the project's worker count when positive.
	Workers int
	// Links restricts interpretation to the named non-conformances, given as
	// serialized links ("source-target"). Empty means all.
	Links []string
	// OutDir receives code-linked runtime models while records are built.
	// Empty disables them.
	OutDir string
	Log    *slog.Logger
}

// Result is the outcome of one run.
type Result struct {
	Project     string
	RunID       string
	Seed        uint64
	GeneratedAt time.Time

	Components   []string
	StaticLinks  []link.Link
	RuntimeLinks link.Set
	Conformance  conformance.Result
	Records      []*interpret.Record
}

// Run analyses the project described by cfg. Records are built concurrently
// on cfg.Workers goroutines; each one samples from its own generator seeded
// with the run seed plus its position in the sorted entry list, so the
// output does not depend on scheduling. Cancelling ctx stops scheduling new
// records and makes Run return ctx.Err().
func Run(ctx context.Context, cfg *container.ProjectConfig, opts Options) (*Result, error) {
	log := logger.OrDiscard(opts.Log)

	static, err := staticmodel.Load(cfg.StaticModel)
	if err != nil {
		return nil, err
	}
	models := runtimemodel.Dir{Path: cfg.DynamicModels}
	general, err := models.LoadGeneral(cfg.GeneralModel)
	if err != nil {
		return nil, fmt.Errorf("general model: %w", err)
	}

	res := &Result{
		Project:     opts.Project,
		RunID:       uuid.New().String(),
		Seed:        runSeed(cfg, opts),
		GeneratedAt: time.Now().UTC(),
		Components:  knownComponents(cfg, static),
	}
	res.StaticLinks = staticLinks(cfg, static)
	res.RuntimeLinks = conformance.RuntimeLinks(general, res.Components)
	res.Conformance = conformance.Classify(link.NewSet(res.StaticLinks...), res.RuntimeLinks)

	log.Info("classified",
		slog.String("run_id", res.RunID),
		slog.Int("static_links", len(res.StaticLinks)),
		slog.Int("runtime_links", res.RuntimeLinks.Len()),
		slog.Int("static_non_conformances", res.Conformance.Static.Len()),
		slog.Int("dynamic_non_conformances", res.Conformance.Dynamic.Len()))

	b := interpret.NewBuilder(static, general, models)
	b.Backward.Walks = cfg.Walks.Backward
	b.Forward.Walks = cfg.Walks.Forward
	b.Forward.Length = cfg.Walks.Length
	b.TopN = cfg.TopTransitions
	b.OutDir = opts.OutDir
	b.Log = log

	workers := cfg.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	entries, err := selectEntries(res.Conformance.Entries(), res.Components, opts.Links)
	if err != nil {
		return nil, err
	}
	records, err := buildRecords(ctx, b, entries, res.Seed, workers)
	if err != nil {
		return nil, err
	}
	res.Records = records
	return res, nil
}

func buildRecords(ctx context.Context, b *interpret.Builder, entries []conformance.Entry, seed uint64, workers int) ([]*interpret.Record, error) {
	if workers <= 0 {
		workers = 1
	}
	records := make([]*interpret.Record, len(entries))
	errs := make([]error, len(entries))

	p := pool.New().WithMaxGoroutines(workers)
	for i, e := range entries {
		if ctx.Err() != nil {
			break
		}
		p.Go(func() {
			rec, err := b.Build(e, walk.NewRand(seed+uint64(i)))
			if err != nil {
				errs[i] = fmt.Errorf("%s %s: %w", e.Type, e.Link, err)
				return
			}
			records[i] = rec
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return records, nil
}

// selectEntries keeps the entries whose link is named in only. Names are
// resolved against the known components, so hyphenated component names
// split unambiguously.
func selectEntries(entries []conformance.Entry, components []string, only []string) ([]conformance.Entry, error) {
	if len(only) == 0 {
		return entries, nil
	}
	spellings := make([]string, len(components))
	for i, c := range components {
		spellings[i] = link.Denormalize(c)
	}
	table := link.NewComponentTable(spellings)
	want := link.NewSet()
	for _, s := range only {
		l, err := table.Split(s)
		if err != nil {
			return nil, fmt.Errorf("select %q: %w", s, err)
		}
		want.Add(l)
	}
	var out []conformance.Entry
	for _, e := range entries {
		if want.Has(e.Link) {
			out = append(out, e)
		}
	}
	return out, nil
}

// runSeed picks the seed of a run: the option, then the project setting,
// then a random one.
func runSeed(cfg *container.ProjectConfig, opts Options) uint64 {
	switch {
	case opts.Seed != 0:
		return opts.Seed
	case cfg.Walks.Seed != 0:
		return cfg.Walks.Seed
	default:
		return rand.Uint64()
	}
}

// knownComponents returns the canonical names of the configured services,
// or of every static component, minus the excluded ones.
func knownComponents(cfg *container.ProjectConfig, static *staticmodel.Model) []string {
	names := cfg.Services
	if len(names) == 0 {
		names = static.Components()
	}
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		c := link.Normalize(n)
		if seen[c] || excluded(cfg, c) {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// staticLinks returns the static links whose endpoints are not excluded.
func staticLinks(cfg *container.ProjectConfig, static *staticmodel.Model) []link.Link {
	var out []link.Link
	for _, l := range static.Links() {
		if excluded(cfg, l.Source) || excluded(cfg, l.Target) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// excluded matches both the canonical and the hyphenated spelling of a
// component, so patterns may use either.
func excluded(cfg *container.ProjectConfig, canonical string) bool {
	return cfg.Excluded(canonical) || cfg.Excluded(link.Denormalize(canonical))
}
