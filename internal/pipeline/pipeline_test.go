package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"catma/internal/conformance"
	"catma/internal/container"
	"catma/internal/link"
	"catma/internal/pipeline"
	"catma/internal/runtimemodel"
)

const staticJSON = `{
  "edges": {
    "user -> order": {"file": "https://git.example/shop/blob/master/user/client.go", "line": 7},
    "admin -> order": {"file": "https://git.example/shop/blob/master/admin/client.go", "line": 9},
    "order -> catalog": {"file": "https://git.example/shop/blob/master/order/client.go", "line": 12}
  }
}`

const generalDOT = `digraph DFA {
	0 -> 1 [label="8080__>orders__200__get__user__order\n5"];
	1 -> 2 [label="9090__>pay__201__post__order__payment\n3"];
	0 -> 3 [label="8080__>orders__200__get__admin__order\n2"];
}`

const serviceDOT = `digraph DFA {
	0 -> 1 [label="8080__>orders__200__get__user__order\n5"];
}`

const linkDOT = `digraph DFA {
	0 -> 1 [label="9090__>pay__201__post__order__payment\n3"];
}`

func newProject(t *testing.T) *container.ProjectConfig {
	t.Helper()
	dir := t.TempDir()
	staticPath := filepath.Join(dir, "static.json")
	require.NoError(t, os.WriteFile(staticPath, []byte(staticJSON), 0o644))

	models := filepath.Join(dir, "models")
	require.NoError(t, os.MkdirAll(models, 0o755))
	d := runtimemodel.Dir{Path: models}
	require.NoError(t, os.WriteFile(d.GeneralPath("general"), []byte(generalDOT), 0o644))
	for _, svc := range []string{"order", "catalog"} {
		require.NoError(t, os.WriteFile(d.ServicePath(svc), []byte(serviceDOT), 0o644))
	}
	require.NoError(t, os.WriteFile(d.LinkPath(link.New("order", "payment")), []byte(linkDOT), 0o644))

	cfg := &container.ProjectConfig{
		StaticModel:   staticPath,
		DynamicModels: models,
		GeneralModel:  "general",
		Services:      []string{"user", "admin", "order", "catalog", "payment"},
		Walks:         container.Walks{Backward: 200, Forward: 200, Seed: 7},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestRun(t *testing.T) {
	cfg := newProject(t)
	out := t.TempDir()

	res, err := pipeline.Run(context.Background(), cfg, pipeline.Options{Project: "shop", OutDir: out})
	require.NoError(t, err)

	assert.Equal(t, uint64(7), res.Seed)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"admin", "catalog", "order", "payment", "user"}, res.Components)
	assert.Equal(t, []string{"order-payment"}, res.Conformance.Static.Strings())
	assert.Equal(t, []string{"order-catalog"}, res.Conformance.Dynamic.Strings())

	require.Len(t, res.Records, 2)
	assert.Equal(t, "static-order-payment", res.Records[0].Name())
	assert.Equal(t, "dynamic-order-catalog", res.Records[1].Name())
	assert.NotEmpty(t, res.Records[0].TopTransitions)
	assert.True(t, res.Records[1].Sampled)

	_, err = os.Stat(filepath.Join(out, "code_linked_models", "order_payment_link_model.dot"))
	assert.NoError(t, err)
}

func TestRunReproducible(t *testing.T) {
	cfg := newProject(t)

	a, err := pipeline.Run(context.Background(), cfg, pipeline.Options{Seed: 99, Workers: 1})
	require.NoError(t, err)
	b, err := pipeline.Run(context.Background(), cfg, pipeline.Options{Seed: 99, Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, uint64(99), a.Seed)
	assert.NotEqual(t, a.RunID, b.RunID)
	require.Len(t, b.Records, len(a.Records))
	for i := range a.Records {
		want, err := yaml.Marshal(a.Records[i])
		require.NoError(t, err)
		got, err := yaml.Marshal(b.Records[i])
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got), a.Records[i].Name())
	}
}

func TestRunExclude(t *testing.T) {
	cfg := newProject(t)
	cfg.Exclude = []string{"cat*"}

	res, err := pipeline.Run(context.Background(), cfg, pipeline.Options{})
	require.NoError(t, err)

	assert.NotContains(t, res.Components, "catalog")
	assert.Equal(t, 0, res.Conformance.Dynamic.Len())
	for _, l := range res.StaticLinks {
		assert.NotEqual(t, "catalog", l.Target)
	}
}

func TestRunStaticComponentsByDefault(t *testing.T) {
	cfg := newProject(t)
	cfg.Services = nil

	res, err := pipeline.Run(context.Background(), cfg, pipeline.Options{})
	require.NoError(t, err)

	// payment has no static evidence, so the runtime link to it is unknown.
	assert.Equal(t, []string{"admin", "catalog", "order", "user"}, res.Components)
	assert.Equal(t, 0, res.Conformance.Static.Len())
	assert.Equal(t, []string{"order-catalog"}, res.Conformance.Dynamic.Strings())
}

func TestRunSelectLinks(t *testing.T) {
	cfg := newProject(t)

	res, err := pipeline.Run(context.Background(), cfg, pipeline.Options{Links: []string{"Order-Catalog"}})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "dynamic-order-catalog", res.Records[0].Name())
	// Classification is unaffected by the selection.
	assert.Equal(t, 1, res.Conformance.Static.Len())

	_, err = pipeline.Run(context.Background(), cfg, pipeline.Options{Links: []string{"a-b-c-d-e"}})
	assert.ErrorIs(t, err, link.ErrMalformedLink)
}

func TestRunCancelled(t *testing.T) {
	cfg := newProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Run(ctx, cfg, pipeline.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunMissingGeneralModel(t *testing.T) {
	cfg := newProject(t)
	cfg.GeneralModel = "nope"

	_, err := pipeline.Run(context.Background(), cfg, pipeline.Options{})
	assert.ErrorIs(t, err, runtimemodel.ErrModelNotFound)
}

func TestWrite(t *testing.T) {
	cfg := newProject(t)
	out := t.TempDir()
	res, err := pipeline.Run(context.Background(), cfg, pipeline.Options{Project: "shop", OutDir: out})
	require.NoError(t, err)
	require.NoError(t, pipeline.Write(res, out))

	for _, p := range []string{
		"summary.yaml",
		"interpretations/static-order-payment.yaml",
		"interpretations/dynamic-order-catalog.yaml",
		"interpretations/static-order-payment.md",
		"index.md",
		"architecture.puml",
		"graphs/architecture.md",
	} {
		_, err := os.Stat(filepath.Join(out, filepath.FromSlash(p)))
		assert.NoError(t, err, p)
	}

	data, err := os.ReadFile(filepath.Join(out, pipeline.SummaryFile))
	require.NoError(t, err)
	var s pipeline.Summary
	require.NoError(t, yaml.Unmarshal(data, &s))
	assert.Equal(t, res.RunID, s.RunID)
	assert.Equal(t, uint64(7), s.Seed)
	assert.Equal(t, []string{"order-payment"}, s.StaticNonConformances)
	assert.Equal(t, []string{"order-catalog"}, s.DynamicNonConformances)
	assert.Equal(t, []string{
		"interpretations/static-order-payment.yaml",
		"interpretations/dynamic-order-catalog.yaml",
	}, s.Interpretations)

	data, err = os.ReadFile(filepath.Join(out, "interpretations", "dynamic-order-catalog.yaml"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, conformance.TypeDynamic, doc["non_conformance_type"])
}
