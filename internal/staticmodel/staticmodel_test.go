package staticmodel_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catma/internal/link"
	"catma/internal/staticmodel"
)

const staticJSON = `{
  "nodes": {
    "Order": {
      "file": "https://github.com/acme/shop/blob/master/master/order/main.go",
      "line": 1,
      "sub_items": {
        "Endpoint": {"file": "https://github.com/acme/shop/blob/master/order/api.go", "line": "40"}
      }
    },
    "admin-server": {"file": "https://github.com/acme/shop/blob/master/admin/app.go", "line": 3}
  },
  "edges": {
    "user -> order": {"file": "https://github.com/acme/shop/blob/master/user/client.go", "line": 7},
    "Order -> Catalog": {"file": "https://github.com/acme/shop/blob/master/master/order/client.go", "line": 12},
    "user -> admin-server": {"file": "heuristic", "line": "0"}
  }
}`

func TestParse(t *testing.T) {
	m, err := staticmodel.Parse([]byte(staticJSON))
	require.NoError(t, err)

	assert.Equal(t, []link.Link{
		{Source: "user", Target: "order"},
		{Source: "order", Target: "catalog"},
		{Source: "user", Target: "admin_server"},
	}, m.Links())

	assert.Equal(t, []staticmodel.Evidence{{
		Kind:     staticmodel.KindLink,
		Location: "https://github.com/acme/shop/blob/master/order/client.go",
		Line:     "12",
	}}, m.Evidence(link.New("order", "catalog")))

	assert.NotNil(t, m.Evidence(link.New("catalog", "order")))
	assert.Empty(t, m.Evidence(link.New("catalog", "order")))

	loc, ok := m.FirstLocation(link.New("user", "admin_server"))
	require.True(t, ok)
	assert.Equal(t, "heuristic", loc)

	assert.Equal(t, []string{"admin_server", "catalog", "order", "user"}, m.Components())
	assert.Equal(t, []string{"order", "admin_server"}, m.Services())
	assert.Equal(t, []staticmodel.Evidence{
		{Kind: staticmodel.KindService, Location: "https://github.com/acme/shop/blob/master/order/main.go", Line: "1"},
		{Kind: "Endpoint", Location: "https://github.com/acme/shop/blob/master/order/api.go", Line: "40"},
	}, m.ServiceEvidence("Order"))
	assert.True(t, m.LinkSet().Has(link.New("user", "order")))
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"invalid json": `{"edges": `,
		"no edges":     `{"nodes": {}}`,
		"bad key":      `{"edges": {"order catalog": {"file": "x", "line": 1}}}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := staticmodel.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "static.json")
	require.NoError(t, os.WriteFile(path, []byte(staticJSON), 0o644))

	m, err := staticmodel.Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Links(), 3)

	_, err = staticmodel.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCodeCallSequence(t *testing.T) {
	m, err := staticmodel.Parse([]byte(staticJSON))
	require.NoError(t, err)

	ev := m.CodeCallSequence([]string{"user__order", "order__catalog", "garbage", "order__payment"})
	require.Len(t, ev, 2)
	assert.Equal(t, "7", ev[0].Line)
	assert.Equal(t, "12", ev[1].Line)

	assert.Empty(t, m.CodeCallSequence(nil))
}

func TestBuildIndex(t *testing.T) {
	idx := staticmodel.BuildIndex([]link.Link{
		link.New("order", "catalog"),
		link.New("user", "order"),
		link.New("admin", "order"),
		link.New("user", "catalog"),
	})

	assert.Equal(t, []string{"admin", "user"}, idx.Parents("order"))
	assert.Equal(t, []string{"order", "user"}, idx.Parents("catalog"))
	assert.Equal(t, []string{"catalog", "order"}, idx.Children("user"))
	assert.Empty(t, idx.Parents("user"))
	assert.Empty(t, idx.Children("catalog"))
	assert.True(t, idx.Has("admin"))
	assert.False(t, idx.Has("billing"))
	assert.Equal(t, []string{"admin", "catalog", "order", "user"}, idx.Components())

	// Returned slices are copies.
	p := idx.Parents("order")
	p[0] = "mutated"
	assert.Equal(t, []string{"admin", "user"}, idx.Parents("order"))
}

var components = []string{"a", "b", "c", "d", "e"}

// genLinks draws link lists over a small fixed component alphabet so that
// generated graphs share nodes and contain cycles.
func genLinks() gopter.Gen {
	n := len(components)
	return gen.SliceOf(gen.IntRange(0, n*n-1)).Map(func(ids []int) []link.Link {
		out := make([]link.Link, len(ids))
		for i, id := range ids {
			out[i] = link.New(components[id/n], components[id%n])
		}
		return out
	})
}

func TestIndexProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("rebuild yields identical adjacency", prop.ForAll(
		func(links []link.Link) bool {
			reversed := make([]link.Link, len(links))
			for i, l := range links {
				reversed[len(links)-1-i] = l
			}
			a, b := staticmodel.BuildIndex(links), staticmodel.BuildIndex(reversed)
			if !reflect.DeepEqual(a.Components(), b.Components()) {
				return false
			}
			for _, c := range a.Components() {
				if !reflect.DeepEqual(a.Parents(c), b.Parents(c)) || !reflect.DeepEqual(a.Children(c), b.Children(c)) {
					return false
				}
			}
			return true
		},
		genLinks(),
	))

	properties.Property("parents and children mirror each other", prop.ForAll(
		func(links []link.Link) bool {
			idx := staticmodel.BuildIndex(links)
			for _, l := range links {
				if !contains(idx.Children(l.Source), l.Target) || !contains(idx.Parents(l.Target), l.Source) {
					return false
				}
			}
			for _, c := range idx.Components() {
				for _, p := range idx.Parents(c) {
					if !contains(idx.Children(p), c) {
						return false
					}
				}
			}
			return true
		},
		genLinks(),
	))

	properties.TestingRun(t)
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
