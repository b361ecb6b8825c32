package link_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catma/internal/link"
)

func TestSplitLink(t *testing.T) {
	tests := map[string]struct {
		in       string
		src, dst string
		wantErr  bool
	}{
		"two tokens":   {in: "order-catalog", src: "order", dst: "catalog"},
		"three tokens": {in: "user-admin-server", src: "user", dst: "admin-server"},
		"four tokens":  {in: "api-gateway-admin-server", src: "api-gateway", dst: "admin-server"},
		"one token":    {in: "order", wantErr: true},
		"five tokens":  {in: "a-b-c-d-e", wantErr: true},
		"empty side":   {in: "order-", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			src, dst, err := link.SplitLink(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, link.ErrMalformedLink)
				var me *link.MalformedLinkError
				assert.True(t, errors.As(err, &me))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.src, src)
			assert.Equal(t, tc.dst, dst)
		})
	}
}

func TestLinkForms(t *testing.T) {
	l := link.New("Order", "Catalog")

	assert.Equal(t, "order-catalog", l.String())
	assert.Equal(t, "order__catalog", l.Token())
	assert.Equal(t, link.Link{Source: "catalog", Target: "order"}, l.Reverse())

	back, err := link.ParseToken(l.Token())
	require.NoError(t, err)
	assert.Equal(t, l, back)

	_, err = link.ParseToken("order")
	assert.ErrorIs(t, err, link.ErrMalformedLink)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "admin_server", link.Normalize("Admin-Server"))
	assert.Equal(t, "admin-server", link.Denormalize("admin_server"))
}

func TestSet(t *testing.T) {
	s := link.NewSet(link.New("b", "c"), link.New("a", "b"))
	s.Add(link.New("a", "b"))

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(link.New("a", "b")))
	assert.False(t, s.Has(link.New("b", "a")))
	assert.True(t, s.HasEitherDirection(link.New("b", "a")))
	assert.Equal(t, []string{"a-b", "b-c"}, s.Strings())
}

func TestComponentTableSplit(t *testing.T) {
	table := link.NewComponentTable([]string{"order", "Admin-Server", "user", "api-gateway"})

	tests := map[string]struct {
		in      string
		want    link.Link
		wantErr bool
	}{
		"plain":               {in: "order-user", want: link.Link{Source: "order", Target: "user"}},
		"hyphenated target":   {in: "user-admin-server", want: link.Link{Source: "user", Target: "admin_server"}},
		"hyphenated both":     {in: "api-gateway-admin-server", want: link.Link{Source: "api_gateway", Target: "admin_server"}},
		"normalized spelling": {in: "user-admin_server", want: link.Link{Source: "user", Target: "admin_server"}},
		"unknown falls back":  {in: "billing-ledger", want: link.Link{Source: "billing", Target: "ledger"}},
		"unknown five":        {in: "a-b-c-d-e", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := table.Split(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, link.ErrMalformedLink)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComponentTableAmbiguous(t *testing.T) {
	// "a-b-c" splits as a|b-c and a-b|c when all four names are known.
	table := link.NewComponentTable([]string{"a", "b-c", "a-b", "c"})

	_, err := table.Split("a-b-c")
	var me *link.MalformedLinkError
	require.True(t, errors.As(err, &me))
	assert.Contains(t, me.Error(), "ambiguous")
}

func TestComponentTableLookup(t *testing.T) {
	table := link.NewComponentTable([]string{"Admin-Server", "order", ""})

	c, ok := table.Canonical("admin-server")
	require.True(t, ok)
	assert.Equal(t, "admin_server", c)

	s, ok := table.Serialized("admin_server")
	require.True(t, ok)
	assert.Equal(t, "admin-server", s)

	assert.True(t, table.Known("ORDER"))
	assert.False(t, table.Known("catalog"))
	assert.Equal(t, []string{"admin_server", "order"}, table.Components())
	assert.Equal(t, 2, table.Len())
}
