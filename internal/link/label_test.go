package link_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catma/internal/link"
)

func TestDecodeTransition(t *testing.T) {
	tests := map[string]struct {
		label   string
		want    string
		wantErr bool
	}{
		"plain": {
			label: "8080.0__>__200.0__get__user__admin-server\n12",
			want:  "user-admin_server",
		},
		"inbound direction": {
			label: "in__8080__>catalog>list__200__get__order__catalog\n3",
			want:  "order-catalog",
		},
		"outbound without frequency": {
			label: "out__8080__>__200__post__Order__Catalog",
			want:  "order-catalog",
		},
		"two fields": {
			label: "order__catalog",
			want:  "order-catalog",
		},
		"one field": {
			label:   "order\n1",
			wantErr: true,
		},
		"direction only": {
			label:   "in__order",
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := link.DecodeTransition(tc.label)
			if tc.wantErr {
				assert.ErrorIs(t, err, link.ErrShortLabel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestDecodeToken(t *testing.T) {
	tok, err := link.DecodeToken("8080.0__>applications__200.0__get__user__admin-server\n9")
	require.NoError(t, err)
	assert.Equal(t, "user__admin_server", tok)
}

func TestDetail(t *testing.T) {
	tests := map[string]struct {
		label string
		want  string
	}{
		"root path":        {label: "8080.0__>__200.0__get__user__admin-server\n12", want: "8080.0__/"},
		"nested path":      {label: "8080.0__>assets>js>app.js__304.0__get__user__admin-server\n8", want: "8080.0__/assets/js/app.js"},
		"direction prefix": {label: "in__9090__>orders__201__post__order__catalog\n1", want: "9090__/orders"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := link.Detail(tc.label)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFrequency(t *testing.T) {
	n, err := link.Frequency("8080__>__200__get__a__b\n 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = link.Frequency("8080__>__200__get__a__b")
	assert.Error(t, err)

	_, err = link.Frequency("8080__>__200__get__a__b\nmany")
	assert.Error(t, err)
}

func TestParseLabel(t *testing.T) {
	lb, err := link.ParseLabel("out__8080__>orders-42__500__put__order__payment-service\n7")
	require.NoError(t, err)

	assert.Equal(t, link.Label{
		Direction: "out",
		Port:      "8080",
		Path:      ">orders-42",
		Status:    "500",
		Method:    "put",
		Source:    "order",
		Target:    "payment-service",
		Frequency: 7,
	}, lb)
	assert.Equal(t, "/orders:42", lb.DecodedPath())
	assert.Equal(t, "order-payment_service", lb.Link().String())
}

func TestPathCodec(t *testing.T) {
	assert.Equal(t, ">api>v1-x", link.EncodePath("/api/v1:x"))
	assert.Equal(t, "/api/v1:x", link.DecodePath(">api>v1-x"))
}
