package templates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicIP(t *testing.T) {
	addr, err := PublicIP(" 203.0.113.9 ")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", addr.String())

	for _, ip := range []string{"10.1.2.3", "127.0.0.1", "::1", "192.168.0.4", "::ffff:10.0.0.1"} {
		_, err := PublicIP(ip)
		assert.ErrorIs(t, err, ErrNotRoutable, ip)
	}
	_, err = PublicIP("not-an-ip")
	assert.Error(t, err)
}

func TestIPAPIResolverSkipsPrivateAddresses(t *testing.T) {
	_, err := IPAPIResolver{}.Lookup(context.Background(), "10.0.0.8")
	assert.ErrorIs(t, err, ErrNotRoutable)
}

func TestFormatGeo(t *testing.T) {
	assert.Equal(t, "Recife, Pernambuco, Brazil", FormatGeo(Geo{City: "Recife", Region: "Pernambuco", Country: "Brazil"}))
	assert.Equal(t, "Brazil", FormatGeo(Geo{City: " ", Country: "Brazil"}))
	assert.Equal(t, "", FormatGeo(Geo{}))
}
