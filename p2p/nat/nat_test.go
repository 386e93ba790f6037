package nat

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNone(t *testing.T) {
	for _, mode := range []string{"", "none", "NONE", " none "} {
		n, err := Parse(mode)
		require.NoError(t, err)
		assert.Nil(t, n)
	}
}

func TestParseExtIp(t *testing.T) {
	n, err := Parse("extip:88.44.33.22")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "extip:88.44.33.22", n.String())

	ip, err := n.GetExternalAddress()
	require.NoError(t, err)
	assert.True(t, net.ParseIP("88.44.33.22").Equal(ip))

	assert.NoError(t, n.AddMapping("tcp", 26656, 26656, "x", time.Hour))
	assert.NoError(t, n.DeleteMapping("tcp", 26656, 26656))

	_, err = Parse("extip:not-an-ip")
	assert.Error(t, err)
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse("carrier-grade")
	assert.Error(t, err)
}
