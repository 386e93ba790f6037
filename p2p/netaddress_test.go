package p2p

import (
	"bvnet/ec"
	"bvnet/netaddr"

	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randNodeId() NodeId {
	priv := ec.NewPrivKey()
	return PubKeyToNodeId(priv.PubKey())
}

func mustNetAddrIp(t *testing.T, host string) *NetAddress {
	na := NewNetAddressIpPort(net.ParseIP(host), 26656)
	require.NotNil(t, na.Raw, "bad ip literal %q", host)
	return na
}

func mustNetAddrOnion(t *testing.T, host string) *NetAddress {
	na, err := NewNetAddressStringWithOptionalId(host + ":26656")
	require.Nil(t, err)
	require.Equal(t, netaddr.HostOnion, na.Type)
	return na
}

func TestNewNetAddress(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	tcpAddr, err := net.ResolveTCPAddr("tcp", "127.0.0.1:8080")
	require.Nil(err)

	id := randNodeId()
	addr := NewNetAddress(id, tcpAddr)
	assert.Equal(string(id)+"@127.0.0.1:8080", addr.String())
	assert.Equal(netaddr.HostIpv4, addr.Type)
	assert.Equal(uint16(8080), addr.Port)
	assert.True(addr.Ip().Equal(net.ParseIP("127.0.0.1")))
}

func TestNewNetAddressString(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	id := string(randNodeId())

	cases := []struct {
		name     string
		addr     string
		expected string
		correct  bool
	}{
		{"no id", "127.0.0.1:8080", "", false},
		{"no id with protocol", "tcp://127.0.0.1:8080", "", false},
		{"ipv4", id + "@127.0.0.1:8080", id + "@127.0.0.1:8080", true},
		{"ipv4 with protocol", "tcp://" + id + "@127.0.0.1:8080", id + "@127.0.0.1:8080", true},
		{"ipv4 without port", id + "@127.0.0.1", id + "@127.0.0.1:0", true},
		{"ipv6", id + "@[2607:f8b0::88]:8080", id + "@[2607:f8b0::88]:8080", true},
		{"ipv6 uppercase", id + "@[2607:F8B0::88]:8080", id + "@[2607:f8b0::88]:8080", true},
		{"mapped ipv4", id + "@[::ffff:8.8.8.8]:8080", id + "@8.8.8.8:8080", true},
		{"onion", id + "@abcdefghijklmnop.onion:8080", id + "@abcdefghijklmnop.onion:8080", true},
		{"malformed id", "deadbeef@127.0.0.1:8080", "", false},
		{"empty host", id + "@:8080", "", false},
		{"bad port", id + "@127.0.0.1:notaport", "", false},
		{"port overflow", id + "@127.0.0.1:123456", "", false},
		{"unclosed bracket", id + "@[2607:f8b0::88:8080", "", false},
		{"empty", "", "", false},
	}

	for _, tc := range cases {
		na, err := NewNetAddressString(tc.addr)
		if tc.correct {
			require.Nil(err, tc.name)
			assert.Equal(tc.expected, na.String(), tc.name)
		} else {
			assert.NotNil(err, tc.name)
		}
	}
}

func TestNewNetAddressStringWithOptionalId(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	na, err := NewNetAddressStringWithOptionalId("127.0.0.1:8080")
	require.Nil(err)
	assert.Equal(NodeId(""), na.NodeId)
	assert.Equal("127.0.0.1:8080", na.String())

	id := string(randNodeId())
	na, err = NewNetAddressStringWithOptionalId(id + "@127.0.0.1:8080")
	require.Nil(err)
	assert.Equal(NodeId(id), na.NodeId)
	assert.Equal(id+"@127.0.0.1:8080", na.String())
}

func TestNewNetAddressStrings(t *testing.T) {
	assert := assert.New(t)

	id1 := string(randNodeId())
	id2 := string(randNodeId())
	addrs, errs := NewNetAddressStrings([]string{
		"127.0.0.1:8080",
		id1 + "@127.0.0.1:8080",
		id2 + "@127.0.0.2:8080",
	})
	assert.Equal(1, len(errs))
	assert.Equal(2, len(addrs))
}

func TestNetAddressProperties(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	id := string(randNodeId())

	cases := []struct {
		addr     string
		valid    bool
		routable bool
		local    bool
	}{
		{id + "@127.0.0.1:8080", true, false, true},
		{id + "@10.0.2.1:8080", true, false, false},
		{id + "@192.168.1.9:8080", true, false, false},
		{id + "@8.8.8.8:8080", true, true, false},
		{id + "@[2607:f8b0::88]:8080", true, true, false},
		{id + "@[2001:db8::1]:8080", false, false, false},
		{id + "@[fe80::1]:8080", true, false, false},
		{id + "@[fc00::1]:8080", true, false, false},
		{id + "@abcdefghijklmnop.onion:8080", true, true, false},
		{id + "@0.0.0.0:8080", false, false, true},
		{id + "@255.255.255.255:8080", false, false, false},
	}

	for _, tc := range cases {
		na, err := NewNetAddressString(tc.addr)
		require.Nil(err, tc.addr)

		assert.Equal(tc.valid, na.Valid(), "valid %v", tc.addr)
		assert.Equal(tc.routable, na.Routable(), "routable %v", tc.addr)
		assert.Equal(tc.local, na.Local(), "local %v", tc.addr)
	}
}

func TestNetAddressReachabilityTo(t *testing.T) {
	assert := assert.New(t)

	v4a := mustNetAddrIp(t, "8.8.8.8")
	v4b := mustNetAddrIp(t, "1.1.1.1")
	v6a := mustNetAddrIp(t, "2607:f8b0::88")
	v6b := mustNetAddrIp(t, "2620:fe::fe")
	teredo := mustNetAddrIp(t, "2001:0:4136:e378:8000:63bf:3fff:fdd2")
	private := mustNetAddrIp(t, "10.0.2.1")
	onionA := mustNetAddrOnion(t, "abcdefghijklmnop.onion")
	onionB := mustNetAddrOnion(t, "zzzzzzzzzzzzzzzz.onion")

	// an unroutable address reaches nothing
	assert.Equal(0, private.ReachabilityTo(v4a))
	assert.Equal(0, private.ReachabilityTo(onionA))

	// same family beats cross family
	assert.True(v4a.ReachabilityTo(v4b) > v4a.ReachabilityTo(v6a))
	assert.True(v6a.ReachabilityTo(v6b) > v6a.ReachabilityTo(teredo))

	// hidden service to hidden service scores above everything else
	assert.True(onionA.ReachabilityTo(onionB) > v6a.ReachabilityTo(v6b))
	assert.True(onionA.ReachabilityTo(onionB) > v4a.ReachabilityTo(v4b))

	// teredo is a last resort for a native peer
	assert.True(v6a.ReachabilityTo(v6b) > teredo.ReachabilityTo(v6b))
	assert.True(teredo.ReachabilityTo(v4a) > teredo.ReachabilityTo(teredo))

	// anything can hand an ipv4 address to an ipv4 peer
	assert.Equal(v4a.ReachabilityTo(v4b), onionA.ReachabilityTo(v4b))
}

func TestNetAddressGroupKey(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		host  string
		group string
	}{
		{"127.0.0.1", "local"},
		{"10.0.2.1", "unroutable"},
		{"192.168.1.9", "unroutable"},
		{"[fe80::1]", "unroutable"},
		{"8.8.8.8", "8.8.0.0"},
		{"1.2.3.4", "1.2.0.0"},
		{"[2002:808:808::1]", "8.8.0.0"},
		{"[64:ff9b::808:808]", "8.8.0.0"},
		{"[2001:0:4136:e378:8000:63bf:3fff:fdd2]", "192.0.0.0"},
		{"[2001:470:1f10:c00::2]", "2001:470:1000::"},
		{"[2607:f8b0:4005:805::200e]", "2607:f8b0::"},
	}

	for _, tc := range cases {
		na, err := NewNetAddressStringWithOptionalId(tc.host + ":26656")
		require.Nil(t, err, tc.host)
		assert.Equal(tc.group, na.GroupKey(), tc.host)
	}

	assert.Equal("tor:0", mustNetAddrOnion(t, "abcdefghijklmnop.onion").GroupKey())
	assert.Equal("tor:14", mustNetAddrOnion(t, "zzzzzzzzzzzzzzzz.onion").GroupKey())
}

func TestNetAddressEqualAndSame(t *testing.T) {
	assert := assert.New(t)

	id1 := randNodeId()
	id2 := randNodeId()

	a := NewNetAddressIpPort(net.ParseIP("8.8.8.8"), 26656)
	a.NodeId = id1
	b := NewNetAddressIpPort(net.ParseIP("8.8.8.8"), 26656)
	b.NodeId = id1
	assert.True(a.Equal(b))
	assert.True(a.IsSame(b))

	c := NewNetAddressIpPort(net.ParseIP("8.8.8.8"), 26657)
	c.NodeId = id1
	assert.False(a.Equal(c))
	assert.True(a.IsSame(c)) // same id

	d := NewNetAddressIpPort(net.ParseIP("8.8.8.8"), 26656)
	d.NodeId = id2
	assert.False(a.Equal(d))
	assert.True(a.IsSame(d)) // same host and port

	e := NewNetAddressIpPort(net.ParseIP("1.1.1.1"), 26656)
	e.NodeId = id2
	assert.False(a.Equal(e))
	assert.False(a.IsSame(e))
}

func TestNetAddressJson(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	id := string(randNodeId())
	na, err := NewNetAddressString(id + "@8.8.8.8:26656")
	require.Nil(err)

	bz, err := json.Marshal(na)
	require.Nil(err)
	assert.Equal(`"`+id+`@8.8.8.8:26656"`, string(bz))

	var back NetAddress
	require.Nil(json.Unmarshal(bz, &back))
	assert.True(na.Equal(&back))
	assert.Equal(na.Raw, back.Raw)

	// an id-less address must round trip too
	anon, err := NewNetAddressStringWithOptionalId("8.8.8.8:26656")
	require.Nil(err)
	bz, err = json.Marshal(anon)
	require.Nil(err)
	require.Nil(json.Unmarshal(bz, &back))
	assert.True(anon.Equal(&back))

	assert.NotNil(back.UnmarshalJSON([]byte(`42`)))
}
