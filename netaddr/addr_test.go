package netaddr

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBuffer(t *testing.T, s string) []byte {
	raw, err := ToBuffer(s)
	require.NoError(t, err, "ToBuffer(%q)", s)
	return raw
}

func TestClassifyString(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		str string
		typ HostType
	}{
		{"127.0.0.1", HostIpv4},
		{"8.8.8.8", HostIpv4},
		{"255.255.255.255", HostIpv4},
		{"0.0.0.0", HostIpv4},
		{"::1", HostIpv6},
		{"::", HostIpv6},
		{"2001:db8::1", HostIpv6},
		{"::ffff:1.2.3.4", HostIpv6},
		{"aaaaaaaaaaaaaaab.onion", HostOnion},
		{"example.com", HostDns},
		{"localhost", HostDns},
		{"1.2.3", HostDns},          // too few octets
		{"1.2.3.256", HostDns},      // octet out of range
		{"1.2.3.4.5", HostDns},      // too many octets
		{"0001.2.3.4", HostDns},     // octet too long
		{"1.2.3.4 ", HostDns},       // stray blank
		{"g::1", HostDns},           // not hex
		{"12345.onion", HostOnion},  // shape only, the label length is checked later
	}

	for _, c := range cases {
		assert.Equal(c.typ, ClassifyString(c.str), "ClassifyString(%q)", c.str)
	}
}

func TestRoundTrip(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		in string
		out string
	}{
		{"127.0.0.1", "127.0.0.1"},
		{"8.8.8.8", "8.8.8.8"},
		{"10.01.2.3", "10.1.2.3"},
		{"::1", "::1"},
		{"::", "::"},
		{"0:0:0:0:0:0:0:1", "::1"},
		{"2001:DB8::1", "2001:db8::1"},
		{"2001:db8:85a3:0:0:8a2e:370:7334", "2001:db8:85a3::8a2e:370:7334"},
		{"1:0:2:3:4:5:6:7", "1:0:2:3:4:5:6:7"}, // lone zero group is kept
		{"0:0:1:2:3:4:5:6", "::1:2:3:4:5:6"},
		{"1:2:3:4:5:6:0:0", "1:2:3:4:5:6::"},
		{"1:0:0:2:3:0:0:0", "1:0:0:2:3::"},     // longest run wins
		{"1:0:0:2:3:0:0:4", "1::2:3:0:0:4"},    // first run wins the tie
		{"::ffff:1.2.3.4", "1.2.3.4"},          // mapped renders as ipv4
		{"::ffff:0:1.2.3.4", "::ffff:0:102:304"},
		{"64:ff9b::8.8.8.8", "64:ff9b::808:808"},
		{"fe80::1", "fe80::1"},
		{"AAAAAAAAAAAAAAAB.onion", "aaaaaaaaaaaaaaab.onion"},
		{"fd87:d87e:eb43::1", "aaaaaaaaaaaaaaab.onion"}, // onion range renders as onion
	}

	for _, c := range cases {
		raw, err := ToBuffer(c.in)
		if !assert.NoError(err, "ToBuffer(%q)", c.in) {
			continue
		}
		assert.Len(raw, RawLen)
		assert.Equal(c.out, ToString(raw), "ToString(ToBuffer(%q))", c.in)

		// normalization is idempotent
		raw2, err := ToBuffer(c.out)
		assert.NoError(err)
		assert.Equal(raw, raw2, "re-parse of %q", c.out)
	}
}

func TestPermissiveIpv6(t *testing.T) {
	assert := assert.New(t)

	// shapes the split-based parser accepts on purpose
	accepted := []struct {
		in string
		out string
	}{
		{"1:::2", "1::2"},
		{":1:2:3:4:5:6:7", "0:1:2:3:4:5:6:7"},
		{"1:2:3:4:5:6:7:", "1:2:3:4:5:6:7:0"},
		{"1:2:3:4:5:6:7:8::", "1:2:3:4:5:6:7:8"},
		{"::1:2:3:4:5:6:7:8", "1:2:3:4:5:6:7:8"},
	}
	for _, c := range accepted {
		got, err := Normalize(c.in)
		if assert.NoError(err, "Normalize(%q)", c.in) {
			assert.Equal(c.out, got, "Normalize(%q)", c.in)
		}
	}

	rejected := []string{
		"1::2::3",          // two compression points
		"1:2:3",            // not enough groups
		"1:2:3:4:5:6:7",    // not enough groups
		"1:2:3:4:5:6:7:8:9",
		"12345::1",         // group too long
		"1.2.3.4:5::",      // ipv4 tail not last
		"::fffg",           // would be DNS by shape, checked below
	}
	for _, s := range rejected {
		if ClassifyString(s) != HostIpv6 {
			continue
		}
		_, err := ToBuffer(s)
		assert.Error(err, "ToBuffer(%q)", s)
		_, ok := err.(ErrMalformedAddress)
		assert.True(ok, "ToBuffer(%q) error type", s)
	}
}

func TestOnion(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	raw, err := ToBuffer("aaaaaaaaaaaaaaab.onion")
	require.NoError(err)
	assert.True(IsOnion(raw))
	assert.Equal(HostOnion, Classify(raw))
	assert.True(IsRoutable(raw))
	assert.Equal("aaaaaaaaaaaaaaab.onion", ToString(raw))

	// label must be exactly 16 base32 characters
	for _, s := range []string{
		"short.onion",
		"aaaaaaaaaaaaaaaaa.onion", // 17 chars
		"aaaaaaaaaaaaaaa1.onion",  // '1' is not in the base32 alphabet
	} {
		_, err := ToBuffer(s)
		assert.Error(err, "ToBuffer(%q)", s)
	}
}

func TestClassifyRawExclusive(t *testing.T) {
	assert := assert.New(t)

	for _, s := range []string{
		"8.8.8.8", "10.0.0.1", "127.0.0.1", "0.0.0.0", "255.255.255.255",
		"::", "::1", "2001:db8::1", "fe80::1", "fc00::1", "2002::1",
		"2001::1", "64:ff9b::1.2.3.4", "aaaaaaaaaaaaaaab.onion",
	} {
		raw := mustBuffer(t, s)

		count := 0
		if IsIpv4(raw) {
			count++
		}
		if IsIpv6(raw) {
			count++
		}
		if IsOnion(raw) {
			count++
		}
		assert.Equal(1, count, "classification of %q must be exclusive", s)
	}
}

func TestValid(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsValid(mustBuffer(t, "8.8.8.8")))
	assert.True(IsValid(mustBuffer(t, "::1")))
	assert.True(IsValid(mustBuffer(t, "10.0.0.1"))) // private but well formed

	assert.False(IsValid(mustBuffer(t, "0.0.0.0")))
	assert.False(IsValid(mustBuffer(t, "::")))
	assert.False(IsValid(mustBuffer(t, "255.255.255.255")))
	assert.False(IsValid(mustBuffer(t, "2001:db8::1")))

	// the shifted ipv4-mapped prefix
	shifted := make([]byte, RawLen)
	shifted[7] = 0xff
	shifted[8] = 0xff
	shifted[15] = 1
	assert.False(IsValid(shifted))
}

func TestRoutable(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		str string
		routable bool
	}{
		{"8.8.8.8", true},
		{"1.1.1.1", true},
		{"2600::1", true},
		{"2002::1", true},             // 6to4 stays routable
		{"2001::1", true},             // teredo stays routable
		{"64:ff9b::8.8.8.8", true},    // nat64 stays routable
		{"aaaaaaaaaaaaaaab.onion", true},

		{"10.0.0.1", false},           // rfc1918
		{"172.16.0.1", false},         // rfc1918
		{"192.168.1.1", false},        // rfc1918
		{"198.18.0.1", false},         // rfc2544
		{"169.254.1.1", false},        // rfc3927
		{"100.64.0.1", false},         // rfc6598
		{"192.0.2.1", false},          // rfc5737
		{"198.51.100.1", false},       // rfc5737
		{"203.0.113.1", false},        // rfc5737
		{"fe80::1", false},            // rfc4862
		{"fc00::1", false},            // rfc4193
		{"fd00::1", false},            // rfc4193
		{"2001:10::1", false},         // rfc4843
		{"127.0.0.1", false},          // loopback
		{"0.1.2.3", false},            // zero network
		{"::1", false},                // loopback
		{"0.0.0.0", false},            // invalid
		{"255.255.255.255", false},    // invalid
		{"2001:db8::1", false},        // invalid (documentation)
	}

	for _, c := range cases {
		raw := mustBuffer(t, c.str)
		assert.Equal(c.routable, IsRoutable(raw), "IsRoutable(%q)", c.str)

		// routable implies valid
		if IsRoutable(raw) {
			assert.True(IsValid(raw), "IsValid(%q)", c.str)
		}
	}

	// near misses of the private ranges
	assert.True(IsRoutable(mustBuffer(t, "172.32.0.1")))
	assert.True(IsRoutable(mustBuffer(t, "100.128.0.1")))
	assert.True(IsRoutable(mustBuffer(t, "198.20.0.1")))
}

func TestRfcBattery(t *testing.T) {
	assert := assert.New(t)

	type pred func([]byte) bool
	cases := []struct {
		str string
		fn pred
		name string
	}{
		{"10.255.0.3", IsRfc1918, "rfc1918"},
		{"172.31.255.1", IsRfc1918, "rfc1918"},
		{"192.168.255.1", IsRfc1918, "rfc1918"},
		{"198.18.0.1", IsRfc2544, "rfc2544"},
		{"198.19.255.1", IsRfc2544, "rfc2544"},
		{"2001:db8::1", IsRfc3849, "rfc3849"},
		{"169.254.1.1", IsRfc3927, "rfc3927"},
		{"2002::1", IsRfc3964, "rfc3964"},
		{"fc00::1", IsRfc4193, "rfc4193"},
		{"fd12::1", IsRfc4193, "rfc4193"},
		{"2001::1", IsRfc4380, "rfc4380"},
		{"2001:10::1", IsRfc4843, "rfc4843"},
		{"2001:1f::1", IsRfc4843, "rfc4843"},
		{"fe80::1", IsRfc4862, "rfc4862"},
		{"192.0.2.1", IsRfc5737, "rfc5737"},
		{"64:ff9b::1.2.3.4", IsRfc6052, "rfc6052"},
		{"::ffff:0:1.2.3.4", IsRfc6145, "rfc6145"},
		{"100.127.0.1", IsRfc6598, "rfc6598"},
	}

	for _, c := range cases {
		assert.True(c.fn(mustBuffer(t, c.str)), "%s(%q)", c.name, c.str)
	}

	negative := []struct {
		str string
		fn pred
		name string
	}{
		{"11.0.0.1", IsRfc1918, "rfc1918"},
		{"172.32.0.1", IsRfc1918, "rfc1918"},
		{"198.20.0.1", IsRfc2544, "rfc2544"},
		{"2001:db9::1", IsRfc3849, "rfc3849"},
		{"2001:20::1", IsRfc4843, "rfc4843"},
		{"fe80:1::1", IsRfc4862, "rfc4862"}, // prefix is /64
		{"100.128.0.1", IsRfc6598, "rfc6598"},
		{"2001:1::1", IsRfc4380, "rfc4380"},
	}
	for _, c := range negative {
		assert.False(c.fn(mustBuffer(t, c.str)), "%s(%q)", c.name, c.str)
	}
}

func TestLocalAndMulticast(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsLocal(mustBuffer(t, "127.0.0.1")))
	assert.True(IsLocal(mustBuffer(t, "127.1.2.3")))
	assert.True(IsLocal(mustBuffer(t, "0.1.2.3")))
	assert.True(IsLocal(mustBuffer(t, "::1")))
	assert.False(IsLocal(mustBuffer(t, "8.8.8.8")))
	assert.False(IsLocal(mustBuffer(t, "::2")))

	assert.True(IsMulticast(mustBuffer(t, "224.0.0.1")))
	assert.True(IsMulticast(mustBuffer(t, "239.1.2.3")))
	assert.True(IsMulticast(mustBuffer(t, "ff02::1")))
	assert.False(IsMulticast(mustBuffer(t, "223.0.0.1")))
	assert.False(IsMulticast(mustBuffer(t, "fe80::1")))
}

func TestIpConversion(t *testing.T) {
	assert := assert.New(t)

	raw := FromIp(net.ParseIP("8.8.8.8"))
	assert.Equal(mustBuffer(t, "8.8.8.8"), raw)
	assert.Equal("8.8.8.8", ToIp(raw).String())

	raw = FromIp(net.ParseIP("2001:db8::1"))
	assert.Equal(mustBuffer(t, "2001:db8::1"), raw)
	assert.Equal("2001:db8::1", ToIp(raw).String())

	assert.Nil(FromIp(nil))
}

func TestToBufferDns(t *testing.T) {
	assert := assert.New(t)

	_, err := ToBuffer("example.com")
	assert.Error(err)
	_, ok := err.(ErrMalformedAddress)
	assert.True(ok)
}
