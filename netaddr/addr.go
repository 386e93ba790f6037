// Package netaddr models peer addresses: it parses the textual forms
// (IPv4, IPv6, onion, DNS names), normalizes them into a canonical
// 16-byte buffer, and classifies their routability.
package netaddr

import (
	"bvnet/util"

	"bytes"
	"encoding/base32"
	"fmt"
	"net"
	"strconv"
	"strings"
)

const RawLen = 16

const OnionSuffix = ".onion"

type HostType int

const (
	HostDns HostType = iota
	HostIpv4
	HostIpv6
	HostOnion
)

func (t HostType) String() string {
	switch t {
	case HostDns:
		return "dns"
	case HostIpv4:
		return "ipv4"
	case HostIpv6:
		return "ipv6"
	case HostOnion:
		return "onion"
	}
	return "unknown"
}

// The ipv4-mapped-in-ipv6 marker and the onion pseudo prefix
// (fd87:d87e:eb43::/48, inside the unique local range).
var v4MappedPrefix = []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff}
var onionPrefix = []byte{0xfd, 0x87, 0xd8, 0x7e, 0xeb, 0x43}

func checkRaw(raw []byte) {
	util.Assert(len(raw) == RawLen)
}

// IsIpv4String returns true if the string is a dotted quad:
// exactly 4 octets, each 1-3 decimal digits and at most 255.
func IsIpv4String(s string) bool {
	if len(s) < 7 || len(s) > 15 {
		return false
	}

	octets := 0
	digits := 0
	value := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' {
			if digits == 0 {
				return false
			}
			octets++
			if octets > 3 {
				return false
			}
			digits = 0
			value = 0
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
		digits++
		if digits > 3 {
			return false
		}
		value = value*10 + int(c-'0')
		if value > 255 {
			return false
		}
	}
	return octets == 3 && digits > 0
}

// IsIpv6String returns true if the string has the shape of an ipv6
// literal: 2 to 39 chars, hex digits, colons and dots only, and at
// least one colon. The real parsing happens in ToBuffer().
func IsIpv6String(s string) bool {
	if len(s) < 2 || len(s) > 39 {
		return false
	}

	colon := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ':':
			colon = true
		case c == '.':
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return colon
}

func IsOnionString(s string) bool {
	return len(s) >= 7 && strings.HasSuffix(s, OnionSuffix)
}

func IsDnsString(s string) bool {
	return ClassifyString(s) == HostDns
}

// ClassifyString classifies a host string, trying the families in
// fixed order: ipv4, ipv6, onion. Everything else is a DNS name.
func ClassifyString(s string) HostType {
	if IsIpv4String(s) {
		return HostIpv4
	}
	if IsIpv6String(s) {
		return HostIpv6
	}
	if IsOnionString(s) {
		return HostOnion
	}
	return HostDns
}

// Classify returns the family of a canonical buffer.
// Exactly one of ipv4, onion, ipv6 holds for any 16-byte value.
func Classify(raw []byte) HostType {
	checkRaw(raw)
	if IsIpv4(raw) {
		return HostIpv4
	}
	if IsOnion(raw) {
		return HostOnion
	}
	return HostIpv6
}

func IsIpv4(raw []byte) bool {
	checkRaw(raw)
	return bytes.Equal(raw[:12], v4MappedPrefix)
}

func IsIpv6(raw []byte) bool {
	checkRaw(raw)
	return !bytes.Equal(raw[:12], v4MappedPrefix) && !bytes.Equal(raw[:6], onionPrefix)
}

func IsOnion(raw []byte) bool {
	checkRaw(raw)
	return bytes.Equal(raw[:6], onionPrefix)
}

// ToBuffer converts a host string to its canonical 16-byte form.
// DNS names have no canonical form and yield ErrMalformedAddress.
func ToBuffer(s string) ([]byte, error) {
	switch ClassifyString(s) {
	case HostIpv4:
		return ipv4ToBuffer(s)
	case HostIpv6:
		return ipv6ToBuffer(s)
	case HostOnion:
		return onionToBuffer(s)
	}
	return nil, ErrMalformedAddress{s, "not an IP or onion address"}
}

func ipv4ToBuffer(s string) ([]byte, error) {
	raw := make([]byte, RawLen)
	copy(raw, v4MappedPrefix)

	idx := 12
	digits := 0
	value := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' {
			if digits == 0 || idx == RawLen {
				return nil, ErrMalformedAddress{s, "bad octet"}
			}
			raw[idx] = byte(value)
			idx++
			digits = 0
			value = 0
			continue
		}
		if c < '0' || c > '9' {
			return nil, ErrMalformedAddress{s, "bad octet"}
		}
		digits++
		value = value*10 + int(c-'0')
		if digits > 3 || value > 255 {
			return nil, ErrMalformedAddress{s, "bad octet"}
		}
	}

	if digits == 0 || idx != RawLen-1 {
		return nil, ErrMalformedAddress{s, "wrong number of octets"}
	}
	raw[idx] = byte(value)
	return raw, nil
}

// ipv6ToBuffer parses an ipv6 literal. The literal is split on
// colons; at most one '::' may occur and it stands for the groups
// missing from the total of 8 (a dotted ipv4 tail counts for 2).
// The extra empty fragments produced by the split around a leading,
// trailing or repeated colon are consumed by that one '::'.
func ipv6ToBuffer(s string) ([]byte, error) {
	parts := strings.Split(s, ":")

	missing := 8
	for _, p := range parts {
		if p == "" {
			continue
		}
		if IsIpv4String(p) {
			missing -= 2
		} else {
			missing--
		}
	}

	raw := make([]byte, 0, RawLen)
	compressed := false

	for i := 0; i < len(parts); i++ {
		p := parts[i]

		if p == "" {
			if compressed {
				return nil, ErrMalformedAddress{s, "more than one double colon"}
			}
			compressed = true

			for i+1 < len(parts) && parts[i+1] == "" {
				i++
			}

			if missing < 0 {
				return nil, ErrMalformedAddress{s, "too many groups"}
			}
			for j := 0; j < missing; j++ {
				raw = append(raw, 0, 0)
			}
			missing = 0
			continue
		}

		if IsIpv4String(p) {
			if i != len(parts)-1 {
				return nil, ErrMalformedAddress{s, "embedded IPv4 must be the last group"}
			}
			v4, err := ipv4ToBuffer(p)
			if err != nil {
				return nil, err
			}
			raw = append(raw, v4[12:]...)
			continue
		}

		if len(p) > 4 {
			return nil, ErrMalformedAddress{s, "group too long"}
		}
		group, err := strconv.ParseUint(p, 16, 16)
		if err != nil {
			return nil, ErrMalformedAddress{s, "bad hex group"}
		}
		raw = append(raw, byte(group>>8), byte(group))
	}

	if missing != 0 || len(raw) != RawLen {
		return nil, ErrMalformedAddress{s, "wrong length"}
	}
	return raw, nil
}

func onionToBuffer(s string) ([]byte, error) {
	label := s[:len(s)-len(OnionSuffix)]
	if len(label) != 16 {
		return nil, ErrMalformedAddress{s, "onion label must be 16 characters"}
	}

	data, err := base32.StdEncoding.DecodeString(strings.ToUpper(label))
	if err != nil {
		return nil, ErrMalformedAddress{s, "bad base32 in onion label"}
	}

	raw := make([]byte, 0, RawLen)
	raw = append(raw, onionPrefix...)
	raw = append(raw, data...)
	return raw, nil
}

// ToString renders a canonical buffer in its shortest textual form.
// Mapped ipv4 comes out as a dotted quad, onion as the lowercase
// base32 label plus ".onion", and ipv6 with the longest run of two
// or more zero groups collapsed to "::" (the first run on a tie).
func ToString(raw []byte) string {
	checkRaw(raw)

	if IsIpv4(raw) {
		return fmt.Sprintf("%d.%d.%d.%d", raw[12], raw[13], raw[14], raw[15])
	}

	if IsOnion(raw) {
		label := base32.StdEncoding.EncodeToString(raw[6:])
		return strings.ToLower(label) + OnionSuffix
	}

	var groups [8]int
	for i := 0; i < 8; i++ {
		groups[i] = int(raw[i*2])<<8 | int(raw[i*2+1])
	}

	// a lone zero group is not worth compressing
	bestStart := -1
	bestLen := 1
	for i := 0; i < 8; {
		if groups[i] != 0 {
			i++
			continue
		}
		j := i
		for j < 8 && groups[j] == 0 {
			j++
		}
		if j-i > bestLen {
			bestStart = i
			bestLen = j - i
		}
		i = j
	}

	var sb strings.Builder
	for i := 0; i < 8; i++ {
		if i == bestStart {
			sb.WriteString("::")
			i += bestLen - 1
			continue
		}
		if i > 0 && i != bestStart+bestLen {
			sb.WriteByte(':')
		}
		sb.WriteString(strconv.FormatUint(uint64(groups[i]), 16))
	}
	return sb.String()
}

// Normalize round-trips a host string through its canonical form.
func Normalize(s string) (string, error) {
	raw, err := ToBuffer(s)
	if err != nil {
		return "", err
	}
	return ToString(raw), nil
}

// FromIp converts a net.IP to the canonical form.
func FromIp(ip net.IP) []byte {
	if ip == nil {
		return nil
	}
	if ip4 := ip.To4(); ip4 != nil {
		raw := make([]byte, RawLen)
		copy(raw, v4MappedPrefix)
		copy(raw[12:], ip4)
		return raw
	}
	return util.CloneBytes(ip.To16())
}

// ToIp converts a canonical buffer to a net.IP.
// Onion buffers come out as their pseudo ipv6 bytes.
func ToIp(raw []byte) net.IP {
	checkRaw(raw)
	return net.IP(util.CloneBytes(raw))
}

func IsNull(raw []byte) bool {
	checkRaw(raw)
	if IsIpv4(raw) {
		return raw[12] == 0 && raw[13] == 0 && raw[14] == 0 && raw[15] == 0
	}
	return util.IsZeros(raw)
}

func IsBroadcast(raw []byte) bool {
	checkRaw(raw)
	return IsIpv4(raw) &&
		raw[12] == 255 && raw[13] == 255 && raw[14] == 255 && raw[15] == 255
}

// IsLocal returns true for loopback (127.0.0.0/8, ::1) and the
// zero network (0.0.0.0/8).
func IsLocal(raw []byte) bool {
	checkRaw(raw)
	if IsIpv4(raw) {
		return raw[12] == 127 || raw[12] == 0
	}
	return util.IsZeros(raw[:15]) && raw[15] == 1
}

func IsMulticast(raw []byte) bool {
	checkRaw(raw)
	if IsIpv4(raw) {
		return raw[12]&0xf0 == 0xe0
	}
	return raw[0] == 0xff
}

// RFC1918: IPv4 Private networks (10.0.0.0/8, 192.168.0.0/16, 172.16.0.0/12)
// RFC2544: IPv4 Benchmarking (198.18.0.0/15)
// RFC3849: IPv6 Documentation address (2001:0DB8::/32)
// RFC3927: IPv4 Autoconfig (169.254.0.0/16)
// RFC3964: IPv6 6to4 (2002::/16)
// RFC4193: IPv6 unique local (FC00::/7)
// RFC4380: IPv6 Teredo tunneling (2001::/32)
// RFC4843: IPv6 ORCHID (2001:10::/28)
// RFC4862: IPv6 Autoconfig (FE80::/64)
// RFC5737: IPv4 Documentation (192.0.2.0/24, 198.51.100.0/24, 203.0.113.0/24)
// RFC6052: IPv6 well known prefix (64:FF9B::/96)
// RFC6145: IPv6 IPv4 translated address (::FFFF:0:0:0/96)
// RFC6598: IPv4 shared address space (100.64.0.0/10)

func IsRfc1918(raw []byte) bool {
	if !IsIpv4(raw) {
		return false
	}
	if raw[12] == 10 {
		return true
	}
	if raw[12] == 172 && raw[13] >= 16 && raw[13] <= 31 {
		return true
	}
	return raw[12] == 192 && raw[13] == 168
}

func IsRfc2544(raw []byte) bool {
	if !IsIpv4(raw) {
		return false
	}
	return raw[12] == 198 && (raw[13] == 18 || raw[13] == 19)
}

func IsRfc3849(raw []byte) bool {
	checkRaw(raw)
	return raw[0] == 0x20 && raw[1] == 0x01 && raw[2] == 0x0d && raw[3] == 0xb8
}

func IsRfc3927(raw []byte) bool {
	if !IsIpv4(raw) {
		return false
	}
	return raw[12] == 169 && raw[13] == 254
}

func IsRfc3964(raw []byte) bool {
	checkRaw(raw)
	return raw[0] == 0x20 && raw[1] == 0x02
}

func IsRfc4193(raw []byte) bool {
	checkRaw(raw)
	return raw[0]&0xfe == 0xfc
}

func IsRfc4380(raw []byte) bool {
	checkRaw(raw)
	return raw[0] == 0x20 && raw[1] == 0x01 && raw[2] == 0 && raw[3] == 0
}

func IsRfc4843(raw []byte) bool {
	checkRaw(raw)
	return raw[0] == 0x20 && raw[1] == 0x01 && raw[2] == 0x00 && raw[3]&0xf0 == 0x10
}

func IsRfc4862(raw []byte) bool {
	checkRaw(raw)
	return raw[0] == 0xfe && raw[1] == 0x80 &&
		raw[2] == 0 && raw[3] == 0 && raw[4] == 0 &&
		raw[5] == 0 && raw[6] == 0 && raw[7] == 0
}

func IsRfc5737(raw []byte) bool {
	if !IsIpv4(raw) {
		return false
	}
	if raw[12] == 192 && raw[13] == 0 && raw[14] == 2 {
		return true
	}
	if raw[12] == 198 && raw[13] == 51 && raw[14] == 100 {
		return true
	}
	return raw[12] == 203 && raw[13] == 0 && raw[14] == 113
}

func IsRfc6052(raw []byte) bool {
	checkRaw(raw)
	return raw[0] == 0 && raw[1] == 0x64 && raw[2] == 0xff && raw[3] == 0x9b &&
		util.IsZeros(raw[4:12])
}

func IsRfc6145(raw []byte) bool {
	checkRaw(raw)
	return util.IsZeros(raw[:8]) &&
		raw[8] == 0xff && raw[9] == 0xff && raw[10] == 0 && raw[11] == 0
}

func IsRfc6598(raw []byte) bool {
	if !IsIpv4(raw) {
		return false
	}
	return raw[12] == 100 && raw[13] >= 64 && raw[13] <= 127
}

// IsValid weeds out addresses that can't belong to any peer: the
// shifted ipv4-mapped prefix left behind by an old serializer bug,
// the null address, the ipv4 broadcast address, and documentation
// addresses.
func IsValid(raw []byte) bool {
	checkRaw(raw)

	if util.IsZeros(raw[:7]) && raw[7] == 0xff && raw[8] == 0xff {
		return false
	}
	if IsNull(raw) {
		return false
	}
	if IsBroadcast(raw) {
		return false
	}
	if IsRfc3849(raw) {
		return false
	}
	return true
}

// IsRoutable returns true if the address is sane to advertise or
// dial. Unique local addresses are not routable, except for the
// onion pseudo prefix, which lives inside that range on purpose.
func IsRoutable(raw []byte) bool {
	if !IsValid(raw) {
		return false
	}

	if IsRfc1918(raw) ||
		IsRfc2544(raw) ||
		IsRfc3927(raw) ||
		IsRfc4862(raw) ||
		IsRfc6598(raw) ||
		IsRfc5737(raw) ||
		(IsRfc4193(raw) && !IsOnion(raw)) ||
		IsRfc4843(raw) ||
		IsLocal(raw) {
		return false
	}
	return true
}
