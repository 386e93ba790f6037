package netaddr

import (
	"strconv"
	"strings"
)

// Endpoint is a parsed host:port specification. Host holds the
// normalized host (DNS names are kept as given), Hostname the
// display form with the port and, for ipv6, the brackets. Raw is
// the canonical buffer, nil for DNS names.
type Endpoint struct {
	Host string
	Port uint16
	Type HostType
	Hostname string
	Raw []byte
}

// ParseEndpoint parses "host", "host:port", "[host]" and
// "[host]:port". A bare host with more than one colon must be an
// ipv6 literal. When the input carries no port, fallbackPort is
// used.
func ParseEndpoint(s string, fallbackPort uint16) (*Endpoint, error) {
	if len(s) == 0 {
		return nil, ErrMalformedEndpoint{s, "empty endpoint"}
	}

	host := s
	port := fallbackPort

	if s[0] == '[' {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, ErrMalformedEndpoint{s, "missing ']'"}
		}
		host = s[1:end]

		rest := s[end+1:]
		if len(rest) > 0 {
			if rest[0] != ':' {
				return nil, ErrMalformedEndpoint{s, "unexpected characters after ']'"}
			}
			p, ok := parsePort(rest[1:])
			if !ok {
				return nil, ErrMalformedEndpoint{s, "invalid port"}
			}
			port = p
		}
	} else {
		first := strings.IndexByte(s, ':')
		if first >= 0 {
			if strings.IndexByte(s[first+1:], ':') < 0 {
				host = s[:first]
				p, ok := parsePort(s[first+1:])
				if !ok {
					return nil, ErrMalformedEndpoint{s, "invalid port"}
				}
				port = p
			} else if !IsIpv6String(s) {
				// more than one colon and not an ipv6 literal
				return nil, ErrMalformedEndpoint{s, "ambiguous colons"}
			}
		}
	}

	if len(host) == 0 {
		return nil, ErrMalformedEndpoint{s, "empty host"}
	}

	typ := ClassifyString(host)
	var raw []byte
	if typ != HostDns {
		var err error
		raw, err = ToBuffer(host)
		if err != nil {
			return nil, ErrMalformedEndpoint{s, err.Error()}
		}
		host = ToString(raw)
		// a mapped literal like ::ffff:1.2.3.4 normalizes to ipv4
		typ = Classify(raw)
	}

	return &Endpoint{
		Host: host,
		Port: port,
		Type: typ,
		Hostname: joinHostPort(host, port, typ),
		Raw: raw,
	}, nil
}

// ToHostPort composes the display form of a (host, port) pair.
// The host must not be bracketed already; ipv6 hosts are normalized
// and bracket-wrapped.
func ToHostPort(host string, port uint16) (string, error) {
	if strings.IndexByte(host, '[') >= 0 || strings.IndexByte(host, ']') >= 0 {
		return "", ErrMalformedAddress{host, "unexpected bracket"}
	}

	typ := ClassifyString(host)
	if typ != HostDns {
		raw, err := ToBuffer(host)
		if err != nil {
			return "", err
		}
		host = ToString(raw)
		typ = Classify(raw)
	}
	return joinHostPort(host, port, typ), nil
}

func joinHostPort(host string, port uint16, typ HostType) string {
	if typ == HostIpv6 {
		host = "[" + host + "]"
	}
	return host + ":" + strconv.FormatUint(uint64(port), 10)
}

// parsePort accepts 1 to 5 decimal digits up to 65535.
func parsePort(s string) (uint16, bool) {
	if len(s) == 0 || len(s) > 5 {
		return 0, false
	}

	value := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		value = value*10 + int(c-'0')
	}
	if value > 65535 {
		return 0, false
	}
	return uint16(value), true
}
