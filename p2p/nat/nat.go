// Package nat maps listening ports on the gateway and discovers the
// external address, over UPnP or NAT-PMP.
package nat

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// Nat is a port mapping device on the local network.
type Nat interface {
	// GetExternalAddress returns the external IP of the gateway.
	GetExternalAddress() (net.IP, error)

	// AddMapping maps extPort on the gateway to intPort on this
	// host. Mappings must be refreshed before lifetime runs out.
	AddMapping(proto string, extPort int, intPort int, name string, lifetime time.Duration) error

	// DeleteMapping removes the mapping again.
	DeleteMapping(proto string, extPort int, intPort int) error

	String() string
}

// Parse resolves a NAT mode from the config. Valid values are ""
// and "none" (no NAT, returns nil), "any", "upnp", "pmp", and
// "extip:<ip>" for a fixed external address.
func Parse(mode string) (Nat, error) {
	s := strings.ToLower(strings.TrimSpace(mode))
	switch {
	case s == "" || s == "none":
		return nil, nil
	case s == "any":
		return Any()
	case s == "upnp":
		return DiscoverUpnp()
	case s == "pmp" || s == "natpmp":
		return DiscoverPmp()
	case strings.HasPrefix(s, "extip:"):
		ip := net.ParseIP(s[len("extip:"):])
		if ip == nil {
			return nil, fmt.Errorf("invalid external ip in nat mode %q", mode)
		}
		return ExtIp(ip), nil
	}
	return nil, fmt.Errorf("unknown nat mode %q", mode)
}

// Any probes UPnP first and falls back to NAT-PMP.
func Any() (Nat, error) {
	if n, err := DiscoverUpnp(); err == nil {
		return n, nil
	}
	n, err := DiscoverPmp()
	if err != nil {
		return nil, fmt.Errorf("no nat device found")
	}
	return n, nil
}

// ExtIp returns a Nat that reports a fixed external address and
// maps nothing.
func ExtIp(ip net.IP) Nat {
	return _ExtIp(ip)
}

type _ExtIp net.IP

func (n _ExtIp) GetExternalAddress() (net.IP, error) {
	return net.IP(n), nil
}

func (n _ExtIp) AddMapping(string, int, int, string, time.Duration) error {
	return nil
}

func (n _ExtIp) DeleteMapping(string, int, int) error {
	return nil
}

func (n _ExtIp) String() string {
	return fmt.Sprintf("extip:%v", net.IP(n))
}
