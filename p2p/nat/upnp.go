package nat

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/huin/goupnp/dcps/internetgateway1"
	"github.com/huin/goupnp/dcps/internetgateway2"
)

// _IgdClient is what the generated goupnp gateway clients have in
// common.
type _IgdClient interface {
	GetExternalIPAddress() (string, error)
	AddPortMapping(remoteHost string, extPort uint16, proto string, intPort uint16, intClient string, enabled bool, desc string, lease uint32) error
	DeletePortMapping(remoteHost string, extPort uint16, proto string) error
}

type _Upnp struct {
	client _IgdClient
	kind string
}

// DiscoverUpnp probes the LAN for an internet gateway device,
// preferring IGDv2 over IGDv1.
func DiscoverUpnp() (Nat, error) {
	if cs, _, err := internetgateway2.NewWANIPConnection1Clients(); err == nil && len(cs) > 0 {
		return &_Upnp{cs[0], "igd2-ip1"}, nil
	}
	if cs, _, err := internetgateway2.NewWANPPPConnection1Clients(); err == nil && len(cs) > 0 {
		return &_Upnp{cs[0], "igd2-ppp1"}, nil
	}
	if cs, _, err := internetgateway1.NewWANIPConnection1Clients(); err == nil && len(cs) > 0 {
		return &_Upnp{cs[0], "igd1-ip1"}, nil
	}
	if cs, _, err := internetgateway1.NewWANPPPConnection1Clients(); err == nil && len(cs) > 0 {
		return &_Upnp{cs[0], "igd1-ppp1"}, nil
	}
	return nil, fmt.Errorf("no upnp device found")
}

func (n *_Upnp) GetExternalAddress() (net.IP, error) {
	s, err := n.client.GetExternalIPAddress()
	if err != nil {
		return nil, err
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("upnp: gateway returned bad external ip %q", s)
	}
	return ip, nil
}

func (n *_Upnp) AddMapping(proto string, extPort int, intPort int, name string, lifetime time.Duration) error {
	ip, err := localAddress()
	if err != nil {
		return err
	}
	return n.client.AddPortMapping("", uint16(extPort), strings.ToUpper(proto),
		uint16(intPort), ip.String(), true, name, uint32(lifetime/time.Second))
}

func (n *_Upnp) DeleteMapping(proto string, extPort int, intPort int) error {
	return n.client.DeletePortMapping("", uint16(extPort), strings.ToUpper(proto))
}

func (n *_Upnp) String() string {
	return "upnp:" + n.kind
}

// localAddress finds the LAN address the gateway should forward to.
// The connection is never used, dialing just picks a source ip.
func localAddress() (net.IP, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP, nil
}
