package p2p

import (
	"bvnet/netaddr"

	"net"
	"flag"
	"fmt"
	"time"
	"strings"
	"strconv"
)

// NetAddress is a resolved peer address: the canonical 16 byte form
// plus port, with an optional node id. Raw is nil only for a zero
// value; parsed DNS names are resolved up front.
type NetAddress struct {
	NodeId NodeId
	Host   string
	Port   uint16
	Type   netaddr.HostType
	Raw    []byte

	_str string
}

func (na *NetAddress) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(na.String())), nil
}

func (na *NetAddress) UnmarshalJSON(bz []byte) error {
	if len(bz) < 2 || bz[0] != '"' || bz[len(bz)-1] != '"' {
		return fmt.Errorf("Invalid NetAddress string");
	}

	addr, err := NewNetAddressStringWithOptionalId(string(bz[1:len(bz)-1]))
	if err != nil {
		return err
	}

	*na = *addr
	return nil
}

func NewNetAddress(id NodeId, addr net.Addr) *NetAddress {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		if flag.Lookup("test.v") == nil { // normal run
			panic(fmt.Sprintf("Only TCPAddrs are supported. Got: %v", addr))
		} else { // in testing
			netAddr := NewNetAddressIpPort(net.IPv4zero, 0)
			netAddr.NodeId = id
			return netAddr
		}
	}
	na := NewNetAddressIpPort(tcpAddr.IP, uint16(tcpAddr.Port))
	na.NodeId = id
	return na
}

// NewNetAddressString returns a new NetAddress using the provided address in
// the form of "Id@Host:Port".
// Also resolves the host if host is a DNS name.
// Errors are of type ErrNetAddressXxx where Xxx is in (NoId, Invalid, Lookup)
func NewNetAddressString(addr string) (*NetAddress, error) {
	spl := strings.Split(addr, "@")
	if len(spl) < 2 {
		return nil, ErrNetAddressNoId{addr}
	}
	return NewNetAddressStringWithOptionalId(addr)
}

// NewNetAddressStringWithOptionalId returns a new NetAddress using the
// provided address in the form of "Id@Host:Port", where the Id is optional.
// Also resolves the host if host is a DNS name.
func NewNetAddressStringWithOptionalId(addr string) (*NetAddress, error) {
	addrWithoutProtocol := removeProtocolIfDefined(addr)

	var id NodeId
	spl := strings.Split(addrWithoutProtocol, "@")
	if len(spl) == 2 {
		idStr := spl[0]
		if !IsValidNodeId(idStr) {
			return nil, ErrNetAddressInvalid{addrWithoutProtocol, fmt.Errorf("Invalid NodeId string")}
		}
		id, addrWithoutProtocol = NodeId(idStr), spl[1]
	}

	ep, err := netaddr.ParseEndpoint(addrWithoutProtocol, 0)
	if err != nil {
		return nil, ErrNetAddressInvalid{addrWithoutProtocol, err}
	}

	na := NewNetAddressEndpoint(ep, id)
	if na.Type == netaddr.HostDns {
		ips, err := net.LookupIP(na.Host)
		if err != nil {
			return nil, ErrNetAddressLookup{na.Host, err}
		}
		raw := netaddr.FromIp(ips[0])
		na.Raw = raw
		na.Host = netaddr.ToString(raw)
		na.Type = netaddr.Classify(raw)
	}
	return na, nil
}

// NewNetAddressStrings returns an array of NetAddress'es build using
// the provided strings.
func NewNetAddressStrings(addrs []string) ([]*NetAddress, []error) {
	netAddrs := make([]*NetAddress, 0)
	errs := make([]error, 0)
	for _, addr := range addrs {
		netAddr, err := NewNetAddressString(addr)
		if err != nil {
			errs = append(errs, err)
		} else {
			netAddrs = append(netAddrs, netAddr)
		}
	}
	return netAddrs, errs
}

// NewNetAddressIpPort returns a new NetAddress using the provided IP
// and port number.
func NewNetAddressIpPort(ip net.IP, port uint16) *NetAddress {
	raw := netaddr.FromIp(ip)
	if raw == nil {
		return &NetAddress{Port: port}
	}
	return &NetAddress{
		Host: netaddr.ToString(raw),
		Port: port,
		Type: netaddr.Classify(raw),
		Raw:  raw,
	}
}

// NewNetAddressEndpoint returns a new NetAddress from an already
// parsed endpoint.
func NewNetAddressEndpoint(ep *netaddr.Endpoint, id NodeId) *NetAddress {
	na := &NetAddress{
		NodeId: id,
		Host:   ep.Host,
		Port:   ep.Port,
		Type:   ep.Type,
	}
	if ep.Raw != nil {
		na.Raw = append([]byte(nil), ep.Raw...)
	}
	return na
}

// Equal reports whether na and other are the same addresses,
// including their Id, Host, and Port.
func (na *NetAddress) Equal(other *NetAddress) bool {
	return na.String() == other.String()
}

// IsSame returns true if na has the same non-empty Id or DialString as other.
func (na *NetAddress) IsSame(other *NetAddress) bool {
	if na.DialString() == other.DialString() {
		return true
	}
	if na.NodeId != "" && na.NodeId == other.NodeId {
		return true
	}
	return false
}

// String representation: <Id>@<Host>:<Port>
func (na *NetAddress) String() string {
	if na._str == "" {
		addrStr := na.DialString()
		if na.NodeId != "" {
			addrStr = fmt.Sprintf("%s@%s", na.NodeId, addrStr)
		}
		na._str = addrStr
	}
	return na._str
}

func (na *NetAddress) DialString() string {
	return net.JoinHostPort(
		na.Host,
		strconv.FormatUint(uint64(na.Port), 10),
	)
}

// Ip returns the address bytes as a net.IP, nil for the zero value.
// Onion addresses come out as their pseudo ipv6 form.
func (na *NetAddress) Ip() net.IP {
	if na.Raw == nil {
		return nil
	}
	return netaddr.ToIp(na.Raw)
}

// Dial calls net.Dial on the address.
func (na *NetAddress) Dial() (net.Conn, error) {
	conn, err := net.Dial("tcp", na.DialString())
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// DialTimeout calls net.DialTimeout on the address.
func (na *NetAddress) DialTimeout(timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", na.DialString(), timeout)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Routable returns true if the address is globally reachable, with
// the hidden service range counted in.
func (na *NetAddress) Routable() bool {
	return na.Raw != nil && netaddr.IsRoutable(na.Raw)
}

// Valid rejects the zero value, the shifted mapped prefix, null and
// broadcast addresses, and the documentation range.
func (na *NetAddress) Valid() bool {
	return na.Raw != nil && netaddr.IsValid(na.Raw)
}

// Local returns true if it is a loopback or zero network address.
func (na *NetAddress) Local() bool {
	return na.Raw != nil && netaddr.IsLocal(na.Raw)
}

func (na *NetAddress) IsOnion() bool {
	return na.Raw != nil && netaddr.IsOnion(na.Raw)
}

func (na *NetAddress) Rfc3964() bool { return na.Raw != nil && netaddr.IsRfc3964(na.Raw) }
func (na *NetAddress) Rfc4380() bool { return na.Raw != nil && netaddr.IsRfc4380(na.Raw) }
func (na *NetAddress) Rfc6052() bool { return na.Raw != nil && netaddr.IsRfc6052(na.Raw) }
func (na *NetAddress) Rfc6145() bool { return na.Raw != nil && netaddr.IsRfc6145(na.Raw) }

// ReachabilityTo checks whenever o can be reached from na.
func (na *NetAddress) ReachabilityTo(o *NetAddress) int {
	const (
		Unreachable = 0
		Default     = iota
		Teredo
		Ipv6_weak
		Ipv4
		Ipv6_strong
		Private
	)
	switch {
	case !na.Routable():
		return Unreachable
	case na.IsOnion():
		if o.IsOnion() {
			return Private
		}
		if o.Routable() && o.Type == netaddr.HostIpv4 {
			return Ipv4
		}
		return Default
	case na.Rfc4380():
		if !o.Routable() {
			return Default
		} else if o.Rfc4380() {
			return Teredo
		} else if o.Type == netaddr.HostIpv4 {
			return Ipv4
		} else { // ipv6
			return Ipv6_weak
		}
	case na.Type == netaddr.HostIpv4:
		if o.Routable() && o.Type == netaddr.HostIpv4 {
			return Ipv4
		}
		return Default
	default: /* ipv6 */
		var tunnelled bool
		// Is our v6 tunnelled?
		if o.Rfc3964() || o.Rfc6052() || o.Rfc6145() {
			tunnelled = true
		}
		if !o.Routable() {
			return Default
		} else if o.Rfc4380() {
			return Teredo
		} else if o.Type == netaddr.HostIpv4 {
			return Ipv4
		} else if tunnelled {
			// only prioritise ipv6 if we aren't tunnelling it.
			return Ipv6_weak
		}
		return Ipv6_strong
	}
}

// he.net ipv6 tunnel allocations get a finer group than the rest of
// the ipv6 internet.
var heNet = &net.IPNet{IP: net.ParseIP("2001:470::"), Mask: net.CIDRMask(32, 128)}

// GroupKey buckets the address for the address book: /16 for ipv4,
// the embedded ipv4 /16 for translated ranges, a nibble of the key
// for hidden services, /32 for plain ipv6.
func (na *NetAddress) GroupKey() string {
	if na.Local() {
		return "local"
	}
	if !na.Routable() {
		return "unroutable"
	}

	if na.Type == netaddr.HostIpv4 {
		return na.Ip().Mask(net.CIDRMask(16, 32)).String()
	}
	if na.Rfc6145() || na.Rfc6052() {
		// translated ipv4 lives in the last four bytes
		ip := net.IP(na.Raw[12:16])
		return ip.Mask(net.CIDRMask(16, 32)).String()
	}
	if na.Rfc3964() {
		ip := net.IP(na.Raw[2:6])
		return ip.Mask(net.CIDRMask(16, 32)).String()
	}
	if na.Rfc4380() {
		// teredo carries the client ipv4 xored into the tail
		ip := make(net.IP, 4)
		for i, b := range na.Raw[12:16] {
			ip[i] = b ^ 0xff
		}
		return ip.Mask(net.CIDRMask(16, 32)).String()
	}
	if na.IsOnion() {
		return fmt.Sprintf("tor:%d", na.Raw[6]&0x0f)
	}

	bits := 32
	if heNet.Contains(na.Ip()) {
		bits = 36
	}
	return na.Ip().Mask(net.CIDRMask(bits, 128)).String()
}

func removeProtocolIfDefined(addr string) string {
	if strings.Contains(addr, "://") {
		return strings.Split(addr, "://")[1]
	}
	return addr
}
