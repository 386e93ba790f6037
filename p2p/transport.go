package p2p

import (
	"bvnet/event"
	"bvnet/netaddr"
	"bvnet/p2p/nat"
	"bvnet/util"
	"bvnet/util/log"

	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Event names published on the transport bus. Accept failures go
// out under event.ErrorEvent.
const (
	ListeningEvent  = "listening"
	ConnectionEvent = "connection"
)

const (
	_TRY_LISTEN_TIMES = 5
	_NAT_MAP_NAME     = "bvnet"
	_NAT_MAP_LIFETIME = 20 * time.Minute
	_NAT_MAP_REFRESH  = 15 * time.Minute
)

// Transport owns the TCP listener and republishes what happens on it
// through an event.Emitter: "listening" with the bound *NetAddress
// once the socket is up, "connection" with each accepted net.Conn,
// and "error" for accept failures. Unhandled "error" emissions are
// logged, never escalated.
type Transport struct {
	util.BaseService

	nodeId       NodeId
	listenAddr   string
	externalAddr string
	natMode      string

	em        *event.Emitter
	listener  net.Listener
	natDevice nat.Nat
	iAddr     *NetAddress
	eAddr     *NetAddress
	intPort   int
	extPort   int
}

func NewTransport(nodeId NodeId, listenAddr string, externalAddr string, natMode string, logger log.Logger) *Transport {
	t := &Transport{
		nodeId:       nodeId,
		listenAddr:   listenAddr,
		externalAddr: externalAddr,
		natMode:      natMode,
		em:           event.NewEmitter(),
	}
	t.BaseService.Init(logger, "Transport", t)
	return t
}

// Events returns the bus the transport publishes on. Subscribe
// before Start to observe the "listening" notification.
func (t *Transport) Events() *event.Emitter {
	return t.em
}

func splitHostPort(addr string) (host string, port int) {
	host, portStr, err := net.SplitHostPort(addr)
	util.AssertNoError(err)
	port, err = strconv.Atoi(portStr)
	util.AssertNoError(err)
	return host, port
}

// OnStart implements util.Service: it binds the listener, resolves
// the external address, announces "listening" and spins the accept
// loop.
func (t *Transport) OnStart() error {
	if err := t.BaseService.OnStart(); err != nil {
		return err
	}

	protocol, lAddr := SplitProtocolAndAddress(t.listenAddr)
	lAddrIp, _ := splitHostPort(lAddr)

	var listener net.Listener
	var err error
	for i := 0; i < _TRY_LISTEN_TIMES; i++ {
		listener, err = net.Listen(protocol, lAddr)
		if err == nil {
			break
		} else if i < _TRY_LISTEN_TIMES-1 {
			time.Sleep(time.Second * 1)
		}
	}
	if err != nil {
		return err
	}
	t.listener = listener

	tcpAddr := listener.Addr().(*net.TCPAddr)
	t.intPort = tcpAddr.Port
	t.iAddr = NewNetAddress(t.nodeId, tcpAddr)
	t.Logger.Info("Local listener", "host", t.iAddr.Host, "port", t.iAddr.Port)

	t.natDevice, err = nat.Parse(t.natMode)
	if err != nil {
		listener.Close()
		return err
	}

	if err := t.setupExternalAddress(lAddrIp); err != nil {
		listener.Close()
		return err
	}

	t.emitOrLog(ListeningEvent, t.iAddr)

	go t.acceptRoutine()
	if t.extPort != 0 {
		go t.natRefreshRoutine()
	}
	return nil
}

// OnStop implements util.Service by closing the listener and
// dropping the NAT mapping.
func (t *Transport) OnStop() {
	t.BaseService.OnStop()
	if t.listener != nil {
		t.listener.Close() // nolint: errcheck
	}

	if t.natDevice != nil && t.extPort != 0 {
		if err := t.natDevice.DeleteMapping("tcp", t.extPort, t.intPort); err != nil {
			t.Logger.Info("Could not delete NAT port mapping", "nat", t.natDevice.String(), "err", err)
		}
	}
}

func (t *Transport) setupExternalAddress(lAddrIp string) error {
	if t.externalAddr != "" {
		eAddr, err := NewNetAddressStringWithOptionalId(t.externalAddr)
		if err != nil {
			return err
		}
		eAddr.NodeId = t.nodeId
		t.eAddr = eAddr
		return nil
	}

	if t.natDevice != nil {
		t.eAddr = t.getNatExternalAddress()
	}

	if t.eAddr == nil {
		inAddrAny := lAddrIp == "" || lAddrIp == "0.0.0.0" || lAddrIp == "::"
		t.eAddr = getNaiveExternalAddress(inAddrAny, t.intPort, false, t.Logger)
	}
	if t.eAddr == nil {
		return fmt.Errorf("Could not determine external address")
	}
	t.eAddr.NodeId = t.nodeId
	return nil
}

// NAT external address discovery & port mapping
func (t *Transport) getNatExternalAddress() *NetAddress {
	extPort := t.intPort
	err := t.natDevice.AddMapping("tcp", extPort, t.intPort, _NAT_MAP_NAME, _NAT_MAP_LIFETIME)
	if err != nil {
		t.Logger.Info("Could not add NAT port mapping", "nat", t.natDevice.String(), "err", err)
	} else {
		t.extPort = extPort
	}

	ip, err := t.natDevice.GetExternalAddress()
	if err != nil {
		t.Logger.Info("Could not get external address", "nat", t.natDevice.String(), "err", err)
		return nil
	}

	t.Logger.Info("Got external address", "nat", t.natDevice.String(), "ip", ip)
	return NewNetAddressIpPort(ip, uint16(extPort))
}

// Accept connections and publish them on the bus.
func (t *Transport) acceptRoutine() {
	for {
		conn, err := t.listener.Accept()

		if !t.IsRunning() {
			if conn != nil {
				conn.Close() // nolint: errcheck
			}
			return
		}

		if err != nil {
			t.emitError(err)
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				continue
			}
			return
		}

		if err := t.em.Emit(ConnectionEvent, conn); err != nil {
			t.Logger.Error("Connection handler failed", "remote", conn.RemoteAddr(), "err", err)
		}
	}
}

func (t *Transport) emitError(e error) {
	if err := t.em.Emit(event.ErrorEvent, e); err != nil {
		t.Logger.Error("Transport error", "err", err)
	}
}

func (t *Transport) emitOrLog(name string, args ...interface{}) {
	if err := t.em.Emit(name, args...); err != nil {
		t.Logger.Error("Event handler failed", "event", name, "err", err)
	}
}

func (t *Transport) natRefreshRoutine() {
	ticker := time.NewTicker(_NAT_MAP_REFRESH)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			err := t.natDevice.AddMapping("tcp", t.extPort, t.intPort, _NAT_MAP_NAME, _NAT_MAP_LIFETIME)
			if err != nil {
				t.Logger.Info("Could not refresh NAT port mapping", "nat", t.natDevice.String(), "err", err)
			}
		case <-t.C4Quit():
			return
		}
	}
}

// NodeId returns the identity the transport listens as.
func (t *Transport) NodeId() NodeId {
	return t.nodeId
}

// InternalAddress returns the NetAddress the listener is bound to.
func (t *Transport) InternalAddress() *NetAddress {
	return t.iAddr
}

// ExternalAddress returns the address to advertise, determined from
// the configured override, the NAT gateway, or the interfaces.
func (t *Transport) ExternalAddress() *NetAddress {
	return t.eAddr
}

// ExternalAddressHost returns the external host string. An IPv6
// host is wrapped in brackets ("[2001:db8::1]").
func (t *Transport) ExternalAddressHost() string {
	addr := t.ExternalAddress()
	if addr.Type == netaddr.HostIpv6 {
		return "[" + addr.Host + "]"
	}
	return addr.Host
}

func (t *Transport) String() string {
	return fmt.Sprintf("Transport(@%v)", t.eAddr)
}

/* external address helpers */

func isIpv6(ip net.IP) bool {
	v4 := ip.To4()
	if v4 != nil {
		return false
	}

	ipString := ip.String()

	// Extra check just to be sure it's IPv6
	return (strings.Contains(ipString, ":") && !strings.Contains(ipString, "."))
}

func getNaiveExternalAddress(defaultToIPv4 bool, port int, settleForLocal bool, logger log.Logger) *NetAddress {
	addrs, err := net.InterfaceAddrs()
	util.AssertNoError(err)

	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if defaultToIPv4 || !isIpv6(ipnet.IP) {
			v4 := ipnet.IP.To4()
			if v4 == nil || (!settleForLocal && v4[0] == 127) {
				// loopback
				continue
			}
		} else if !settleForLocal && ipnet.IP.IsLoopback() {
			// IPv6, check for loopback
			continue
		}
		return NewNetAddressIpPort(ipnet.IP, uint16(port))
	}

	if settleForLocal {
		return nil
	}

	// try again, but settle for local
	logger.Info("Node may not be connected to internet. Settling for local address")
	return getNaiveExternalAddress(defaultToIPv4, port, true, logger)
}
