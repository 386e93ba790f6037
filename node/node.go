package node

import (
	"bvnet/cfg"
	"bvnet/db"
	"bvnet/event"
	"bvnet/p2p"
	"bvnet/p2p/pex"
	"bvnet/util"
	"bvnet/util/log"
	"bvnet/version"

	"fmt"
	"math/rand"
	"net"
	"time"
)

// _MAX_RANDOM_DIAL_DELAY spreads the outgoing dials so a list of
// seeds is not hammered all at once.
const _MAX_RANDOM_DIAL_DELAY = 3 * time.Second

// Node is the highest level interface to the network service.
// It owns the transport, the address book and the node identity.
type Node struct {
	util.BaseService

	// config
	config *cfg.Config

	// network
	nodeKey   *p2p.NodeKey   // our identity
	transport *p2p.Transport // bound listener and NAT mapping
	addrBook  pex.AddrBook   // known peers

	kvdb    db.KvDb
	dialing *util.StringSet
	rng     *rand.Rand
}

// NewNode returns a new, ready to go, Node.
func NewNode(config *cfg.Config, logger log.Logger) (*Node, error) {
	kvdb, err := db.NewLevelDb(config.DbPath(), 0, 0)
	if err != nil {
		return nil, err
	}

	nodeKey, err := p2p.LoadOrGenNodeKey(config.NodeKeyPath())
	if err != nil {
		kvdb.Close()
		return nil, err
	}
	logger.Info("P2p NodeId", "NodeId", nodeKey.NodeId(), "file", config.NodeKeyPath())

	p2pLogger := logger.With("module", "p2p")

	transport := p2p.NewTransport(nodeKey.NodeId(), config.P2p.ListenAddr, config.P2p.ExternalAddr, config.P2p.Nat, p2pLogger)

	addrBook := pex.NewAddrBook(kvdb, config.P2p.AddrBookStrict)
	addrBook.SetLogger(p2pLogger.With("book", "addrbook"))
	addrBook.AddPrivateIds(config.P2p.PrivatePeerIds)

	node := &Node{
		config: config,

		nodeKey:   nodeKey,
		transport: transport,
		addrBook:  addrBook,

		kvdb:    kvdb,
		dialing: util.NewStringSet(),
		rng:     util.NewRand(),
	}
	node.BaseService.Init(logger, "Node", node)
	node.subscribeTransportEvents()
	return node, nil
}

// subscribeTransportEvents wires the transport's event stream into
// the address book and the log. It must run before the transport
// starts, the initial "listening" event is emitted during startup.
func (n *Node) subscribeTransportEvents() {
	em := n.transport.Events()

	em.AddListener(p2p.ListeningEvent, func(args ...interface{}) error {
		addr := args[0].(*p2p.NetAddress)
		n.Logger.Info("Accepting inbound peers", "bound", addr, "external", n.transport.ExternalAddress())
		return nil
	})

	em.AddListener(p2p.ConnectionEvent, func(args ...interface{}) error {
		conn := args[0].(net.Conn)
		return n.acceptPeer(conn)
	})

	em.AddListener(event.ErrorEvent, func(args ...interface{}) error {
		err, _ := args[0].(error)
		n.Logger.Error("Transport error", "err", err)
		return nil
	})
}

// acceptPeer records the remote endpoint of an inbound connection.
// There is no wire protocol yet, so the connection is dropped once
// the address is noted.
func (n *Node) acceptPeer(conn net.Conn) error {
	defer conn.Close() // nolint: errcheck

	tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return fmt.Errorf("Unexpected remote address %v", conn.RemoteAddr())
	}

	addr := p2p.NewNetAddressIpPort(tcpAddr.IP, uint16(tcpAddr.Port))
	if err := n.addrBook.AddAddress(addr, addr); err != nil {
		n.Logger.Debug("Could not record inbound peer", "addr", addr, "err", err)
	}
	return nil
}

// OnStart starts the Node. It implements util.Service.
func (n *Node) OnStart() error {
	n.Logger.Info("Starting node", "moniker", n.config.Moniker, "version", version.Version)

	if err := n.addrBook.Start(); err != nil {
		return err
	}

	if err := n.transport.Start(); err != nil {
		return err
	}

	// prevent dialing ourselves
	n.addrBook.AddOurAddress(n.transport.ExternalAddress())
	n.addrBook.AddOurAddress(n.transport.InternalAddress())

	// Always connect to seeds and persistent peers
	if len(n.config.P2p.Seeds) > 0 {
		if err := n.DialPeersAsync(n.config.P2p.Seeds); err != nil {
			return err
		}
	}
	if len(n.config.P2p.PersistentPeers) > 0 {
		if err := n.DialPeersAsync(n.config.P2p.PersistentPeers); err != nil {
			return err
		}
	}
	return nil
}

// OnStop stops the Node. It implements util.Service.
func (n *Node) OnStop() {
	n.BaseService.OnStop()

	n.Logger.Info("Stopping Node")
	n.transport.Stop()
	n.addrBook.Stop()

	// the final book snapshot must land before the db closes
	n.addrBook.Wait()
	n.kvdb.Close()
}

// DialPeersAsync adds the given addresses to the address book and
// dials them in random order, spreading the attempts over a few
// seconds. Bad addresses are logged and skipped.
func (n *Node) DialPeersAsync(peers []string) error {
	ourAddr := n.transport.ExternalAddress()
	if ourAddr == nil {
		return fmt.Errorf("The transport is not started")
	}

	netAddrs, errs := p2p.NewNetAddressStrings(peers)

	// only log errors, dial the correct addresses
	for _, err := range errs {
		n.Logger.Error("Error in peer's address", "err", err)
	}

	for _, netAddr := range netAddrs {
		// do not add ourselves
		if netAddr.IsSame(ourAddr) {
			continue
		}
		if err := n.addrBook.AddAddress(netAddr, ourAddr); err != nil {
			n.Logger.Error("Can't add peer's address to the addrbook", "addr", netAddr, "err", err)
		}
	}
	n.addrBook.Save()

	perm := n.rng.Perm(len(netAddrs))
	for i := 0; i < len(perm); i++ {
		addr := netAddrs[perm[i]]
		if addr.IsSame(ourAddr) {
			continue
		}
		delay := time.Duration(n.rng.Int63n(int64(_MAX_RANDOM_DIAL_DELAY)))
		go func(addr *p2p.NetAddress, delay time.Duration) {
			time.Sleep(delay)
			n.dialPeer(addr)
		}(addr, delay)
	}
	return nil
}

// dialPeer makes one reachability probe to the address and records
// the outcome in the book.
func (n *Node) dialPeer(addr *p2p.NetAddress) {
	key := addr.DialString()
	if n.dialing.Has(key) {
		return
	}
	n.dialing.Add(key)
	defer n.dialing.Remove(key)

	n.addrBook.MarkAttempt(addr)

	conn, err := addr.DialTimeout(n.config.P2p.DialTimeout)
	if err != nil {
		n.Logger.Error("Error dialing peer", "addr", addr, "err", err)
		return
	}
	conn.Close() // nolint: errcheck

	n.addrBook.MarkGood(addr)
	n.Logger.Info("Dialed peer", "addr", addr)
}

// Config returns the Node's config.
func (n *Node) Config() *cfg.Config {
	return n.config
}

// Transport returns the Node's Transport.
func (n *Node) Transport() *p2p.Transport {
	return n.transport
}

// AddrBook returns the Node's AddrBook.
func (n *Node) AddrBook() pex.AddrBook {
	return n.addrBook
}

// Events returns the transport's event stream.
func (n *Node) Events() *event.Emitter {
	return n.transport.Events()
}

// NodeId returns the id the node authenticates as.
func (n *Node) NodeId() p2p.NodeId {
	return n.nodeKey.NodeId()
}

// NodeKey returns the Node's identity key.
func (n *Node) NodeKey() *p2p.NodeKey {
	return n.nodeKey
}

// AdvertisedAddr returns the "host:port" other nodes should use to
// reach us, with an ipv6 host in brackets.
func (n *Node) AdvertisedAddr() string {
	addr := n.transport.ExternalAddress()
	if addr == nil {
		return ""
	}
	return fmt.Sprintf("%v:%v", n.transport.ExternalAddressHost(), addr.Port)
}
