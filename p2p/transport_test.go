package p2p

import (
	"bvnet/util/log"

	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T, externalAddr string) *Transport {
	tr := NewTransport(randNodeId(), "tcp://127.0.0.1:0", externalAddr, "none", log.TestingLogger())
	require.Nil(t, tr.Start())
	return tr
}

func TestTransportListening(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	id := randNodeId()
	tr := NewTransport(id, "tcp://127.0.0.1:0", "", "none", log.TestingLogger())

	c4listen := make(chan *NetAddress, 1)
	tr.Events().AddListener(ListeningEvent, func(args ...interface{}) error {
		c4listen <- args[0].(*NetAddress)
		return nil
	})

	require.Nil(tr.Start())
	defer tr.Stop()

	// the notification fires while Start is still on this stack
	select {
	case bound := <-c4listen:
		assert.Equal(tr.InternalAddress(), bound)
		assert.Equal(id, bound.NodeId)
		assert.Equal("127.0.0.1", bound.Host)
		assert.NotEqual(uint16(0), bound.Port)
	default:
		t.Fatal("no listening notification during start")
	}

	require.NotNil(tr.ExternalAddress())
	assert.Equal(id, tr.ExternalAddress().NodeId)
}

func TestTransportAcceptsConnections(t *testing.T) {
	require := require.New(t)

	tr := newTestTransport(t, "")
	defer tr.Stop()

	c4conn := make(chan net.Conn, 1)
	tr.Events().AddListener(ConnectionEvent, func(args ...interface{}) error {
		c4conn <- args[0].(net.Conn)
		return nil
	})

	out, err := tr.InternalAddress().DialTimeout(3 * time.Second)
	require.Nil(err)
	defer out.Close()

	select {
	case in := <-c4conn:
		require.Equal(out.LocalAddr().String(), in.RemoteAddr().String())
		in.Close()
	case <-time.After(3 * time.Second):
		t.Fatal("no connection notification")
	}
}

func TestTransportConnectionHandlerError(t *testing.T) {
	require := require.New(t)

	tr := newTestTransport(t, "")
	defer tr.Stop()

	// a failing handler must be logged away, not kill the accept loop
	c4conn := make(chan net.Conn, 2)
	tr.Events().AddListener(ConnectionEvent, func(args ...interface{}) error {
		c4conn <- args[0].(net.Conn)
		return ErrTransportClosed{}
	})

	for i := 0; i < 2; i++ {
		out, err := tr.InternalAddress().DialTimeout(3 * time.Second)
		require.Nil(err)

		select {
		case in := <-c4conn:
			in.Close()
		case <-time.After(3 * time.Second):
			t.Fatalf("no connection notification (dial %d)", i)
		}
		out.Close()
	}
}

func TestTransportExternalAddressOverride(t *testing.T) {
	assert := assert.New(t)

	tr := newTestTransport(t, "8.8.8.8:26656")
	defer tr.Stop()

	assert.Equal("8.8.8.8", tr.ExternalAddress().Host)
	assert.Equal(uint16(26656), tr.ExternalAddress().Port)
	assert.Equal(tr.NodeId(), tr.ExternalAddress().NodeId)
	assert.Equal("8.8.8.8", tr.ExternalAddressHost())
}

func TestTransportExternalAddressHostIpv6(t *testing.T) {
	assert := assert.New(t)

	tr := newTestTransport(t, "[2607:f8b0::88]:26656")
	defer tr.Stop()

	assert.Equal("2607:f8b0::88", tr.ExternalAddress().Host)
	assert.Equal("[2607:f8b0::88]", tr.ExternalAddressHost())
}

func TestTransportBadConfig(t *testing.T) {
	assert := assert.New(t)

	tr := NewTransport(randNodeId(), "tcp://127.0.0.1:0", "", "what-nat", log.TestingLogger())
	assert.NotNil(tr.Start())

	tr = NewTransport(randNodeId(), "tcp://127.0.0.1:0", "not@@an@@addr:x", "none", log.TestingLogger())
	assert.NotNil(tr.Start())
}

func TestTransportStop(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	tr := newTestTransport(t, "")
	addr := tr.InternalAddress()

	assert.True(tr.Stop())
	tr.WaitForStop()
	assert.False(tr.IsRunning())

	_, err := addr.DialTimeout(500 * time.Millisecond)
	require.NotNil(err)
}
