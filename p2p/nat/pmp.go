package nat

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackpal/gateway"
	natpmp "github.com/jackpal/go-nat-pmp"
)

const _PMP_TIMEOUT = 3 * time.Second

type _Pmp struct {
	gw net.IP
	client *natpmp.Client
}

// DiscoverPmp looks for a NAT-PMP capable gateway on the default
// route.
func DiscoverPmp() (Nat, error) {
	gw, err := gateway.DiscoverGateway()
	if err != nil {
		return nil, fmt.Errorf("natpmp: no gateway: %v", err)
	}

	client := natpmp.NewClientWithTimeout(gw, _PMP_TIMEOUT)
	if _, err := client.GetExternalAddress(); err != nil {
		return nil, fmt.Errorf("natpmp: gateway %v does not speak nat-pmp: %v", gw, err)
	}
	return &_Pmp{gw: gw, client: client}, nil
}

func (n *_Pmp) GetExternalAddress() (net.IP, error) {
	result, err := n.client.GetExternalAddress()
	if err != nil {
		return nil, err
	}
	return net.IP(result.ExternalIPAddress[:]), nil
}

func (n *_Pmp) AddMapping(proto string, extPort int, intPort int, name string, lifetime time.Duration) error {
	if lifetime <= 0 {
		return fmt.Errorf("natpmp: lifetime must be positive")
	}
	_, err := n.client.AddPortMapping(strings.ToLower(proto), intPort, extPort, int(lifetime/time.Second))
	return err
}

func (n *_Pmp) DeleteMapping(proto string, extPort int, intPort int) error {
	// a zero lifetime request drops the mapping
	_, err := n.client.AddPortMapping(strings.ToLower(proto), intPort, 0, 0)
	return err
}

func (n *_Pmp) String() string {
	return fmt.Sprintf("natpmp:%v", n.gw)
}
