package netaddr

import (
	"fmt"
)

type ErrMalformedAddress struct {
	Addr string
	Reason string
}

func (e ErrMalformedAddress) Error() string {
	return fmt.Sprintf("Malformed address %q: %s", e.Addr, e.Reason)
}

type ErrMalformedEndpoint struct {
	Endpoint string
	Reason string
}

func (e ErrMalformedEndpoint) Error() string {
	return fmt.Sprintf("Malformed endpoint %q: %s", e.Endpoint, e.Reason)
}
