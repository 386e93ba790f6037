package p2p

import (
	"fmt"
)

// ErrTransportClosed is returned by transport operations after Stop.
type ErrTransportClosed struct {
}

func (e ErrTransportClosed) Error() string {
	return "Transport has been closed"
}

//-------------------------------------------------------------------

type ErrNetAddressNoId struct {
	Addr string
}

func (e ErrNetAddressNoId) Error() string {
	return fmt.Sprintf("Address (%s) does not contain NodeId", e.Addr)
}

type ErrNetAddressInvalid struct {
	Addr string
	Err  error
}

func (e ErrNetAddressInvalid) Error() string {
	return fmt.Sprintf("Invalid address (%s): %v", e.Addr, e.Err)
}

type ErrNetAddressLookup struct {
	Addr string
	Err  error
}

func (e ErrNetAddressLookup) Error() string {
	return fmt.Sprintf("Error looking up host (%s): %v", e.Addr, e.Err)
}
