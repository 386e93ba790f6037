package event

import (
	"fmt"
)

// ErrUnhandledErrorEvent is returned by Emit when an "error" event
// finds no listener and its first argument is not itself an error.
type ErrUnhandledErrorEvent struct {
	Value interface{}
}

func (e ErrUnhandledErrorEvent) Error() string {
	return fmt.Sprintf("Unhandled \"error\" event: %v", e.Value)
}
