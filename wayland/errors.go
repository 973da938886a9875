package wayland

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConnect      = errors.New("wayland: failed to connect to display")
	ErrClosed       = errors.New("wayland: display closed")
	ErrUnknownID    = errors.New("wayland: unknown object")
	ErrCreateObject = errors.New("wayland: failed to create object")
)

// MissingGlobalsError is returned by Connect when the compositor does not
// advertise every global the renderer needs.
type MissingGlobalsError struct {
	Interfaces []string
}

func (e *MissingGlobalsError) Error() string {
	return "wayland: compositor lacks " + strings.Join(e.Interfaces, ", ")
}

// ProtocolError is a fatal protocol error raised by the compositor on
// one of this client's objects.
type ProtocolError struct {
	Interface string
	ID        uint32
	Code      uint32
}

func (e *ProtocolError) Error() string {
	iface := e.Interface
	if iface == "" {
		iface = "unknown interface"
	}
	return fmt.Sprintf("wayland: protocol error %d on %s@%d", e.Code, iface, e.ID)
}
