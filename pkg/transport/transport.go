// Package transport is the boundary between the game and the network.
//
// A Server delivers reliable, ordered frames per channel to and from connected clients and
// reports connect/disconnect events. All methods are non-blocking so they can be polled once
// per tick; the network I/O itself happens on goroutines owned by the implementation.
package transport

import (
	"errors"
	"fmt"
)

// transport errors
var (
	ErrNotConnected     = errors.New("not connected")
	ErrUnknownClient    = errors.New("unknown client")
	ErrSendBufferFull   = errors.New("send buffer full")
	ErrServerFull       = errors.New("server is full")
	ErrProtocolMismatch = errors.New("protocol id mismatch")
	ErrDuplicateClient  = errors.New("client id already connected")
	ErrFrameTooLarge    = errors.New("frame too large")
	ErrIdleTimeout      = errors.New("connection idle")
	ErrReservedChannel  = errors.New("channel is reserved")
)

// ClientID identifies a connected client
type ClientID uint64

// Channel identifies a logical channel
type Channel uint8

// ReliableOrdered is the channel game messages are sent on
const ReliableOrdered Channel = 0

// EventKind is the type of a connection event
type EventKind int

// event kinds
const (
	ClientConnected EventKind = iota
	ClientDisconnected
)

func (k EventKind) String() string {
	switch k {
	case ClientConnected:
		return "connected"
	case ClientDisconnected:
		return "disconnected"
	}

	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a connect or disconnect notification
type Event struct {
	Kind     EventKind
	ClientID ClientID

	// Reason is set for disconnects caused by an error
	Reason error
}

// Server is the server side of a transport
type Server interface {
	// Events drains pending connect/disconnect events in the order they happened
	Events() []Event

	// ClientIDs returns the connected clients in ascending order
	ClientIDs() []ClientID

	// Send queues payload for a single client
	Send(id ClientID, ch Channel, payload []byte) error

	// Broadcast queues payload for every connected client
	Broadcast(ch Channel, payload []byte)

	// Receive pops the oldest payload a client sent on ch
	Receive(id ClientID, ch Channel) ([]byte, bool)

	// Close disconnects every client and stops accepting new ones
	Close() error
}

// Client is the client side of a transport
type Client interface {
	// ID returns the id the client announced during the handshake
	ID() ClientID

	// Connected returns false once the connection has been lost
	Connected() bool

	// Send queues payload for the server
	Send(ch Channel, payload []byte) error

	// Receive pops the oldest payload the server sent on ch
	Receive(ch Channel) ([]byte, bool)

	Close() error
}
