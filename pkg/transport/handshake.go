package transport

import (
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// HelloSize is the size of an encoded Hello
const HelloSize = 16

// handshake replies
const (
	replyAccepted byte = iota + 1
	replyProtocolMismatch
	replyServerFull
	replyDuplicateClient
)

// DefaultHandshakeTimeout bounds how long either side waits for the other during the handshake
const DefaultHandshakeTimeout = time.Second * 5

// DefaultIdleTimeout is how long either side tolerates silence before dropping the connection.
// Servers ping at least every third of it.
const DefaultIdleTimeout = time.Second * 15

// Hello is the first frame a client sends
type Hello struct {
	ProtocolID uint64
	ClientID   ClientID
}

var (
	_ encoding.BinaryMarshaler   = (*Hello)(nil)
	_ encoding.BinaryUnmarshaler = (*Hello)(nil)
)

// NewHello returns a Hello whose client id is the current Unix time in milliseconds
func NewHello(protocolID uint64) Hello {
	return Hello{
		ProtocolID: protocolID,
		ClientID:   ClientID(time.Now().UnixMilli()),
	}
}

// MarshalBinary encodes the hello as two big-endian uint64s
func (h *Hello) MarshalBinary() ([]byte, error) {
	data := make([]byte, HelloSize)
	binary.BigEndian.PutUint64(data[0:8], h.ProtocolID)
	binary.BigEndian.PutUint64(data[8:16], uint64(h.ClientID))

	return data, nil
}

// UnmarshalBinary decodes a hello
func (h *Hello) UnmarshalBinary(data []byte) error {
	if len(data) != HelloSize {
		return fmt.Errorf("hello must be %d bytes, got %d", HelloSize, len(data))
	}

	h.ProtocolID = binary.BigEndian.Uint64(data[0:8])
	h.ClientID = ClientID(binary.BigEndian.Uint64(data[8:16]))

	return nil
}

func replyError(reply byte) error {
	switch reply {
	case replyAccepted:
		return nil
	case replyProtocolMismatch:
		return ErrProtocolMismatch
	case replyServerFull:
		return ErrServerFull
	case replyDuplicateClient:
		return ErrDuplicateClient
	}

	return fmt.Errorf("unknown handshake reply: %d", reply)
}

func errorReply(err error) byte {
	switch {
	case errors.Is(err, ErrProtocolMismatch):
		return replyProtocolMismatch
	case errors.Is(err, ErrDuplicateClient):
		return replyDuplicateClient
	default:
		return replyServerFull
	}
}
