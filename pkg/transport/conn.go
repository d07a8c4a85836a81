package transport

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Conn is the client side of a FrameConn transport
type Conn struct {
	id     ClientID
	peer   *peer
	logger logrus.FieldLogger
}

var _ Client = (*Conn)(nil)

// Connect performs the client side of the handshake on conn.
// The returned error is ErrProtocolMismatch, ErrServerFull or ErrDuplicateClient when the server refuses the client.
func Connect(conn FrameConn, hello Hello, timeout time.Duration, logger logrus.FieldLogger) (*Conn, error) {
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}

	_ = conn.SetDeadline(time.Now().Add(timeout))

	data, _ := hello.MarshalBinary()
	if err := conn.WriteFrame(data); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("could not send hello: %w", err)
	}

	reply, err := conn.ReadFrame()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("no handshake reply: %w", err)
	}

	if len(reply) != 1 {
		_ = conn.Close()
		return nil, fmt.Errorf("unexpected handshake reply of %d bytes", len(reply))
	}

	if err := replyError(reply[0]); err != nil {
		_ = conn.Close()
		return nil, err
	}

	_ = conn.SetDeadline(time.Time{})

	log := logger.WithField("client", hello.ClientID)
	c := &Conn{
		id:     hello.ClientID,
		peer:   newPeer(hello.ClientID, conn, liveness{idle: DefaultIdleTimeout}),
		logger: log,
	}

	c.peer.start(func(err error) {
		log.WithError(err).Info("disconnected from server")
	})

	return c, nil
}

// ID returns the client id
func (c *Conn) ID() ClientID {
	return c.id
}

// Connected returns false once the connection is gone
func (c *Conn) Connected() bool {
	return !c.peer.isClosed()
}

// Send queues payload for the server
func (c *Conn) Send(ch Channel, payload []byte) error {
	return c.peer.enqueue(ch, payload)
}

// Receive pops the oldest payload from the server
func (c *Conn) Receive(ch Channel) ([]byte, bool) {
	return c.peer.pop(ch)
}

// Close closes the connection
func (c *Conn) Close() error {
	c.peer.close(ErrNotConnected)
	return nil
}
