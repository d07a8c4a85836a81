package transport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// MaxFrameSize is the largest frame either side accepts
const MaxFrameSize = 64 << 10

const frameHeaderSize = 4

// FrameConn is a connection that preserves message boundaries
type FrameConn interface {
	ReadFrame() ([]byte, error)
	WriteFrame(frame []byte) error

	// SetDeadline bounds the handshake. The zero time restores the connection's idle behavior.
	SetDeadline(t time.Time) error

	// SetReadDeadline bounds the next ReadFrame
	SetReadDeadline(t time.Time) error
	RemoteAddr() net.Addr
	Close() error
}

// streamConn frames a byte stream as [u32 length][frame]
type streamConn struct {
	conn net.Conn
	r    *bufio.Reader
	wmu  sync.Mutex
}

// NewStreamConn returns a FrameConn over a reliable byte stream
func NewStreamConn(conn net.Conn) FrameConn {
	return &streamConn{
		conn: conn,
		r:    bufio.NewReader(conn),
	}
}

func (s *streamConn) ReadFrame() ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(s.r, header[:]); err != nil {
		return nil, err
	}

	size := binary.BigEndian.Uint32(header[:])
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	frame := make([]byte, size)
	if _, err := io.ReadFull(s.r, frame); err != nil {
		return nil, err
	}

	return frame, nil
}

func (s *streamConn) WriteFrame(frame []byte) error {
	if len(frame) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(frame))
	}

	buf := make([]byte, frameHeaderSize+len(frame))
	binary.BigEndian.PutUint32(buf, uint32(len(frame)))
	copy(buf[frameHeaderSize:], frame)

	s.wmu.Lock()
	defer s.wmu.Unlock()

	_, err := s.conn.Write(buf)
	return err
}

func (s *streamConn) SetDeadline(t time.Time) error {
	return s.conn.SetDeadline(t)
}

func (s *streamConn) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

func (s *streamConn) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *streamConn) Close() error {
	return s.conn.Close()
}
