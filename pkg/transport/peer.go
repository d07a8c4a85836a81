package transport

import (
	"errors"
	"net"
	"sync"
	"time"
)

// sendBufferSize is how many frames may be queued for a single peer
const sendBufferSize = 256

// heartbeat frames travel on a reserved channel and never reach the inbound queues
const (
	heartbeatChannel Channel = 255

	heartbeatPing byte = 1
	heartbeatPong byte = 2
)

// liveness controls heartbeats. A peer with an interval pings; every peer answers pings.
// A peer with an idle timeout is closed when nothing arrives for that long.
type liveness struct {
	interval time.Duration
	idle     time.Duration
}

// peer pumps frames between a FrameConn and in-memory queues.
// Each frame on the wire is [u8 channel][payload].
type peer struct {
	id   ClientID
	conn FrameConn
	live liveness

	send chan []byte

	lock    sync.Mutex
	inbound map[Channel][][]byte

	closeOnce sync.Once
	done      chan struct{}
	err       error
}

func newPeer(id ClientID, conn FrameConn, live liveness) *peer {
	return &peer{
		id:      id,
		conn:    conn,
		live:    live,
		send:    make(chan []byte, sendBufferSize),
		inbound: make(map[Channel][][]byte),
		done:    make(chan struct{}),
	}
}

// start runs the read and write loops. onClose is called once, from the read loop, after the connection is gone.
func (p *peer) start(onClose func(err error)) {
	go p.writeLoop()
	go p.readLoop(onClose)
}

// enqueue must return quickly; a peer that cannot keep up is disconnected
func (p *peer) enqueue(ch Channel, payload []byte) error {
	if ch == heartbeatChannel {
		return ErrReservedChannel
	}

	frame := make([]byte, 1+len(payload))
	frame[0] = byte(ch)
	copy(frame[1:], payload)

	return p.enqueueFrame(frame)
}

func (p *peer) enqueueFrame(frame []byte) error {
	select {
	case <-p.done:
		return ErrNotConnected
	default:
	}

	select {
	case p.send <- frame:
		return nil
	default:
		p.close(ErrSendBufferFull)
		return ErrSendBufferFull
	}
}

func (p *peer) pop(ch Channel) ([]byte, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()

	queue := p.inbound[ch]
	if len(queue) == 0 {
		return nil, false
	}

	payload := queue[0]
	queue[0] = nil
	p.inbound[ch] = queue[1:]

	return payload, true
}

func (p *peer) isClosed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *peer) readLoop(onClose func(err error)) {
	for {
		var deadline time.Time
		if p.live.idle > 0 {
			deadline = time.Now().Add(p.live.idle)
			_ = p.conn.SetReadDeadline(deadline)
		}

		frame, err := p.conn.ReadFrame()
		if err != nil {
			if isTimeout(err) || (!deadline.IsZero() && !time.Now().Before(deadline)) {
				err = ErrIdleTimeout
			}

			p.close(err)
			if onClose != nil {
				onClose(p.err)
			}

			return
		}

		if len(frame) == 0 {
			continue
		}

		ch := Channel(frame[0])
		if ch == heartbeatChannel {
			if len(frame) == 2 && frame[1] == heartbeatPing {
				_ = p.enqueueFrame([]byte{byte(heartbeatChannel), heartbeatPong})
			}

			continue
		}

		p.lock.Lock()
		p.inbound[ch] = append(p.inbound[ch], frame[1:])
		p.lock.Unlock()
	}
}

func (p *peer) writeLoop() {
	var heartbeat <-chan time.Time
	if p.live.interval > 0 {
		ticker := time.NewTicker(p.live.interval)
		defer ticker.Stop()
		heartbeat = ticker.C
	}

	for {
		select {
		case <-p.done:
			return
		case <-heartbeat:
			if err := p.conn.WriteFrame([]byte{byte(heartbeatChannel), heartbeatPing}); err != nil {
				p.close(err)
				return
			}
		case frame := <-p.send:
			if err := p.conn.WriteFrame(frame); err != nil {
				p.close(err)
				return
			}
		}
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// close records the first error and tears down the connection, which ends the read loop
func (p *peer) close(err error) {
	p.closeOnce.Do(func() {
		p.err = err
		close(p.done)
		_ = p.conn.Close()
	})
}
