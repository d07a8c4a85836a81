package transport

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// HubConfig configures admission of new clients
type HubConfig struct {
	ProtocolID       uint64
	MaxClients       int
	HandshakeTimeout time.Duration

	// IdleTimeout disconnects a client that sends nothing, heartbeats included, for this long
	IdleTimeout time.Duration
}

// Hub tracks the peers of a server transport and implements Server on top of FrameConns.
// Listeners hand every accepted connection to Serve.
type Hub struct {
	config HubConfig
	logger logrus.FieldLogger

	lock    sync.RWMutex
	peers   map[ClientID]*peer
	pending map[ClientID]bool
	events  []Event
	closed  bool
}

// NewHub returns an empty hub
func NewHub(config HubConfig, logger logrus.FieldLogger) *Hub {
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = DefaultHandshakeTimeout
	}

	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}

	return &Hub{
		config:  config,
		logger:  logger,
		peers:   make(map[ClientID]*peer),
		pending: make(map[ClientID]bool),
	}
}

// Serve performs the server side of the handshake and, if the client is admitted, starts pumping frames.
// It returns once the handshake is over.
func (h *Hub) Serve(conn FrameConn) {
	log := h.logger.WithField("remote", conn.RemoteAddr().String())

	_ = conn.SetDeadline(time.Now().Add(h.config.HandshakeTimeout))
	frame, err := conn.ReadFrame()
	if err != nil {
		log.WithError(err).Debug("handshake failed")
		_ = conn.Close()
		return
	}

	var hello Hello
	if err := hello.UnmarshalBinary(frame); err != nil {
		log.WithError(err).Warn("invalid hello")
		_ = conn.Close()
		return
	}

	log = log.WithField("client", hello.ClientID)
	if err := h.reserve(hello); err != nil {
		log.WithError(err).Info("refusing client")
		_ = conn.WriteFrame([]byte{errorReply(err)})
		_ = conn.Close()
		return
	}

	if err := conn.WriteFrame([]byte{replyAccepted}); err != nil {
		log.WithError(err).Debug("could not accept client")
		h.lock.Lock()
		delete(h.pending, hello.ClientID)
		h.lock.Unlock()
		_ = conn.Close()
		return
	}

	_ = conn.SetDeadline(time.Time{})

	p := newPeer(hello.ClientID, conn, liveness{
		interval: heartbeatInterval(h.config.IdleTimeout),
		idle:     h.config.IdleTimeout,
	})

	h.lock.Lock()
	delete(h.pending, hello.ClientID)
	if h.closed {
		h.lock.Unlock()
		_ = conn.Close()
		return
	}

	h.peers[p.id] = p
	h.events = append(h.events, Event{Kind: ClientConnected, ClientID: p.id})
	h.lock.Unlock()

	log.Debug("client admitted")
	p.start(func(err error) {
		h.remove(p, err)
	})
}

// heartbeatInterval pings often enough for both the hub's idle timeout and the client's
func heartbeatInterval(idle time.Duration) time.Duration {
	if idle > DefaultIdleTimeout {
		idle = DefaultIdleTimeout
	}

	return idle / 3
}

func (h *Hub) reserve(hello Hello) error {
	if hello.ProtocolID != h.config.ProtocolID {
		return fmt.Errorf("%w: got %d", ErrProtocolMismatch, hello.ProtocolID)
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	if h.closed {
		return ErrServerFull
	}

	if _, found := h.peers[hello.ClientID]; found || h.pending[hello.ClientID] {
		return ErrDuplicateClient
	}

	if h.config.MaxClients > 0 && len(h.peers)+len(h.pending) >= h.config.MaxClients {
		return ErrServerFull
	}

	h.pending[hello.ClientID] = true
	return nil
}

func (h *Hub) remove(p *peer, err error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.peers[p.id] != p {
		return
	}

	delete(h.peers, p.id)
	h.events = append(h.events, Event{Kind: ClientDisconnected, ClientID: p.id, Reason: err})
}

// Events drains pending events
func (h *Hub) Events() []Event {
	h.lock.Lock()
	defer h.lock.Unlock()

	events := h.events
	h.events = nil
	return events
}

// ClientIDs returns the connected clients in ascending order
func (h *Hub) ClientIDs() []ClientID {
	h.lock.RLock()
	ids := make([]ClientID, 0, len(h.peers))
	for id := range h.peers {
		ids = append(ids, id)
	}
	h.lock.RUnlock()

	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})

	return ids
}

func (h *Hub) peer(id ClientID) (*peer, bool) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	p, found := h.peers[id]
	return p, found
}

// Send queues payload for a single client
func (h *Hub) Send(id ClientID, ch Channel, payload []byte) error {
	p, found := h.peer(id)
	if !found {
		return fmt.Errorf("%w: %d", ErrUnknownClient, id)
	}

	return p.enqueue(ch, payload)
}

// Broadcast queues payload for every client
func (h *Hub) Broadcast(ch Channel, payload []byte) {
	for _, id := range h.ClientIDs() {
		if err := h.Send(id, ch, payload); err != nil {
			h.logger.WithError(err).WithField("client", id).Warn("could not broadcast to client")
		}
	}
}

// Receive pops the oldest payload from a client
func (h *Hub) Receive(id ClientID, ch Channel) ([]byte, bool) {
	p, found := h.peer(id)
	if !found {
		return nil, false
	}

	return p.pop(ch)
}

// Disconnect drops a single client
func (h *Hub) Disconnect(id ClientID) {
	if p, found := h.peer(id); found {
		p.close(ErrNotConnected)
	}
}

// Close disconnects every client. New connections are refused afterwards.
func (h *Hub) Close() error {
	h.lock.Lock()
	h.closed = true
	peers := make([]*peer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.lock.Unlock()

	for _, p := range peers {
		p.close(ErrNotConnected)
	}

	return nil
}
