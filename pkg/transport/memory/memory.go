// Package memory is an in-process transport.
// It backs the single-process mode and lets tests drive connects, disconnects and traffic directly.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"runo-server/pkg/transport"
)

// Frame is a payload on a channel
type Frame struct {
	Channel transport.Channel
	Payload []byte
}

type endpoint struct {
	toServer map[transport.Channel][][]byte
	toClient map[transport.Channel][][]byte
}

func newEndpoint() *endpoint {
	return &endpoint{
		toServer: make(map[transport.Channel][][]byte),
		toClient: make(map[transport.Channel][][]byte),
	}
}

// Server is an in-memory server transport
type Server struct {
	lock      sync.Mutex
	endpoints map[transport.ClientID]*endpoint
	events    []transport.Event
	closed    bool
}

var _ transport.Server = (*Server)(nil)

// NewServer returns a server with no clients
func NewServer() *Server {
	return &Server{
		endpoints: make(map[transport.ClientID]*endpoint),
	}
}

// Connect simulates a client connecting
func (s *Server) Connect(id transport.ClientID) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return transport.ErrServerFull
	}

	if _, found := s.endpoints[id]; found {
		return fmt.Errorf("%w: %d", transport.ErrDuplicateClient, id)
	}

	s.endpoints[id] = newEndpoint()
	s.events = append(s.events, transport.Event{Kind: transport.ClientConnected, ClientID: id})
	return nil
}

// Disconnect simulates a client going away
func (s *Server) Disconnect(id transport.ClientID, reason error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, found := s.endpoints[id]; !found {
		return
	}

	delete(s.endpoints, id)
	s.events = append(s.events, transport.Event{Kind: transport.ClientDisconnected, ClientID: id, Reason: reason})
}

// Deliver simulates a client sending payload
func (s *Server) Deliver(id transport.ClientID, ch transport.Channel, payload []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, found := s.endpoints[id]
	if !found {
		return fmt.Errorf("%w: %d", transport.ErrUnknownClient, id)
	}

	e.toServer[ch] = append(e.toServer[ch], payload)
	return nil
}

// Sent drains what the server has sent to a client on ch, oldest first
func (s *Server) Sent(id transport.ClientID, ch transport.Channel) [][]byte {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, found := s.endpoints[id]
	if !found {
		return nil
	}

	sent := e.toClient[ch]
	delete(e.toClient, ch)
	return sent
}

// Client returns the client side of a connected endpoint
func (s *Server) Client(id transport.ClientID) transport.Client {
	return &Client{server: s, id: id}
}

// Events drains pending events
func (s *Server) Events() []transport.Event {
	s.lock.Lock()
	defer s.lock.Unlock()

	events := s.events
	s.events = nil
	return events
}

// ClientIDs returns the connected clients in ascending order
func (s *Server) ClientIDs() []transport.ClientID {
	s.lock.Lock()
	ids := make([]transport.ClientID, 0, len(s.endpoints))
	for id := range s.endpoints {
		ids = append(ids, id)
	}
	s.lock.Unlock()

	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})

	return ids
}

// Send queues payload for a client
func (s *Server) Send(id transport.ClientID, ch transport.Channel, payload []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, found := s.endpoints[id]
	if !found {
		return fmt.Errorf("%w: %d", transport.ErrUnknownClient, id)
	}

	e.toClient[ch] = append(e.toClient[ch], payload)
	return nil
}

// Broadcast queues payload for every client
func (s *Server) Broadcast(ch transport.Channel, payload []byte) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, e := range s.endpoints {
		e.toClient[ch] = append(e.toClient[ch], payload)
	}
}

// Receive pops the oldest payload a client sent
func (s *Server) Receive(id transport.ClientID, ch transport.Channel) ([]byte, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, found := s.endpoints[id]
	if !found {
		return nil, false
	}

	queue := e.toServer[ch]
	if len(queue) == 0 {
		return nil, false
	}

	e.toServer[ch] = queue[1:]
	return queue[0], true
}

// Close disconnects every client
func (s *Server) Close() error {
	s.lock.Lock()
	ids := make([]transport.ClientID, 0, len(s.endpoints))
	for id := range s.endpoints {
		ids = append(ids, id)
	}
	s.closed = true
	s.lock.Unlock()

	for _, id := range ids {
		s.Disconnect(id, transport.ErrNotConnected)
	}

	return nil
}

// Client is the client side of an in-memory endpoint
type Client struct {
	server *Server
	id     transport.ClientID
}

var _ transport.Client = (*Client)(nil)

// ID returns the client id
func (c *Client) ID() transport.ClientID {
	return c.id
}

// Connected returns true while the server knows the client
func (c *Client) Connected() bool {
	c.server.lock.Lock()
	defer c.server.lock.Unlock()

	_, found := c.server.endpoints[c.id]
	return found
}

// Send delivers payload to the server
func (c *Client) Send(ch transport.Channel, payload []byte) error {
	if err := c.server.Deliver(c.id, ch, payload); err != nil {
		return transport.ErrNotConnected
	}

	return nil
}

// Receive pops the oldest payload from the server
func (c *Client) Receive(ch transport.Channel) ([]byte, bool) {
	c.server.lock.Lock()
	defer c.server.lock.Unlock()

	e, found := c.server.endpoints[c.id]
	if !found {
		return nil, false
	}

	queue := e.toClient[ch]
	if len(queue) == 0 {
		return nil, false
	}

	e.toClient[ch] = queue[1:]
	return queue[0], true
}

// Close disconnects the client
func (c *Client) Close() error {
	c.server.Disconnect(c.id, nil)
	return nil
}
