// Package client keeps a player's local view of the game in sync with the server
package client

import (
	"errors"
	"fmt"
	"sync"

	"runo-server/pkg/card"
	"runo-server/pkg/protocol"
	"runo-server/pkg/relay"
	"runo-server/pkg/transport"

	"github.com/sirupsen/logrus"
)

// ErrCardNotHeld is returned when playing a card that is not in the hand
var ErrCardNotHeld = errors.New("card not in hand")

// View is a copy of the client's local state
type View struct {
	Hand     []string `json:"hand"`
	Playable []string `json:"playable"`
	Discard  []string `json:"discard"`
}

// Client applies server messages to a local hand
type Client struct {
	conn   transport.Client
	relay  *relay.Relay
	logger logrus.FieldLogger

	lock     sync.RWMutex
	hand     card.Hand
	playable []string
	discard  []string
}

// New returns a client reading from conn
func New(conn transport.Client, logger logrus.FieldLogger) *Client {
	return &Client{
		conn:   conn,
		relay:  relay.New(conn, logger),
		logger: logger.WithField("client", conn.ID()),
	}
}

// ID returns the id the server knows this client by
func (c *Client) ID() transport.ClientID {
	return c.conn.ID()
}

// Tick applies everything received since the last tick, in order, then sends queued plays.
// Returns true if the local view changed.
func (c *Client) Tick() (bool, error) {
	if !c.conn.Connected() {
		return false, transport.ErrNotConnected
	}

	c.relay.Pull()

	c.lock.Lock()
	defer c.lock.Unlock()

	changed := false
	for _, m := range c.relay.Drain() {
		if c.apply(m) {
			changed = true
		}
	}

	// Play queues under the same lock
	c.relay.Flush()
	return changed, nil
}

// Play queues a PlayCard for the next tick
func (c *Client) Play(name string) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if !c.hand.HasCard(name) {
		return fmt.Errorf("%w: %s", ErrCardNotHeld, name)
	}

	c.relay.Queue(protocol.PlayCard(name))
	c.discard = append(c.discard, name)
	return nil
}

// View returns a copy of the local state
func (c *Client) View() View {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return View{
		Hand:     c.hand.Names(),
		Playable: append([]string{}, c.playable...),
		Discard:  append([]string{}, c.discard...),
	}
}

// NOTE: lock must be held
func (c *Client) apply(m protocol.GameMessage) bool {
	log := c.logger.WithField("kind", m.Kind)

	switch m.Kind {
	case protocol.KindClearHand:
		c.hand.Clear()
		c.playable = nil
	case protocol.KindDrawCard:
		dealt, ok := card.Lookup(m.Card)
		if !ok {
			log.WithField("card", m.Card).Warn("ignoring unknown card")
			return false
		}

		c.hand.AddCard(dealt)
	case protocol.KindCanPlayCards:
		c.playable = m.Cards
	case protocol.KindClearDiscardPile:
		c.discard = nil
	default:
		log.Warn("unexpected message from server")
		return false
	}

	log.Debug("applied message")
	return true
}
