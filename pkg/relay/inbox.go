package relay

import (
	"runo-server/pkg/protocol"
	"runo-server/pkg/transport"

	"github.com/sirupsen/logrus"
)

// Inbound is a received message and its sender
type Inbound struct {
	From    transport.ClientID
	Message protocol.GameMessage
}

// Inbox holds decoded messages until the game consumes them
type Inbox struct {
	items []Inbound
}

// Push appends a message
func (i *Inbox) Push(in Inbound) {
	i.items = append(i.items, in)
}

// Pop removes the most recently received message
func (i *Inbox) Pop() (Inbound, bool) {
	n := len(i.items)
	if n == 0 {
		return Inbound{}, false
	}

	in := i.items[n-1]
	i.items = i.items[:n-1]
	return in, true
}

// Drain removes every message, oldest first
func (i *Inbox) Drain() []Inbound {
	items := i.items
	i.items = nil
	return items
}

// Len returns the number of held messages
func (i *Inbox) Len() int {
	return len(i.items)
}

// Pull receives everything each connected client sent since the last pull.
// A payload that fails to decode is logged and skipped. Returns the number of messages added.
func Pull(server transport.Server, inbox *Inbox, logger logrus.FieldLogger) int {
	added := 0
	for _, id := range server.ClientIDs() {
		for {
			payload, ok := server.Receive(id, transport.ReliableOrdered)
			if !ok {
				break
			}

			m, err := protocol.Decode(payload)
			if err != nil {
				logger.WithError(err).WithField("client", id).Warn("dropping message that failed to decode")
				continue
			}

			inbox.Push(Inbound{From: id, Message: m})
			added++
		}
	}

	return added
}
