// Package relay moves GameMessages between the game and a transport once per tick.
package relay

import (
	"runo-server/pkg/protocol"
	"runo-server/pkg/transport"

	"github.com/sirupsen/logrus"
)

// Envelope is a queued outgoing message. A nil Target is a broadcast.
type Envelope struct {
	Target  *transport.ClientID
	Message protocol.GameMessage
}

// IsBroadcast returns true if the envelope goes to every peer
func (e Envelope) IsBroadcast() bool {
	return e.Target == nil
}

// Outbox is a FIFO of outgoing messages
type Outbox struct {
	queue []Envelope
}

// Send queues a message for one client
func (o *Outbox) Send(id transport.ClientID, m protocol.GameMessage) {
	o.queue = append(o.queue, Envelope{Target: &id, Message: m})
}

// Broadcast queues a message for every client
func (o *Outbox) Broadcast(m protocol.GameMessage) {
	o.queue = append(o.queue, Envelope{Message: m})
}

// Pending returns a copy of the queued envelopes
func (o *Outbox) Pending() []Envelope {
	pending := make([]Envelope, len(o.queue))
	copy(pending, o.queue)
	return pending
}

// Len returns the number of queued envelopes
func (o *Outbox) Len() int {
	return len(o.queue)
}

// Flush encodes and hands every queued envelope to the server in order, then clears the queue.
// Messages that fail to encode or send are logged and dropped. Returns the number handed off.
func (o *Outbox) Flush(server transport.Server, logger logrus.FieldLogger) int {
	sent := 0
	for _, e := range o.queue {
		payload, err := protocol.Encode(e.Message)
		if err != nil {
			logger.WithError(err).WithField("kind", e.Message.Kind).Warn("dropping message that failed to encode")
			continue
		}

		if e.IsBroadcast() {
			server.Broadcast(transport.ReliableOrdered, payload)
			sent++
			continue
		}

		if err := server.Send(*e.Target, transport.ReliableOrdered, payload); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"client": *e.Target,
				"kind":   e.Message.Kind,
			}).Warn("could not send message")
			continue
		}

		sent++
	}

	o.queue = nil
	return sent
}
