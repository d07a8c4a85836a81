package relay

import (
	"runo-server/pkg/protocol"
	"runo-server/pkg/transport"

	"github.com/sirupsen/logrus"
)

// Relay is the client side of the message exchange
type Relay struct {
	client transport.Client
	queue  []protocol.GameMessage
	inbox  Inbox
	logger logrus.FieldLogger
}

// New returns a relay bound to a connected client
func New(client transport.Client, logger logrus.FieldLogger) *Relay {
	return &Relay{
		client: client,
		logger: logger.WithField("client", client.ID()),
	}
}

// Queue adds a message for the next flush
func (r *Relay) Queue(m protocol.GameMessage) {
	r.queue = append(r.queue, m)
}

// Flush sends queued messages in order and clears the queue
func (r *Relay) Flush() int {
	sent := 0
	for _, m := range r.queue {
		payload, err := protocol.Encode(m)
		if err != nil {
			r.logger.WithError(err).WithField("kind", m.Kind).Warn("dropping message that failed to encode")
			continue
		}

		if err := r.client.Send(transport.ReliableOrdered, payload); err != nil {
			r.logger.WithError(err).WithField("kind", m.Kind).Warn("could not send message")
			continue
		}

		sent++
	}

	r.queue = nil
	return sent
}

// Pull decodes everything the server sent since the last pull into the inbox
func (r *Relay) Pull() int {
	added := 0
	for {
		payload, ok := r.client.Receive(transport.ReliableOrdered)
		if !ok {
			return added
		}

		m, err := protocol.Decode(payload)
		if err != nil {
			r.logger.WithError(err).Warn("dropping message that failed to decode")
			continue
		}

		r.inbox.Push(Inbound{Message: m})
		added++
	}
}

// Pop removes the most recently received message
func (r *Relay) Pop() (protocol.GameMessage, bool) {
	in, ok := r.inbox.Pop()
	return in.Message, ok
}

// Drain removes every received message, oldest first
func (r *Relay) Drain() []protocol.GameMessage {
	items := r.inbox.Drain()
	messages := make([]protocol.GameMessage, 0, len(items))
	for _, in := range items {
		messages = append(messages, in.Message)
	}

	return messages
}
