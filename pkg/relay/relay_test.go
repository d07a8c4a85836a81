package relay

import (
	"testing"

	"runo-server/pkg/protocol"
	"runo-server/pkg/transport"
	"runo-server/pkg/transport/memory"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, payloads [][]byte) []protocol.GameMessage {
	t.Helper()

	messages := make([]protocol.GameMessage, 0, len(payloads))
	for _, payload := range payloads {
		m, err := protocol.Decode(payload)
		require.NoError(t, err)
		messages = append(messages, m)
	}

	return messages
}

func TestOutbox_Flush(t *testing.T) {
	a := assert.New(t)
	logger, hook := test.NewNullLogger()

	server := memory.NewServer()
	require.NoError(t, server.Connect(1))
	require.NoError(t, server.Connect(2))

	var o Outbox
	o.Broadcast(protocol.ClearHand())
	o.Send(1, protocol.DrawCard("Red 5"))
	o.Send(2, protocol.DrawCard("Wild"))
	o.Send(3, protocol.DrawCard("Blue 1"))
	o.Send(1, protocol.GameMessage{Kind: protocol.KindDrawCard})

	pending := o.Pending()
	a.Len(pending, 5)
	a.True(pending[0].IsBroadcast())
	a.Equal(transport.ClientID(1), *pending[1].Target)

	a.Equal(3, o.Flush(server, logger))
	a.Equal(0, o.Len())

	a.Equal([]protocol.GameMessage{
		protocol.ClearHand(),
		protocol.DrawCard("Red 5"),
	}, decodeAll(t, server.Sent(1, transport.ReliableOrdered)))

	a.Equal([]protocol.GameMessage{
		protocol.ClearHand(),
		protocol.DrawCard("Wild"),
	}, decodeAll(t, server.Sent(2, transport.ReliableOrdered)))

	warnings := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}

	a.Equal(2, warnings)

	a.Equal(0, o.Flush(server, logger))
}

func TestInbox(t *testing.T) {
	a := assert.New(t)

	var i Inbox
	_, ok := i.Pop()
	a.False(ok)

	i.Push(Inbound{From: 1, Message: protocol.PlayCard("Red 1")})
	i.Push(Inbound{From: 2, Message: protocol.PlayCard("Red 2")})
	i.Push(Inbound{From: 1, Message: protocol.PlayCard("Red 3")})
	a.Equal(3, i.Len())

	in, ok := i.Pop()
	a.True(ok)
	a.Equal(Inbound{From: 1, Message: protocol.PlayCard("Red 3")}, in)

	a.Equal([]Inbound{
		{From: 1, Message: protocol.PlayCard("Red 1")},
		{From: 2, Message: protocol.PlayCard("Red 2")},
	}, i.Drain())
	a.Equal(0, i.Len())
	a.Empty(i.Drain())
}

func TestPull(t *testing.T) {
	a := assert.New(t)
	logger, hook := test.NewNullLogger()

	server := memory.NewServer()
	require.NoError(t, server.Connect(2))
	require.NoError(t, server.Connect(1))

	good, err := protocol.Encode(protocol.PlayCard("Red 5"))
	require.NoError(t, err)
	other, err := protocol.Encode(protocol.PlayCard("Wild"))
	require.NoError(t, err)

	require.NoError(t, server.Deliver(2, transport.ReliableOrdered, other))
	require.NoError(t, server.Deliver(1, transport.ReliableOrdered, []byte{0xc1}))
	require.NoError(t, server.Deliver(1, transport.ReliableOrdered, good))

	var inbox Inbox
	a.Equal(2, Pull(server, &inbox, logger))
	a.Len(hook.Entries, 1)
	a.Equal(logrus.WarnLevel, hook.LastEntry().Level)

	a.Equal([]Inbound{
		{From: 1, Message: protocol.PlayCard("Red 5")},
		{From: 2, Message: protocol.PlayCard("Wild")},
	}, inbox.Drain())

	a.Equal(0, Pull(server, &inbox, logger))
}

func TestRelay(t *testing.T) {
	a := assert.New(t)
	logger, hook := test.NewNullLogger()

	server := memory.NewServer()
	require.NoError(t, server.Connect(7))
	r := New(server.Client(7), logger)

	r.Queue(protocol.PlayCard("Red 5"))
	r.Queue(protocol.GameMessage{})
	r.Queue(protocol.PlayCard("Wild"))
	a.Equal(2, r.Flush())
	a.Len(hook.Entries, 1)

	payload, ok := server.Receive(7, transport.ReliableOrdered)
	a.True(ok)
	m, err := protocol.Decode(payload)
	a.NoError(err)
	a.Equal(protocol.PlayCard("Red 5"), m)

	var o Outbox
	o.Broadcast(protocol.ClearHand())
	o.Send(7, protocol.DrawCard("Red 5"))
	o.Send(7, protocol.DrawCard("Blue 2"))
	o.Flush(server, logger)
	require.NoError(t, server.Send(7, transport.ReliableOrdered, []byte("junk")))

	a.Equal(3, r.Pull())

	popped, ok := r.Pop()
	a.True(ok)
	a.Equal(protocol.DrawCard("Blue 2"), popped)

	a.Equal([]protocol.GameMessage{
		protocol.ClearHand(),
		protocol.DrawCard("Red 5"),
	}, r.Drain())

	_, ok = r.Pop()
	a.False(ok)

	server.Disconnect(7, nil)
	r.Queue(protocol.PlayCard("Red 5"))
	a.Equal(0, r.Flush())
}
