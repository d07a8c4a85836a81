package session

import (
	"testing"

	"runo-server/pkg/card"
	"runo-server/pkg/protocol"
	"runo-server/pkg/relay"
	"runo-server/pkg/transport"
	"runo-server/pkg/transport/memory"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	a := assert.New(t)
	m, _ := newTestMachine(t, &roster{1, 2, 9}, Options{PlayerCapacity: 2, MinPlayers: 1, HandSize: 7})
	logger, hook := test.NewNullLogger()

	ctx := m.Context()
	ctx.Logger = logger

	_, err := m.Tick()
	require.NoError(t, err)
	require.Equal(t, Playing, m.State())
	ctx.Outbox.Flush(memory.NewServer(), logger)
	hook.Reset()

	held, err := ctx.World.Hand(1)
	require.NoError(t, err)
	names := card.Hand(held).Names()

	ctx.Inbox.Push(relay.Inbound{From: 1, Message: protocol.PlayCard(held[0].Name)})
	ctx.Inbox.Push(relay.Inbound{From: 9, Message: protocol.PlayCard("Wild")})
	ctx.Inbox.Push(relay.Inbound{From: 1, Message: protocol.ClearHand()})
	ctx.Inbox.Push(relay.Inbound{From: 1, Message: protocol.PlayCard("Not A Card")})

	changed, err := m.Tick()
	a.NoError(err)
	a.True(changed)
	a.Equal(0, ctx.Inbox.Len())

	target := transport.ClientID(1)
	a.Equal([]relay.Envelope{
		{Target: &target, Message: protocol.CanPlayCards(names...)},
		{Target: &target, Message: protocol.CanPlayCards(names...)},
	}, ctx.Outbox.Pending())

	warnings := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}

	a.Equal(3, warnings)

	changed, err = m.Tick()
	a.NoError(err)
	a.False(changed)
}

func TestMachine_IgnoresMessagesWhileAwaitingStart(t *testing.T) {
	a := assert.New(t)
	m, _ := newTestMachine(t, &roster{}, DefaultOptions())

	m.Context().Inbox.Push(relay.Inbound{From: 1, Message: protocol.PlayCard("Wild")})
	_, err := m.Tick()
	a.NoError(err)
	a.Equal(0, m.Context().Inbox.Len())
}
