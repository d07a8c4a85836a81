package room

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"runo-server/internal/rng"
	"runo-server/pkg/card"
	"runo-server/pkg/protocol"
	"runo-server/pkg/session"
	"runo-server/pkg/transport"
	"runo-server/pkg/transport/memory"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDealer(t *testing.T) (*Dealer, *memory.Server) {
	t.Helper()

	logger, _ := test.NewNullLogger()
	server := memory.NewServer()
	d, err := NewDealer(server, session.DefaultOptions(), rng.NewSeeded(7), 1000, logger)
	require.NoError(t, err)

	return d, server
}

func received(t *testing.T, server *memory.Server, id transport.ClientID) []protocol.GameMessage {
	t.Helper()

	var messages []protocol.GameMessage
	for _, payload := range server.Sent(id, transport.ReliableOrdered) {
		m, err := protocol.Decode(payload)
		require.NoError(t, err)
		messages = append(messages, m)
	}

	return messages
}

func TestNewDealer(t *testing.T) {
	a := assert.New(t)
	logger, _ := test.NewNullLogger()

	_, err := NewDealer(memory.NewServer(), session.DefaultOptions(), rng.NewSeeded(1), 0, logger)
	a.Error(err)

	_, err = NewDealer(memory.NewServer(), session.Options{}, rng.NewSeeded(1), 60, logger)
	a.Error(err)

	d, _ := newTestDealer(t)
	status := d.Status()
	a.Equal(session.AwaitingStart, status.State)
	a.NotEmpty(status.SessionID)
	a.Empty(status.Players)
}

func TestDealer_Tick(t *testing.T) {
	a := assert.New(t)
	d, server := newTestDealer(t)

	changed, err := d.Tick()
	a.NoError(err)
	a.False(changed)

	require.NoError(t, server.Connect(1))
	changed, err = d.Tick()
	a.NoError(err)
	a.True(changed)

	messages := received(t, server, 1)
	require.Len(t, messages, 8)
	a.Equal(protocol.KindClearHand, messages[0].Kind)

	var hand card.Hand
	for _, m := range messages[1:] {
		a.Equal(protocol.KindDrawCard, m.Kind)
		c, ok := card.Lookup(m.Card)
		require.True(t, ok)
		hand.AddCard(c)
	}

	status := d.Status()
	a.Equal(session.Playing, status.State)
	a.Equal([]PlayerStatus{{ID: 1, HandSize: 7}}, status.Players)
	a.Equal(card.DeckSize-7, status.DeckSize)
	a.Equal(uint64(2), status.Tick)

	payload, err := protocol.Encode(protocol.PlayCard(hand[0].Name))
	require.NoError(t, err)
	require.NoError(t, server.Deliver(1, transport.ReliableOrdered, payload))

	changed, err = d.Tick()
	a.NoError(err)
	a.True(changed)
	a.Equal([]protocol.GameMessage{protocol.CanPlayCards(hand.Names()...)}, received(t, server, 1))
}

func TestDealer_Observers(t *testing.T) {
	a := assert.New(t)
	d, server := newTestDealer(t)

	for id := transport.ClientID(1); id <= 5; id++ {
		require.NoError(t, server.Connect(id))
	}

	_, err := d.Tick()
	require.NoError(t, err)

	status := d.Status()
	a.Len(status.Players, 4)
	a.Equal([]transport.ClientID{5}, status.Observers)
	a.Equal([]protocol.GameMessage{protocol.ClearHand()}, received(t, server, 5))
}

func TestDealer_Disconnect(t *testing.T) {
	a := assert.New(t)
	d, server := newTestDealer(t)

	require.NoError(t, server.Connect(1))
	require.NoError(t, server.Connect(2))
	_, err := d.Tick()
	require.NoError(t, err)
	id := d.Status().SessionID
	received(t, server, 2)

	server.Disconnect(1, nil)
	changed, err := d.Tick()
	a.True(changed)

	var fe *session.FaultError
	require.ErrorAs(t, err, &fe)
	a.ErrorIs(err, session.ErrPlayerDisconnected)

	messages := received(t, server, 2)
	require.NotEmpty(t, messages)
	a.Equal(protocol.ClearHand(), messages[0])

	status := d.Status()
	a.Equal(session.AwaitingStart, status.State)
	a.NotEqual(id, status.SessionID)
	a.Empty(status.Players)

	_, err = d.Tick()
	a.NoError(err)
	status = d.Status()
	a.Equal(session.Playing, status.State)
	a.Equal([]PlayerStatus{{ID: 2, HandSize: 7}}, status.Players)
}

func TestDealer_Run(t *testing.T) {
	a := assert.New(t)
	d, server := newTestDealer(t)
	require.NoError(t, server.Connect(3))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	a.Eventually(func() bool {
		return d.Status().State == session.Playing
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		a.NoError(err)
	case <-time.After(time.Second):
		a.Fail("run loop did not stop")
	}
}

func TestStatus_JSON(t *testing.T) {
	a := assert.New(t)
	d, _ := newTestDealer(t)

	data, err := json.Marshal(d.Status())
	a.NoError(err)

	var decoded map[string]interface{}
	a.NoError(json.Unmarshal(data, &decoded))
	a.Equal("AwaitingStart", decoded["state"])
	a.Equal([]interface{}{}, decoded["players"])
	a.Equal([]interface{}{}, decoded["observers"])
}
