package kcp

import (
	"testing"
	"time"

	"runo-server/pkg/transport"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_RoundTrip(t *testing.T) {
	a := assert.New(t)
	logger := logrus.StandardLogger()

	srv, err := Listen("127.0.0.1:0", transport.HubConfig{ProtocolID: 1, MaxClients: 4}, logger)
	require.NoError(t, err)
	defer srv.Close()

	conn, err := Dial(srv.Addr(), transport.Hello{ProtocolID: 1, ClientID: 99}, time.Second*2, logger)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return len(srv.ClientIDs()) == 1
	}, time.Second*2, time.Millisecond*10)

	a.NoError(srv.Send(99, transport.ReliableOrdered, []byte("ping")))

	var payload []byte
	a.Eventually(func() bool {
		var ok bool
		payload, ok = conn.Receive(transport.ReliableOrdered)
		return ok
	}, time.Second*2, time.Millisecond*10)
	a.Equal("ping", string(payload))

	a.NoError(conn.Send(transport.ReliableOrdered, []byte("pong")))
	a.Eventually(func() bool {
		payload, _ = srv.Receive(99, transport.ReliableOrdered)
		return string(payload) == "pong"
	}, time.Second*2, time.Millisecond*10)
}

func TestDial_ProtocolMismatch(t *testing.T) {
	logger := logrus.StandardLogger()

	srv, err := Listen("127.0.0.1:0", transport.HubConfig{ProtocolID: 1}, logger)
	require.NoError(t, err)
	defer srv.Close()

	_, err = Dial(srv.Addr(), transport.Hello{ProtocolID: 2, ClientID: 1}, time.Second*2, logger)
	assert.ErrorIs(t, err, transport.ErrProtocolMismatch)
}

func TestServer_DetectsClosedClient(t *testing.T) {
	a := assert.New(t)
	logger := logrus.StandardLogger()

	srv, err := Listen("127.0.0.1:0", transport.HubConfig{ProtocolID: 1, MaxClients: 4, IdleTimeout: time.Millisecond * 300}, logger)
	require.NoError(t, err)
	defer srv.Close()

	conn, err := Dial(srv.Addr(), transport.Hello{ProtocolID: 1, ClientID: 12}, time.Second*2, logger)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(srv.ClientIDs()) == 1
	}, time.Second*2, time.Millisecond*10)

	// heartbeats keep an otherwise silent client admitted
	time.Sleep(time.Millisecond * 900)
	a.Equal([]transport.ClientID{12}, srv.ClientIDs())

	a.NoError(conn.Close())

	var events []transport.Event
	a.Eventually(func() bool {
		events = append(events, srv.Events()...)
		return len(events) == 2
	}, time.Second*3, time.Millisecond*10)

	if a.Len(events, 2) {
		a.Equal(transport.ClientConnected, events[0].Kind)
		a.Equal(transport.ClientDisconnected, events[1].Kind)
		a.Equal(transport.ClientID(12), events[1].ClientID)
	}
	a.Empty(srv.ClientIDs())
}
