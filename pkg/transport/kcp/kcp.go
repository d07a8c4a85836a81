// Package kcp provides a reliable, ordered transport over UDP using KCP sessions.
package kcp

import (
	"fmt"
	"time"

	"runo-server/pkg/transport"

	"github.com/sirupsen/logrus"
	kcpgo "github.com/xtaci/kcp-go/v5"
)

// KCP tuning: no-delay mode with a 10ms internal update interval
const (
	noDelay    = 1
	interval   = 10
	resend     = 2
	noCongest  = 1
	windowSize = 256
)

// Server is a UDP server transport
type Server struct {
	*transport.Hub
	listener *kcpgo.Listener
	logger   logrus.FieldLogger
	done     chan struct{}
}

var _ transport.Server = (*Server)(nil)

// Listen binds addr and starts accepting clients
func Listen(addr string, config transport.HubConfig, logger logrus.FieldLogger) (*Server, error) {
	listener, err := kcpgo.ListenWithOptions(addr, nil, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("could not listen on %s: %w", addr, err)
	}

	s := &Server{
		Hub:      transport.NewHub(config, logger),
		listener: listener,
		logger:   logger,
		done:     make(chan struct{}),
	}

	go s.acceptLoop()
	return s, nil
}

// Addr returns the bound address
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) acceptLoop() {
	for {
		session, err := s.listener.AcceptKCP()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.logger.WithError(err).Error("could not accept session")
			}

			return
		}

		tune(session)
		go s.Hub.Serve(transport.NewStreamConn(session))
	}
}

// Close stops accepting clients and disconnects everyone
func (s *Server) Close() error {
	close(s.done)
	_ = s.Hub.Close()
	return s.listener.Close()
}

// Dial connects to a server and performs the handshake.
// UDP has no connection setup, so an unreachable server surfaces as a handshake timeout.
func Dial(addr string, hello transport.Hello, timeout time.Duration, logger logrus.FieldLogger) (*transport.Conn, error) {
	session, err := kcpgo.DialWithOptions(addr, nil, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("could not dial %s: %w", addr, err)
	}

	tune(session)
	return transport.Connect(transport.NewStreamConn(session), hello, timeout, logger)
}

func tune(session *kcpgo.UDPSession) {
	session.SetStreamMode(true)
	session.SetNoDelay(noDelay, interval, resend, noCongest)
	session.SetWindowSize(windowSize, windowSize)
}
