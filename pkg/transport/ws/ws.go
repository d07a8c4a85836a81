// Package ws provides a websocket transport.
package ws

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"runo-server/pkg/transport"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Path is the websocket endpoint
const Path = "/ws"

const writeWait = time.Second * 10

// Server is a websocket server transport
type Server struct {
	*transport.Hub
	listener net.Listener
	http     *http.Server
	upgrader *websocket.Upgrader
	logger   logrus.FieldLogger
}

var _ transport.Server = (*Server)(nil)

// Listen binds addr and starts accepting clients
func Listen(addr string, config transport.HubConfig, logger logrus.FieldLogger) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not listen on %s: %w", addr, err)
	}

	s := &Server{
		Hub:      transport.NewHub(config, logger),
		listener: listener,
		logger:   logger,
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	mux := http.NewServeMux()
	mux.Handle(Path, s)
	s.http = &http.Server{Handler: mux}

	go func() {
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("websocket server stopped")
		}
	}()

	return s, nil
}

// Addr returns the bound address
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// ServeHTTP upgrades the request and hands the connection to the hub
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Error("could not upgrade connection")
		return
	}

	s.Hub.Serve(newConn(conn))
}

// Close stops accepting clients and disconnects everyone
func (s *Server) Close() error {
	_ = s.Hub.Close()
	return s.http.Close()
}

// Dial connects to a server and performs the handshake
func Dial(addr string, hello transport.Hello, timeout time.Duration, logger logrus.FieldLogger) (*transport.Conn, error) {
	dialer := &websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.Dial("ws://"+addr+Path, nil)
	if err != nil {
		return nil, fmt.Errorf("could not dial %s: %w", addr, err)
	}

	return transport.Connect(newConn(conn), hello, timeout, logger)
}

// conn adapts a websocket connection to transport.FrameConn.
// Every binary message is a frame; liveness is left to the transport heartbeat.
type conn struct {
	ws   *websocket.Conn
	wmu  sync.Mutex
	once sync.Once
}

func newConn(ws *websocket.Conn) *conn {
	ws.SetReadLimit(transport.MaxFrameSize)
	return &conn{ws: ws}
}

func (c *conn) ReadFrame() ([]byte, error) {
	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}

		if messageType == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (c *conn) WriteFrame(frame []byte) error {
	if len(frame) > transport.MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", transport.ErrFrameTooLarge, len(frame))
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.BinaryMessage, frame)
}

func (c *conn) SetDeadline(t time.Time) error {
	if err := c.ws.SetWriteDeadline(t); err != nil {
		return err
	}

	return c.ws.SetReadDeadline(t)
}

func (c *conn) SetReadDeadline(t time.Time) error {
	return c.ws.SetReadDeadline(t)
}

func (c *conn) RemoteAddr() net.Addr {
	return c.ws.RemoteAddr()
}

func (c *conn) Close() error {
	var err error
	c.once.Do(func() {
		c.wmu.Lock()
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.wmu.Unlock()

		err = c.ws.Close()
	})

	return err
}
