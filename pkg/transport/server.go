package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dlight-protocol/dlight-go/pkg/log"
)

// Handler serves one accepted connection. The server closes conn after
// the handler returns.
type Handler func(ctx context.Context, conn *ServerConn)

// ServerConfig configures a device-side Server.
type ServerConfig struct {
	// Address to listen on (default: ":3333").
	Address string

	// Handler serves each connection. Required.
	Handler Handler

	// IdleTimeout bounds how long a connection may stay open (default: 10s).
	IdleTimeout time.Duration

	// Logger receives protocol events. Nil disables capture.
	Logger log.Logger

	// OnError is called for accept failures.
	OnError func(err error)
}

// Server accepts device-side connections, one request per connection.
type Server struct {
	config   ServerConfig
	listener net.Listener

	conns   map[*ServerConn]struct{}
	connsMu sync.RWMutex
	served  atomic.Uint64

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates a server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Handler == nil {
		return nil, errors.New("handler is required")
	}
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = 10 * time.Second
	}
	return &Server{
		config: config,
		conns:  make(map[*ServerConn]struct{}),
	}, nil
}

// Start begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("server already running")
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop closes the listener and all open connections and waits for handlers.
func (s *Server) Stop() error {
	if !s.running.Swap(false) {
		return nil
	}
	s.cancel()
	s.listener.Close()

	s.connsMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()
	return nil
}

// Addr returns the listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// ConnectionCount returns the number of open connections.
func (s *Server) ConnectionCount() int {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	return len(s.conns)
}

// Served returns how many connections have been handled to completion.
func (s *Server) Served() uint64 {
	return s.served.Load()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running.Load() && s.config.OnError != nil {
				s.config.OnError(fmt.Errorf("accept error: %w", err))
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()

	_ = conn.SetDeadline(time.Now().Add(s.config.IdleTimeout))

	sconn := &ServerConn{
		conn:   conn,
		connID: uuid.New().String(),
		logger: s.config.Logger,
	}
	sconn.state("", log.ConnStateConnected)

	s.connsMu.Lock()
	s.conns[sconn] = struct{}{}
	s.connsMu.Unlock()

	// A connection registered after Stop swept conns is closed unserved.
	if s.running.Load() {
		s.config.Handler(s.ctx, sconn)
	}
	sconn.Close()

	s.connsMu.Lock()
	delete(s.conns, sconn)
	s.connsMu.Unlock()

	s.served.Add(1)
	sconn.state(log.ConnStateConnected, log.ConnStateClosed)
}

// ServerConn is the device side of one exchange.
type ServerConn struct {
	conn      net.Conn
	connID    string
	logger    log.Logger
	closeOnce sync.Once
}

// ConnID returns the connection's log identifier.
func (c *ServerConn) ConnID() string {
	return c.connID
}

// RemoteAddr returns the controller's address.
func (c *ServerConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Read reads raw request bytes.
func (c *ServerConn) Read(p []byte) (int, error) {
	return c.conn.Read(p)
}

// Reply writes a valid length-prefixed reply.
func (c *ServerConn) Reply(body []byte) error {
	if err := NewFrameWriter(c.conn).WriteFrame(body); err != nil {
		return err
	}
	c.logFrame(body)
	return nil
}

// ReplyRaw writes an unchecked length prefix followed by body.
func (c *ServerConn) ReplyRaw(length uint32, body []byte) error {
	if err := WriteRawFrame(c.conn, length, body); err != nil {
		return err
	}
	c.logFrame(body)
	return nil
}

// Close closes the connection. Close is idempotent.
func (c *ServerConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

func (c *ServerConn) logFrame(body []byte) {
	if c.logger == nil {
		return
	}
	e := frameEvent(c.connID, body, LengthPrefixSize+len(body), log.DirectionOut)
	e.RemoteAddr = c.conn.RemoteAddr().String()
	c.logger.Log(e)
}

func (c *ServerConn) state(oldState, newState string) {
	if c.logger == nil {
		return
	}
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		RemoteAddr:   c.conn.RemoteAddr().String(),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
		},
	})
}
