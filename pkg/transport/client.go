package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dlight-protocol/dlight-go/pkg/log"
)

// Client defaults.
const (
	// DefaultPort is the TCP port dLight devices listen on.
	DefaultPort = 3333

	// DefaultConnectTimeout bounds the dial.
	DefaultConnectTimeout = 5 * time.Second

	// DefaultIOTimeout bounds the write and both reads of an exchange.
	DefaultIOTimeout = 5 * time.Second
)

// Exchange errors.
var (
	// ErrDial indicates the TCP connection could not be established.
	ErrDial = errors.New("dial failed")

	// ErrWrite indicates the request could not be written.
	ErrWrite = errors.New("write failed")

	// ErrRead indicates the reply could not be read.
	ErrRead = errors.New("read failed")

	// ErrEmptyRequest indicates an exchange with no payload.
	ErrEmptyRequest = errors.New("empty request")
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// Port is used when the host has no port (default: 3333).
	Port int

	// ConnectTimeout is the dial timeout (default: 5s).
	ConnectTimeout time.Duration

	// IOTimeout is the deadline for write and reads (default: 5s).
	IOTimeout time.Duration

	// MaxFrameSize is the exclusive reply length bound (default: 8192).
	MaxFrameSize uint32

	// Dialer opens connections. Defaults to a net.Dialer.
	Dialer Dialer

	// Logger receives protocol events. Nil disables capture.
	Logger log.Logger
}

// Client performs one-shot request/reply exchanges with a device.
// It holds no connection state and is safe for concurrent use.
type Client struct {
	config ClientConfig
}

// NewClient creates a client, filling in defaults.
func NewClient(config ClientConfig) *Client {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}
	if config.IOTimeout == 0 {
		config.IOTimeout = DefaultIOTimeout
	}
	if config.MaxFrameSize == 0 {
		config.MaxFrameSize = MaxFrameSize
	}
	if config.Dialer == nil {
		config.Dialer = &net.Dialer{}
	}
	return &Client{config: config}
}

// Config returns the effective configuration.
func (c *Client) Config() ClientConfig {
	return c.config
}

// Address returns host:port for host. A host that already names a port is
// returned unchanged.
func (c *Client) Address(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, strconv.Itoa(c.config.Port))
}

// ExchangeInfo labels an exchange in protocol logs.
type ExchangeInfo struct {
	DeviceID  string
	CommandID string
}

// Exchange dials host, writes payload, reads one framed reply and closes
// the connection. The connection is closed on every return path.
func (c *Client) Exchange(ctx context.Context, host string, payload []byte, info ExchangeInfo) ([]byte, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyRequest
	}

	ex := &exchange{
		logger: c.config.Logger,
		connID: uuid.New().String(),
		addr:   c.Address(host),
		info:   info,
	}

	dialCtx, cancelDial := context.WithTimeout(ctx, c.config.ConnectTimeout)
	ex.state("", log.ConnStateDialing, "")
	conn, err := c.config.Dialer.DialContext(dialCtx, "tcp", ex.addr)
	cancelDial()
	if err != nil {
		return nil, ex.fail(fmt.Errorf("%w: %s: %w", ErrDial, ex.addr, err), "dial")
	}
	ex.state(log.ConnStateDialing, log.ConnStateConnected, "")

	defer func() {
		conn.Close()
		ex.state(log.ConnStateConnected, log.ConnStateClosed, "")
	}()

	// Cancelling ctx closes the socket, which unblocks pending I/O.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	deadline := time.Now().Add(c.config.IOTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, ex.fail(fmt.Errorf("%w: set deadline: %w", ErrWrite, err), "deadline")
	}

	if _, err := conn.Write(payload); err != nil {
		return nil, ex.fail(withContext(ctx, fmt.Errorf("%w: %w", ErrWrite, err)), "write request")
	}
	ex.log(frameEvent(ex.connID, payload, len(payload), log.DirectionOut))

	reader := NewFrameReaderWithMaxSize(conn, c.config.MaxFrameSize)
	if c.config.Logger != nil {
		reader.SetLogger(ex, ex.connID)
	}
	body, err := reader.ReadFrame()
	if err != nil {
		if !errors.Is(err, ErrFrameLength) && !errors.Is(err, ErrNoResponse) {
			err = withContext(ctx, fmt.Errorf("%w: %w", ErrRead, err))
		}
		return nil, ex.fail(err, "read response")
	}

	return body, nil
}

// withContext attaches the context error when cancellation caused err.
func withContext(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	return err
}

// exchange decorates log events of one connection.
type exchange struct {
	logger log.Logger
	connID string
	addr   string
	info   ExchangeInfo
}

// Log implements log.Logger so the frame reader can log through the exchange.
func (e *exchange) Log(event log.Event) {
	e.log(event)
}

func (e *exchange) log(event log.Event) {
	if e.logger == nil {
		return
	}
	event.RemoteAddr = e.addr
	event.DeviceID = e.info.DeviceID
	event.CommandID = e.info.CommandID
	e.logger.Log(event)
}

func (e *exchange) state(oldState, newState, reason string) {
	e.log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: e.connID,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (e *exchange) fail(err error, op string) error {
	e.log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: e.connID,
		Layer:        log.LayerTransport,
		Category:     log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: op,
		},
	})
	return err
}
