package dlight

import (
	"log/slog"
	"time"

	"github.com/dlight-protocol/dlight-go/pkg/log"
	"github.com/dlight-protocol/dlight-go/pkg/transport"
	"github.com/dlight-protocol/dlight-go/pkg/wire"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	transport transport.ClientConfig
	exchanger transport.Exchanger
	ids       wire.IDGenerator
	idPrefix  string
	logger    *slog.Logger
}

func defaultOptions() options {
	return options{
		idPrefix: wire.DefaultIDPrefix,
		logger:   slog.Default(),
	}
}

// WithPort overrides the device port (default 3333).
func WithPort(port int) Option {
	return func(o *options) { o.transport.Port = port }
}

// WithConnectTimeout bounds the TCP dial.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) { o.transport.ConnectTimeout = d }
}

// WithIOTimeout bounds the request write and the reply reads.
func WithIOTimeout(d time.Duration) Option {
	return func(o *options) { o.transport.IOTimeout = d }
}

// WithDialer replaces the network dialer.
func WithDialer(d transport.Dialer) Option {
	return func(o *options) { o.transport.Dialer = d }
}

// WithExchanger replaces the whole transport. Transport options are then ignored.
func WithExchanger(e transport.Exchanger) Option {
	return func(o *options) { o.exchanger = e }
}

// WithProtocolLogger captures protocol events.
func WithProtocolLogger(l log.Logger) Option {
	return func(o *options) { o.transport.Logger = l }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIDPrefix sets the command id prefix (default "hass").
func WithIDPrefix(prefix string) Option {
	return func(o *options) { o.idPrefix = prefix }
}

// WithIDGenerator injects the command id source. It takes precedence over
// WithIDPrefix.
func WithIDGenerator(g wire.IDGenerator) Option {
	return func(o *options) { o.ids = g }
}
