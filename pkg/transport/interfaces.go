package transport

import (
	"context"
	"net"
)

// Dialer opens network connections. *net.Dialer implements it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Exchanger performs a single request/reply exchange.
// Implemented by Client.
type Exchanger interface {
	Exchange(ctx context.Context, host string, payload []byte, info ExchangeInfo) ([]byte, error)
}

// Compile-time interface satisfaction checks.
var (
	_ Dialer    = (*net.Dialer)(nil)
	_ Exchanger = (*Client)(nil)
)
