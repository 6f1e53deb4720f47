// Package transport provides the dLight transport layer.
//
// Every command uses a fresh TCP connection:
//
//	dial host:3333 -> write JSON -> read 4-byte length -> read body -> close
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      JSON envelopes            │
//	├────────────────────────────────┤
//	│  Length prefix (replies only)  │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// Requests are written unframed. Replies carry a 4-byte big-endian length
// that must satisfy 0 < L < 8192.
//
// # Timeouts
//
// The protocol defines none. Client applies ConnectTimeout to the dial and
// IOTimeout to the write and both reads; the caller's context may shorten
// either. Cancelling the context closes the socket.
package transport
