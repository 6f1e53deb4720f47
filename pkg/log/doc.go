// Package log provides structured protocol logging for dLight exchanges.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events at the transport, wire and client layers. It is
// separate from operational logging (slog): protocol capture provides a
// machine-readable trace of every command exchange for debugging.
//
// # Basic Usage
//
//	// Console output via slog
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// Binary capture file
//	fileLogger, _ := log.NewFileLogger("/var/log/dlight/session.dlog")
//
//	// Both
//	logger := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fileLogger)
//
// # Event Types
//
//   - Transport: raw frame bytes and connection state (FrameEvent, StateChangeEvent)
//   - Wire: decoded command envelopes and replies (CommandEvent)
//   - Errors at any layer (ErrorEventData)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with the .dlog extension.
// The dlight-log tool views, exports and summarizes them.
package log
