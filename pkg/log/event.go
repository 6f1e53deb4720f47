package log

import "time"

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the TCP exchange (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates data flow relative to this client.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the device address (host:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// DeviceID is the device identifier carried in the command.
	DeviceID string `cbor:"7,keyasint,omitempty"`

	// CommandID is the id of the command this event belongs to.
	CommandID string `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (at most one of these is set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	Command     *CommandEvent     `cbor:"11,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn is data received from the device.
	DirectionIn Direction = 0
	// DirectionOut is data sent to the device.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the socket and framing layer (raw bytes).
	LayerTransport Layer = 0
	// LayerWire is the JSON envelope layer.
	LayerWire Layer = 1
	// LayerClient is the device client operation layer.
	LayerClient Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerClient:
		return "CLIENT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage is a frame or command envelope.
	CategoryMessage Category = 0
	// CategoryState is a connection or light state change.
	CategoryState Category = 1
	// CategoryError is an error at any layer.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw bytes at the transport layer.
// Outbound payloads are unframed; Size then equals len(payload).
type FrameEvent struct {
	// Size is the number of bytes on the wire, including any length prefix.
	Size int `cbor:"1,keyasint"`

	// Data is the payload (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// CommandEvent captures a command envelope or its decoded reply.
type CommandEvent struct {
	// Type distinguishes request and response.
	Type MessageType `cbor:"1,keyasint"`

	// CommandType is the wire name, e.g. "EXECUTE".
	CommandType string `cbor:"2,keyasint"`

	// Actions lists EXECUTE actions in send order (requests only).
	Actions []string `cbor:"3,keyasint,omitempty"`

	// Status is the reported status, if the reply carried one.
	Status string `cbor:"4,keyasint,omitempty"`

	// Duration is the time from dial to decoded reply (responses only).
	Duration *time.Duration `cbor:"5,keyasint,omitempty"`
}

// MessageType distinguishes request and response.
type MessageType uint8

const (
	// MessageTypeRequest is a command sent to the device.
	MessageTypeRequest MessageType = 0
	// MessageTypeResponse is a reply from the device.
	MessageTypeResponse MessageType = 1
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageTypeRequest:
		return "REQUEST"
	case MessageTypeResponse:
		return "RESPONSE"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures connection and light lifecycle changes.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what changed state.
type StateEntity uint8

const (
	// StateEntityConnection is the per-command TCP connection.
	StateEntityConnection StateEntity = 0
	// StateEntityLight is the availability of a polled light.
	StateEntityLight StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityLight:
		return "LIGHT"
	default:
		return "UNKNOWN"
	}
}

// Connection state names used in StateChangeEvent.
const (
	ConnStateDialing   = "DIALING"
	ConnStateConnected = "CONNECTED"
	ConnStateClosed    = "CLOSED"
)

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Kind is the error classification, e.g. "cannot_connect" or "wrong_id".
	Kind string `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
