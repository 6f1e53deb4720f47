package wire

import (
	"encoding/json"
	"fmt"
)

// CommandType identifies what a command envelope asks of the device.
type CommandType uint8

const (
	// CommandQueryDeviceInfo requests firmware, hardware and model information.
	CommandQueryDeviceInfo CommandType = iota + 1

	// CommandQueryDeviceStates requests the current light state.
	CommandQueryDeviceStates

	// CommandExecute applies the actions carried in the envelope.
	CommandExecute
)

// String returns the wire name of the command type.
func (c CommandType) String() string {
	switch c {
	case CommandQueryDeviceInfo:
		return "QUERY_DEVICE_INFO"
	case CommandQueryDeviceStates:
		return "QUERY_DEVICE_STATES"
	case CommandExecute:
		return "EXECUTE"
	default:
		return "UNKNOWN"
	}
}

// ParseCommandType parses a wire name into a CommandType.
func ParseCommandType(s string) (CommandType, error) {
	switch s {
	case "QUERY_DEVICE_INFO":
		return CommandQueryDeviceInfo, nil
	case "QUERY_DEVICE_STATES":
		return CommandQueryDeviceStates, nil
	case "EXECUTE":
		return CommandExecute, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCommandType, s)
	}
}

// MarshalJSON encodes the command type as its wire name.
func (c CommandType) MarshalJSON() ([]byte, error) {
	if c < CommandQueryDeviceInfo || c > CommandExecute {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCommandType, uint8(c))
	}
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a wire name.
func (c *CommandType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCommandType(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
