package wire

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	// ErrUnknownCommandType indicates a command type outside the defined set.
	ErrUnknownCommandType = errors.New("unknown command type")

	// ErrMissingCommandID indicates an envelope without a command id.
	ErrMissingCommandID = errors.New("missing command id")

	// ErrMissingDeviceID indicates an envelope without a device id.
	ErrMissingDeviceID = errors.New("missing device id")

	// ErrUnexpectedActions indicates actions on a non-EXECUTE command.
	ErrUnexpectedActions = errors.New("actions are only valid for EXECUTE")

	// ErrNoActions indicates an EXECUTE command without any action.
	ErrNoActions = errors.New("EXECUTE requires at least one action")

	// ErrInvalidAction indicates an action that does not set exactly one field.
	ErrInvalidAction = errors.New("invalid action")
)

// Device value ranges.
const (
	// MinBrightness is the lowest device brightness.
	MinBrightness = 0

	// MaxBrightness is the highest device brightness.
	MaxBrightness = 100

	// MinTemperature is the warmest supported color temperature in Kelvin.
	MinTemperature = 2600

	// MaxTemperature is the coolest supported color temperature in Kelvin.
	MaxTemperature = 6000
)

// Command is the envelope sent to a device.
type Command struct {
	// CommandID correlates the request; "<prefix>-<n>".
	CommandID string `json:"commandId"`

	// DeviceID is the opaque identifier the device expects.
	DeviceID string `json:"deviceId"`

	// CommandType selects the query or EXECUTE.
	CommandType CommandType `json:"commandType"`

	// Commands holds the ordered actions for EXECUTE.
	Commands []Action `json:"commands,omitempty"`
}

// Validate checks the envelope is well formed.
func (c *Command) Validate() error {
	if c.CommandID == "" {
		return ErrMissingCommandID
	}
	if c.DeviceID == "" {
		return ErrMissingDeviceID
	}

	switch c.CommandType {
	case CommandQueryDeviceInfo, CommandQueryDeviceStates:
		if len(c.Commands) != 0 {
			return ErrUnexpectedActions
		}
	case CommandExecute:
		if len(c.Commands) == 0 {
			return ErrNoActions
		}
		for i := range c.Commands {
			if err := c.Commands[i].Validate(); err != nil {
				return fmt.Errorf("action %d: %w", i, err)
			}
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownCommandType, uint8(c.CommandType))
	}
	return nil
}

// Action is a single EXECUTE step. Exactly one field is set.
type Action struct {
	On         *bool  `json:"ON,omitempty"`
	Brightness *int   `json:"BRIGHTNESS,omitempty"`
	Color      *Color `json:"COLOR,omitempty"`
}

// Color carries the color temperature in Kelvin.
type Color struct {
	Temperature int `json:"TEMPERATURE"`
}

// OnAction switches the light on or off.
func OnAction(on bool) Action {
	return Action{On: &on}
}

// BrightnessAction sets device brightness (0-100).
func BrightnessAction(brightness int) Action {
	return Action{Brightness: &brightness}
}

// TemperatureAction sets the color temperature in Kelvin.
func TemperatureAction(kelvin int) Action {
	return Action{Color: &Color{Temperature: kelvin}}
}

// Validate checks that exactly one field is set and its value is in range.
func (a *Action) Validate() error {
	set := 0
	if a.On != nil {
		set++
	}
	if a.Brightness != nil {
		set++
		if *a.Brightness < MinBrightness || *a.Brightness > MaxBrightness {
			return fmt.Errorf("%w: brightness %d outside %d-%d",
				ErrInvalidAction, *a.Brightness, MinBrightness, MaxBrightness)
		}
	}
	if a.Color != nil {
		set++
		if a.Color.Temperature < MinTemperature || a.Color.Temperature > MaxTemperature {
			return fmt.Errorf("%w: temperature %dK outside %d-%d",
				ErrInvalidAction, a.Color.Temperature, MinTemperature, MaxTemperature)
		}
	}
	if set != 1 {
		return fmt.Errorf("%w: %d fields set", ErrInvalidAction, set)
	}
	return nil
}

// String returns a short description of the action for logs.
func (a Action) String() string {
	switch {
	case a.On != nil:
		return fmt.Sprintf("ON=%t", *a.On)
	case a.Brightness != nil:
		return fmt.Sprintf("BRIGHTNESS=%d", *a.Brightness)
	case a.Color != nil:
		return fmt.Sprintf("TEMPERATURE=%dK", a.Color.Temperature)
	default:
		return "EMPTY"
	}
}
