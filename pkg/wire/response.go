package wire

import "math"

// Response is a decoded device reply. Its shape depends on the command type.
type Response map[string]any

// Bool returns the boolean stored under key.
func (r Response) Bool(key string) (bool, bool) {
	v, ok := r[key].(bool)
	return v, ok
}

// Int returns the number stored under key as an int.
// Fractional numbers are rejected, as in the typed replies.
func (r Response) Int(key string) (int, bool) {
	switch v := r[key].(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// String returns the string stored under key.
func (r Response) String(key string) (string, bool) {
	v, ok := r[key].(string)
	return v, ok
}

// DeviceInfo is the reply to QUERY_DEVICE_INFO.
type DeviceInfo struct {
	SWVersion   string `json:"swVersion"`
	HWVersion   string `json:"hwVersion"`
	DeviceModel string `json:"deviceModel"`
}

// DeviceStates is the reply to QUERY_DEVICE_STATES.
type DeviceStates struct {
	Status Status  `json:"status"`
	States *States `json:"states,omitempty"`
}

// States is the light state. Absent fields are nil.
type States struct {
	On         *bool        `json:"on,omitempty"`
	Brightness *int         `json:"brightness,omitempty"`
	Color      *StatesColor `json:"color,omitempty"`
}

// StatesColor is the color part of a state report.
type StatesColor struct {
	Temperature *int `json:"temperature,omitempty"`
}

// Temperature returns the reported color temperature in Kelvin, if any.
func (s *States) Temperature() (int, bool) {
	if s == nil || s.Color == nil || s.Color.Temperature == nil {
		return 0, false
	}
	return *s.Color.Temperature, true
}
