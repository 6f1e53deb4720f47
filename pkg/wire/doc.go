// Package wire defines the JSON wire format types for the dLight protocol.
//
// A controller sends one command envelope per TCP connection. The request
// is raw UTF-8 JSON with no outbound framing; the device answers with a
// 4-byte big-endian length prefix followed by that many bytes of JSON.
//
// # Command Types
//
// There are three command types:
//   - QUERY_DEVICE_INFO: firmware/hardware version and model
//   - QUERY_DEVICE_STATES: current on/brightness/color state
//   - EXECUTE: apply an ordered list of actions
//
// # Actions
//
// Each EXECUTE action is a single-key JSON object:
//
//	{"ON": true}
//	{"BRIGHTNESS": 50}
//	{"COLOR": {"TEMPERATURE": 4000}}
//
// Brightness is on the device scale 0-100. Color temperature is in Kelvin
// (2600-6000). The device leaves attributes without an action unchanged.
package wire
