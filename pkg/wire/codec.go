package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// Decoding errors.
var (
	// ErrInvalidUTF8 indicates a response body that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("response is not valid UTF-8")

	// ErrNotObject indicates a response body whose top-level value is not a JSON object.
	ErrNotObject = errors.New("response is not a JSON object")
)

// EncodeCommand validates and encodes a command envelope to JSON bytes.
func EncodeCommand(cmd *Command) ([]byte, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}
	return json.Marshal(cmd)
}

// DecodeCommand decodes and validates a command envelope.
func DecodeCommand(data []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("failed to decode command: %w", err)
	}
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}
	return &cmd, nil
}

// NewCommandDecoder returns a decoder that reads one envelope at a time from
// an unframed stream, as a device does.
func NewCommandDecoder(r io.Reader) *json.Decoder {
	return json.NewDecoder(r)
}

// EncodeResponse encodes a device reply.
func EncodeResponse(v any) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeResponse decodes a framed response body into a generic object.
func DecodeResponse(data []byte) (Response, error) {
	if err := checkBody(data); err != nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp == nil {
		return nil, ErrNotObject
	}
	return resp, nil
}

// DecodeDeviceInfo decodes a QUERY_DEVICE_INFO reply.
func DecodeDeviceInfo(data []byte) (*DeviceInfo, error) {
	var info DeviceInfo
	if err := decodeObject(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// DecodeDeviceStates decodes a QUERY_DEVICE_STATES reply.
func DecodeDeviceStates(data []byte) (*DeviceStates, error) {
	var states DeviceStates
	if err := decodeObject(data, &states); err != nil {
		return nil, err
	}
	return &states, nil
}

func decodeObject(data []byte, v any) error {
	if err := checkBody(data); err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrNotObject
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func checkBody(data []byte) error {
	if !utf8.Valid(data) {
		return ErrInvalidUTF8
	}
	return nil
}
