package dlight

import (
	"errors"
	"fmt"

	"github.com/dlight-protocol/dlight-go/pkg/transport"
)

// Error kinds.
var (
	// ErrCannotConnect indicates a transport failure.
	ErrCannotConnect = errors.New("cannot connect")

	// ErrWrongID indicates the device rejected the request context.
	ErrWrongID = errors.New("wrong device id")

	// ErrMalformedResponse indicates a framed reply that failed to decode.
	ErrMalformedResponse = errors.New("malformed response")
)

// IsRetryable reports whether repeating the command may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCannotConnect)
}

// Kind returns a short stable name for the error kind, as used in
// configuration forms: "cannot_connect", "wrong_id", "malformed_response"
// or "unknown".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCannotConnect):
		return "cannot_connect"
	case errors.Is(err, ErrWrongID):
		return "wrong_id"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	default:
		return "unknown"
	}
}

// classify maps an exchange error onto an error kind.
func classify(err error) error {
	switch {
	case errors.Is(err, transport.ErrFrameLength), errors.Is(err, transport.ErrNoResponse):
		return fmt.Errorf("%w: %w", ErrWrongID, err)
	case errors.Is(err, transport.ErrEmptyRequest):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrCannotConnect, err)
	}
}
