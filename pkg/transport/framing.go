package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dlight-protocol/dlight-go/pkg/log"
)

// Framing constants.
const (
	// LengthPrefixSize is the size of the reply length prefix in bytes.
	LengthPrefixSize = 4

	// MaxFrameSize is the exclusive upper bound on reply length.
	MaxFrameSize = 8192

	// MaxLogFrameDataSize caps the bytes copied into log events.
	MaxLogFrameDataSize = 4096
)

// Framing errors.
var (
	// ErrFrameLength indicates a reply length outside (0, MaxFrameSize).
	ErrFrameLength = errors.New("frame length out of range")

	// ErrFrameTruncated indicates the stream ended inside a frame.
	ErrFrameTruncated = errors.New("frame truncated")

	// ErrNoResponse indicates the peer closed the connection before
	// sending any reply bytes.
	ErrNoResponse = errors.New("connection closed without response")
)

// ValidFrameLength reports whether length is acceptable: 0 < length < max.
func ValidFrameLength(length, max uint32) bool {
	return length > 0 && length < max
}

// FrameReader reads length-prefixed replies.
type FrameReader struct {
	r         io.Reader
	maxSize   uint32
	lengthBuf [LengthPrefixSize]byte

	logger log.Logger
	connID string
}

// NewFrameReader creates a frame reader bounded by MaxFrameSize.
func NewFrameReader(r io.Reader) *FrameReader {
	return NewFrameReaderWithMaxSize(r, MaxFrameSize)
}

// NewFrameReaderWithMaxSize creates a frame reader with a custom exclusive bound.
func NewFrameReaderWithMaxSize(r io.Reader, maxSize uint32) *FrameReader {
	return &FrameReader{r: r, maxSize: maxSize}
}

// SetLogger configures logging for this reader. Pass nil to disable.
func (fr *FrameReader) SetLogger(logger log.Logger, connID string) {
	fr.logger = logger
	fr.connID = connID
}

// ReadFrame reads one reply and returns its body without the prefix.
//
// A stream that ends before the first prefix byte yields ErrNoResponse.
// A length outside (0, max) yields ErrFrameLength and the body is not read.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.lengthBuf[:]); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return nil, ErrNoResponse
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, fmt.Errorf("%w: partial length prefix", ErrFrameTruncated)
		default:
			return nil, fmt.Errorf("failed to read length prefix: %w", err)
		}
	}

	length := binary.BigEndian.Uint32(fr.lengthBuf[:])
	if !ValidFrameLength(length, fr.maxSize) {
		return nil, fmt.Errorf("%w: %d not in (0, %d)", ErrFrameLength, length, fr.maxSize)
	}

	payload := make([]byte, length)
	if n, err := io.ReadFull(fr.r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: got %d of %d bytes", ErrFrameTruncated, n, length)
		}
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	if fr.logger != nil {
		fr.logger.Log(frameEvent(fr.connID, payload, LengthPrefixSize+len(payload), log.DirectionIn))
	}

	return payload, nil
}

// FrameWriter writes length-prefixed replies. Devices use it; the client
// never frames its requests.
type FrameWriter struct {
	w       io.Writer
	maxSize uint32
}

// NewFrameWriter creates a frame writer bounded by MaxFrameSize.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w, maxSize: MaxFrameSize}
}

// WriteFrame writes the prefix and body in a single write.
func (fw *FrameWriter) WriteFrame(data []byte) error {
	if !ValidFrameLength(uint32(len(data)), fw.maxSize) {
		return fmt.Errorf("%w: %d not in (0, %d)", ErrFrameLength, len(data), fw.maxSize)
	}
	return WriteRawFrame(fw.w, uint32(len(data)), data)
}

// WriteRawFrame writes an arbitrary length prefix followed by data, without
// validation. Simulators use it to produce malformed replies.
func WriteRawFrame(w io.Writer, length uint32, data []byte) error {
	buf := make([]byte, LengthPrefixSize+len(data))
	binary.BigEndian.PutUint32(buf, length)
	copy(buf[LengthPrefixSize:], data)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// frameEvent creates a log event for bytes on the wire.
func frameEvent(connID string, data []byte, size int, direction log.Direction) log.Event {
	frameData := data
	truncated := false
	if len(data) > MaxLogFrameDataSize {
		frameData = data[:MaxLogFrameDataSize]
		truncated = true
	}

	return log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    direction,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		Frame: &log.FrameEvent{
			Size:      size,
			Data:      frameData,
			Truncated: truncated,
		},
	}
}
