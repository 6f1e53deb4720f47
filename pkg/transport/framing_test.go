package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/dlight-protocol/dlight-go/pkg/log"
)

func prefixed(length uint32, body []byte) *bytes.Buffer {
	buf := new(bytes.Buffer)
	var lengthBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBuf[:], length)
	buf.Write(lengthBuf[:])
	buf.Write(body)
	return buf
}

func TestFrameWriterReader(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"single byte", []byte{'1'}},
		{"json object", []byte(`{"status":"SUCCESS"}`)},
		{"largest allowed", bytes.Repeat([]byte("x"), MaxFrameSize-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			if err := NewFrameWriter(buf).WriteFrame(tt.payload); err != nil {
				t.Fatalf("WriteFrame failed: %v", err)
			}
			if buf.Len() != LengthPrefixSize+len(tt.payload) {
				t.Errorf("frame size = %d, want %d", buf.Len(), LengthPrefixSize+len(tt.payload))
			}

			got, err := NewFrameReader(buf).ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame failed: %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Errorf("payload mismatch: got %d bytes, want %d", len(got), len(tt.payload))
			}
		})
	}
}

func TestFrameReaderRejectsOutOfRangeLength(t *testing.T) {
	tests := []struct {
		name   string
		length uint32
	}{
		{"zero", 0},
		{"limit", MaxFrameSize},
		{"minus one as unsigned", 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Body bytes follow so a reader that ignored the bound would succeed.
			buf := prefixed(tt.length, []byte(`{"on":true}`))
			_, err := NewFrameReader(buf).ReadFrame()
			if !errors.Is(err, ErrFrameLength) {
				t.Errorf("expected ErrFrameLength, got %v", err)
			}
		})
	}
}

func TestFrameReaderNoResponse(t *testing.T) {
	_, err := NewFrameReader(new(bytes.Buffer)).ReadFrame()
	if !errors.Is(err, ErrNoResponse) {
		t.Errorf("expected ErrNoResponse, got %v", err)
	}
}

func TestFrameReaderTruncatedLength(t *testing.T) {
	_, err := NewFrameReader(bytes.NewBuffer([]byte{0x00, 0x01})).ReadFrame()
	if !errors.Is(err, ErrFrameTruncated) {
		t.Errorf("expected ErrFrameTruncated, got %v", err)
	}
}

func TestFrameReaderTruncatedPayload(t *testing.T) {
	buf := prefixed(100, bytes.Repeat([]byte("x"), 50))
	_, err := NewFrameReader(buf).ReadFrame()
	if !errors.Is(err, ErrFrameTruncated) {
		t.Errorf("expected ErrFrameTruncated, got %v", err)
	}
}

func TestFrameWriterRejectsOutOfRange(t *testing.T) {
	w := NewFrameWriter(new(bytes.Buffer))
	if err := w.WriteFrame(nil); !errors.Is(err, ErrFrameLength) {
		t.Errorf("expected ErrFrameLength for empty, got %v", err)
	}
	if err := w.WriteFrame(make([]byte, MaxFrameSize)); !errors.Is(err, ErrFrameLength) {
		t.Errorf("expected ErrFrameLength for max, got %v", err)
	}
}

func TestFrameReaderLogs(t *testing.T) {
	var events []log.Event
	reader := NewFrameReader(prefixed(2, []byte("{}")))
	reader.SetLogger(log.LoggerFunc(func(e log.Event) { events = append(events, e) }), "conn-x")

	if _, err := reader.ReadFrame(); err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.ConnectionID != "conn-x" || e.Direction != log.DirectionIn || e.Frame == nil || e.Frame.Size != 6 {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestValidFrameLength(t *testing.T) {
	cases := map[uint32]bool{0: false, 1: true, 8191: true, 8192: false, 1 << 31: false}
	for length, want := range cases {
		if got := ValidFrameLength(length, MaxFrameSize); got != want {
			t.Errorf("ValidFrameLength(%d) = %v, want %v", length, got, want)
		}
	}
}
