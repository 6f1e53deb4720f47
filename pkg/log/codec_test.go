package log

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCBORRoundTrip(t *testing.T) {
	d := 12 * time.Millisecond
	ts := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)

	tests := []struct {
		name  string
		event Event
	}{
		{
			name: "frame",
			event: Event{
				Timestamp:    ts,
				ConnectionID: "conn-1",
				Direction:    DirectionIn,
				Layer:        LayerTransport,
				Category:     CategoryMessage,
				RemoteAddr:   "192.168.88.122:3333",
				Frame:        &FrameEvent{Size: 20, Data: []byte(`{"on":true}`)},
			},
		},
		{
			name: "command request",
			event: Event{
				Timestamp: ts,
				Direction: DirectionOut,
				Layer:     LayerWire,
				Category:  CategoryMessage,
				DeviceID:  "7iCs8gyw",
				CommandID: "hass-4",
				Command: &CommandEvent{
					Type:        MessageTypeRequest,
					CommandType: "EXECUTE",
					Actions:     []string{"ON=true", "BRIGHTNESS=50"},
				},
			},
		},
		{
			name: "command response",
			event: Event{
				Timestamp: ts,
				Direction: DirectionIn,
				Layer:     LayerWire,
				Category:  CategoryMessage,
				Command:   &CommandEvent{Type: MessageTypeResponse, CommandType: "QUERY_DEVICE_STATES", Status: "SUCCESS", Duration: &d},
			},
		},
		{
			name: "state change",
			event: Event{
				Timestamp:   ts,
				Layer:       LayerTransport,
				Category:    CategoryState,
				StateChange: &StateChangeEvent{Entity: StateEntityConnection, OldState: ConnStateConnected, NewState: ConnStateClosed},
			},
		},
		{
			name: "error",
			event: Event{
				Timestamp: ts,
				Layer:     LayerTransport,
				Category:  CategoryError,
				Error:     &ErrorEventData{Layer: LayerTransport, Message: "frame length 0", Kind: "wrong_id", Context: "read response"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeEvent(tt.event)
			require.NoError(t, err)

			got, err := DecodeEvent(data)
			require.NoError(t, err)
			assert.True(t, tt.event.Timestamp.Equal(got.Timestamp))
			got.Timestamp = tt.event.Timestamp
			assert.Equal(t, tt.event, got)
		})
	}
}

func TestWriteEventsStream(t *testing.T) {
	events := []Event{
		{Timestamp: time.Unix(1, 0).UTC(), ConnectionID: "a"},
		{Timestamp: time.Unix(2, 0).UTC(), ConnectionID: "b"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEvents(&buf, events))

	dec := NewDecoder(&buf)
	var ids []string
	for {
		var e Event
		err := dec.Decode(&e)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		ids = append(ids, e.ConnectionID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "IN", DirectionIn.String())
	assert.Equal(t, "OUT", DirectionOut.String())
	assert.Equal(t, "UNKNOWN", Direction(9).String())
	assert.Equal(t, "TRANSPORT", LayerTransport.String())
	assert.Equal(t, "WIRE", LayerWire.String())
	assert.Equal(t, "CLIENT", LayerClient.String())
	assert.Equal(t, "MESSAGE", CategoryMessage.String())
	assert.Equal(t, "STATE", CategoryState.String())
	assert.Equal(t, "ERROR", CategoryError.String())
	assert.Equal(t, "REQUEST", MessageTypeRequest.String())
	assert.Equal(t, "RESPONSE", MessageTypeResponse.String())
	assert.Equal(t, "CONNECTION", StateEntityConnection.String())
	assert.Equal(t, "LIGHT", StateEntityLight.String())
}
