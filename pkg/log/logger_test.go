package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) Log(event Event) {
	m.Called(event)
}

func TestMultiLoggerFansOut(t *testing.T) {
	event := Event{ConnectionID: "fan"}

	a := &mockLogger{}
	a.On("Log", event).Once()
	b := &mockLogger{}
	b.On("Log", event).Once()

	multi := NewMultiLogger(a, nil, b)
	assert.Equal(t, 2, multi.Len())

	multi.Log(event)

	a.AssertExpectations(t)
	b.AssertExpectations(t)
}

func TestLoggerFuncAndOrNoop(t *testing.T) {
	var got []string
	l := LoggerFunc(func(e Event) { got = append(got, e.CommandID) })
	l.Log(Event{CommandID: "x-1"})
	assert.Equal(t, []string{"x-1"}, got)

	assert.IsType(t, NoopLogger{}, OrNoop(nil))
	got = nil
	OrNoop(l).Log(Event{CommandID: "x-2"})
	assert.Equal(t, []string{"x-2"}, got)
}

func decodeSlogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestSlogAdapterLogsCommandEvent(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	d := 5 * time.Millisecond
	adapter.Log(Event{
		ConnectionID: "conn-1",
		Direction:    DirectionIn,
		Layer:        LayerWire,
		Category:     CategoryMessage,
		DeviceID:     "dev",
		CommandID:    "hass-2",
		Command:      &CommandEvent{Type: MessageTypeResponse, CommandType: "QUERY_DEVICE_STATES", Status: "SUCCESS", Duration: &d},
	})

	entry := decodeSlogLine(t, &buf)
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "conn-1", entry["conn_id"])
	assert.Equal(t, "dev", entry["device_id"])
	assert.Equal(t, "hass-2", entry["command_id"])
	assert.Equal(t, "RESPONSE", entry["msg_type"])
	assert.Equal(t, "QUERY_DEVICE_STATES", entry["command_type"])
	assert.Equal(t, "SUCCESS", entry["status"])
}

func TestSlogAdapterLogsErrorAtWarn(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	adapter.Log(Event{
		Layer:    LayerTransport,
		Category: CategoryError,
		Error:    &ErrorEventData{Layer: LayerTransport, Message: "refused", Kind: "cannot_connect"},
	})

	entry := decodeSlogLine(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "refused", entry["error_msg"])
	assert.Equal(t, "cannot_connect", entry["error_kind"])
}

func TestSlogAdapterLogsFrameEvent(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	adapter.Log(Event{
		Direction: DirectionOut,
		Layer:     LayerTransport,
		Frame:     &FrameEvent{Size: 64},
	})

	entry := decodeSlogLine(t, &buf)
	assert.Equal(t, "OUT", entry["direction"])
	assert.Equal(t, float64(64), entry["frame_size"])
}
