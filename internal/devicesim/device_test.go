package devicesim

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSim(t *testing.T) *Device {
	t.Helper()
	d, err := New(Config{Address: "127.0.0.1:0", DeviceID: "dev-1"})
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(func() { _ = d.Stop() })
	return d
}

// roundTrip sends a raw request and returns the announced length and body.
func roundTrip(t *testing.T, addr, request string) (uint32, []byte, error) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(2 * time.Second))

	_, err = conn.Write([]byte(request))
	require.NoError(t, err)

	var prefix [4]byte
	if _, err := io.ReadFull(conn, prefix[:]); err != nil {
		return 0, nil, err
	}
	length := binary.BigEndian.Uint32(prefix[:])
	body, err := io.ReadAll(conn)
	return length, body, err
}

func TestNewRequiresDeviceID(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestQueryInfo(t *testing.T) {
	d := startSim(t)

	length, body, err := roundTrip(t, d.Addr(),
		`{"commandId":"t-1","deviceId":"dev-1","commandType":"QUERY_DEVICE_INFO"}`)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(body)), length)
	assert.JSONEq(t, `{"swVersion":"1.0.0-sim","hwVersion":"sim","deviceModel":"dLight"}`, string(body))
}

func TestExecuteUpdatesState(t *testing.T) {
	d := startSim(t)

	_, body, err := roundTrip(t, d.Addr(),
		`{"commandId":"t-2","deviceId":"dev-1","commandType":"EXECUTE","commands":[{"ON":true},{"BRIGHTNESS":40},{"COLOR":{"TEMPERATURE":3000}}]}`)
	require.NoError(t, err)

	var reply map[string]any
	require.NoError(t, json.Unmarshal(body, &reply))
	assert.Equal(t, "SUCCESS", reply["status"])
	assert.Equal(t, true, reply["on"])
	assert.Equal(t, float64(40), reply["brightness"])

	assert.Equal(t, State{On: true, Brightness: 40, Temperature: 3000}, d.State())

	cmds := d.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, "t-2", cmds[0].CommandID)
	assert.Len(t, cmds[0].Commands, 3)
}

func TestQueryStates(t *testing.T) {
	d := startSim(t)
	d.SetState(State{On: true, Brightness: 75, Temperature: 5000})

	_, body, err := roundTrip(t, d.Addr(),
		`{"commandId":"t-3","deviceId":"dev-1","commandType":"QUERY_DEVICE_STATES"}`)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"commandId":"t-3","status":"SUCCESS","states":{"on":true,"brightness":75,"color":{"temperature":5000}}}`,
		string(body))
}

func TestFailureMode(t *testing.T) {
	d := startSim(t)
	d.SetMode(ModeFailure)

	_, body, err := roundTrip(t, d.Addr(),
		`{"commandId":"t-4","deviceId":"dev-1","commandType":"QUERY_DEVICE_STATES"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"commandId":"t-4","status":"FAILURE"}`, string(body))
}

func TestOtherDeviceGetsNoReply(t *testing.T) {
	d := startSim(t)

	_, _, err := roundTrip(t, d.Addr(),
		`{"commandId":"t-5","deviceId":"dev-2","commandType":"QUERY_DEVICE_INFO"}`)
	assert.ErrorIs(t, err, io.EOF)
}

func TestBadLengthMode(t *testing.T) {
	d := startSim(t)
	d.SetMode(ModeBadLength)
	d.SetRawLength(0xFFFFFFFF)

	length, _, err := roundTrip(t, d.Addr(),
		`{"commandId":"t-6","deviceId":"dev-1","commandType":"QUERY_DEVICE_INFO"}`)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFFF), length)
}

func TestGarbageMode(t *testing.T) {
	d := startSim(t)
	d.SetMode(ModeGarbage)

	length, body, err := roundTrip(t, d.Addr(),
		`{"commandId":"t-7","deviceId":"dev-1","commandType":"QUERY_DEVICE_INFO"}`)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), length)
	assert.Equal(t, "not json", string(body))
}

func TestShortBodyMode(t *testing.T) {
	d := startSim(t)
	d.SetMode(ModeShortBody)

	length, body, err := roundTrip(t, d.Addr(),
		`{"commandId":"t-8","deviceId":"dev-1","commandType":"QUERY_DEVICE_INFO"}`)
	require.NoError(t, err)
	assert.Greater(t, int(length), len(body))
}

func TestParseMode(t *testing.T) {
	for m := ModeNormal; m <= ModeFailure; m++ {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("loud")
	assert.Error(t, err)
}
