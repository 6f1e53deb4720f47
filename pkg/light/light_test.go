package light

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dlight-protocol/dlight-go/pkg/wire"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) QueryDeviceInfo(ctx context.Context, host, deviceID string) (*wire.DeviceInfo, error) {
	args := m.Called(ctx, host, deviceID)
	info, _ := args.Get(0).(*wire.DeviceInfo)
	return info, args.Error(1)
}

func (m *mockClient) QueryDeviceStates(ctx context.Context, host, deviceID string) (*wire.DeviceStates, error) {
	args := m.Called(ctx, host, deviceID)
	states, _ := args.Get(0).(*wire.DeviceStates)
	return states, args.Error(1)
}

func (m *mockClient) TurnOn(ctx context.Context, host, deviceID string, brightness, colorTempMireds *int) (wire.Response, error) {
	args := m.Called(ctx, host, deviceID, brightness, colorTempMireds)
	resp, _ := args.Get(0).(wire.Response)
	return resp, args.Error(1)
}

func (m *mockClient) TurnOff(ctx context.Context, host, deviceID string) (wire.Response, error) {
	args := m.Called(ctx, host, deviceID)
	resp, _ := args.Get(0).(wire.Response)
	return resp, args.Error(1)
}

const (
	testHost = "192.168.1.40"
	testID   = "dl-0001"
)

var testInfo = &wire.DeviceInfo{SWVersion: "2.1", HWVersion: "B", DeviceModel: "dLight"}

func ptr[T any](v T) *T { return &v }

func setupLight(t *testing.T) (*Light, *mockClient) {
	t.Helper()
	m := &mockClient{}
	m.On("QueryDeviceInfo", mock.Anything, testHost, testID).Return(testInfo, nil).Once()
	l, err := Setup(context.Background(), m, testHost, testID, nil)
	require.NoError(t, err)
	return l, m
}

func statesReply(on bool, brightness, kelvin int) *wire.DeviceStates {
	return &wire.DeviceStates{
		Status: wire.StatusSuccess,
		States: &wire.States{
			On:         &on,
			Brightness: &brightness,
			Color:      &wire.StatesColor{Temperature: &kelvin},
		},
	}
}

func TestSetup(t *testing.T) {
	l, m := setupLight(t)
	m.AssertExpectations(t)

	assert.Equal(t, testID, l.UniqueID())
	assert.Equal(t, testHost, l.Host())
	assert.Equal(t, *testInfo, l.Info())
	assert.Equal(t, 167, l.MinMireds())
	assert.Equal(t, 385, l.MaxMireds())
	assert.False(t, l.State().Available)
}

func TestSetupFailure(t *testing.T) {
	boom := errors.New("refused")
	m := &mockClient{}
	m.On("QueryDeviceInfo", mock.Anything, testHost, testID).Return(nil, boom)

	l, err := Setup(context.Background(), m, testHost, testID, nil)
	assert.Nil(t, l)
	assert.ErrorIs(t, err, boom)
}

func TestUpdateMapsScales(t *testing.T) {
	l, m := setupLight(t)
	m.On("QueryDeviceStates", mock.Anything, testHost, testID).Return(statesReply(true, 50, 4000), nil)

	require.NoError(t, l.Update(context.Background()))

	s := l.State()
	assert.True(t, s.Available)
	assert.Equal(t, ptr(true), s.On)
	assert.Equal(t, ptr(128), s.Brightness)
	assert.Equal(t, ptr(250), s.ColorTemp)
}

func TestUpdateWithoutStatesClearsAttributes(t *testing.T) {
	l, m := setupLight(t)
	m.On("QueryDeviceStates", mock.Anything, testHost, testID).Return(statesReply(true, 50, 4000), nil).Once()
	m.On("QueryDeviceStates", mock.Anything, testHost, testID).Return(&wire.DeviceStates{Status: wire.StatusSuccess}, nil).Once()

	require.NoError(t, l.Update(context.Background()))
	require.NoError(t, l.Update(context.Background()))

	assert.Equal(t, State{Available: true}, l.State())
}

func TestUpdateFailureMarksUnavailable(t *testing.T) {
	boom := errors.New("timeout")
	l, m := setupLight(t)
	m.On("QueryDeviceStates", mock.Anything, testHost, testID).Return(statesReply(true, 50, 4000), nil).Once()
	m.On("QueryDeviceStates", mock.Anything, testHost, testID).Return(nil, boom).Once()

	require.NoError(t, l.Update(context.Background()))
	assert.ErrorIs(t, l.Update(context.Background()), boom)

	s := l.State()
	assert.False(t, s.Available)
	assert.Equal(t, ptr(true), s.On, "last known values are kept")
	assert.Equal(t, "unavailable", s.String())
}

func TestUpdateNonSuccessStatus(t *testing.T) {
	l, m := setupLight(t)
	m.On("QueryDeviceStates", mock.Anything, testHost, testID).Return(&wire.DeviceStates{Status: "BUSY"}, nil)

	assert.NoError(t, l.Update(context.Background()))
	assert.False(t, l.State().Available)
}

func TestTurnOnFoldsReply(t *testing.T) {
	l, m := setupLight(t)
	m.On("TurnOn", mock.Anything, testHost, testID, ptr(200), ptr(250)).
		Return(wire.Response{"status": "SUCCESS", "on": true, "brightness": float64(78)}, nil)

	require.NoError(t, l.TurnOn(context.Background(), ptr(200), ptr(250)))
	m.AssertExpectations(t)

	s := l.State()
	assert.Equal(t, ptr(true), s.On)
	assert.Equal(t, ptr(199), s.Brightness)
}

func TestTurnOnIgnoresFractionalBrightness(t *testing.T) {
	l, m := setupLight(t)
	m.On("QueryDeviceStates", mock.Anything, testHost, testID).Return(statesReply(true, 40, 4000), nil).Once()
	require.NoError(t, l.Update(context.Background()))

	m.On("TurnOn", mock.Anything, testHost, testID, (*int)(nil), (*int)(nil)).
		Return(wire.Response{"status": "SUCCESS", "on": true, "brightness": 50.7}, nil)

	require.NoError(t, l.TurnOn(context.Background(), nil, nil))
	m.AssertExpectations(t)
	assert.Equal(t, ptr(102), l.State().Brightness, "fractional brightness must not replace the cached value")
}

func TestTurnOnClampsColorTemp(t *testing.T) {
	l, m := setupLight(t)
	m.On("TurnOn", mock.Anything, testHost, testID, (*int)(nil), ptr(385)).
		Return(wire.Response{"status": "SUCCESS"}, nil)

	require.NoError(t, l.TurnOn(context.Background(), nil, ptr(500)))
	m.AssertExpectations(t)
	assert.Nil(t, l.State().On, "reply without on leaves state untouched")
}

func TestTurnOff(t *testing.T) {
	l, m := setupLight(t)
	m.On("TurnOff", mock.Anything, testHost, testID).Return(wire.Response{"on": false}, nil)

	require.NoError(t, l.TurnOff(context.Background()))
	assert.Equal(t, ptr(false), l.State().On)
}

func TestTurnOffError(t *testing.T) {
	boom := errors.New("refused")
	l, m := setupLight(t)
	m.On("TurnOff", mock.Anything, testHost, testID).Return(nil, boom)

	assert.ErrorIs(t, l.TurnOff(context.Background()), boom)
	assert.Nil(t, l.State().On)
}

func TestStateEqual(t *testing.T) {
	a := State{Available: true, On: ptr(true), Brightness: ptr(10)}
	b := State{Available: true, On: ptr(true), Brightness: ptr(10)}
	assert.True(t, a.Equal(b))

	b.ColorTemp = ptr(250)
	assert.False(t, a.Equal(b))

	assert.Equal(t, "on=true brightness=10 color_temp=-", a.String())
}
