package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExample(t *testing.T) {
	c, err := Parse(Example())
	require.NoError(t, err)

	assert.Equal(t, "hass", c.IDPrefix)
	assert.Equal(t, 3333, c.Port)
	assert.Equal(t, 5*time.Second, c.IOTimeout)
	assert.Equal(t, 30*time.Second, c.PollInterval)
	require.Len(t, c.Devices, 1)
	assert.Equal(t, Device{Name: "desk", Host: "192.168.1.40", DeviceID: "dl-0001"}, c.Devices[0])
}

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("devices:\n  - host: 10.0.0.2\n    device_id: abc\n"))
	require.NoError(t, err)

	assert.Equal(t, "hass", c.IDPrefix)
	assert.Equal(t, 3333, c.Port)
	assert.Equal(t, 5*time.Second, c.ConnectTimeout)
	assert.Equal(t, "dLight abc", c.Devices[0].Title())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"missing host", "devices:\n  - device_id: a\n", ErrNoHost},
		{"missing id", "devices:\n  - host: h\n", ErrNoDeviceID},
		{"duplicate", "devices:\n  - {host: h, device_id: a}\n  - {host: g, device_id: a}\n", ErrDuplicateDevice},
		{"bad prefix", "id_prefix: 'a b'\ndevices: []\n", ErrInvalidPrefix},
		{"bad port", "port: 70000\ndevices: []\n", ErrInvalidPort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("devices: [\n"))
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	c, err := Parse(Example())
	require.NoError(t, err)

	d, err := c.Lookup("desk")
	require.NoError(t, err)
	assert.Equal(t, "dl-0001", d.DeviceID)

	d, err = c.Lookup("dl-0001")
	require.NoError(t, err)
	assert.Equal(t, "desk", d.Name)

	_, err = c.Lookup("kitchen")
	assert.ErrorIs(t, err, ErrUnknownDevice)
}

func TestAddAndSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	c := Default()
	require.NoError(t, c.Add(Device{Host: "10.0.0.2", DeviceID: "a"}))
	require.NoError(t, c.Add(Device{Name: "lamp", Host: "10.0.0.3", DeviceID: "a"}))
	assert.ErrorIs(t, c.Add(Device{DeviceID: "b"}), ErrNoHost)
	require.Len(t, c.Devices, 1)

	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestClientOptions(t *testing.T) {
	assert.Len(t, Default().ClientOptions(), 4)
}
