// Package config loads the YAML file describing known dLight devices.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dlight-protocol/dlight-go/pkg/dlight"
	"github.com/dlight-protocol/dlight-go/pkg/transport"
	"github.com/dlight-protocol/dlight-go/pkg/wire"
)

//go:embed example.yaml
var example []byte

// Validation errors.
var (
	ErrNoHost          = errors.New("device host is required")
	ErrNoDeviceID      = errors.New("device id is required")
	ErrDuplicateDevice = errors.New("duplicate device")
	ErrInvalidPrefix   = errors.New("invalid id prefix")
	ErrInvalidPort     = errors.New("invalid port")
	ErrUnknownDevice   = errors.New("unknown device")
)

var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// Config is the device file.
type Config struct {
	IDPrefix       string        `yaml:"id_prefix,omitempty"`
	Port           int           `yaml:"port,omitempty"`
	ConnectTimeout time.Duration `yaml:"connect_timeout,omitempty"`
	IOTimeout      time.Duration `yaml:"io_timeout,omitempty"`
	PollInterval   time.Duration `yaml:"poll_interval,omitempty"`
	ProtocolLog    string        `yaml:"protocol_log,omitempty"`
	Devices        []Device      `yaml:"devices"`
}

// Device is one configured light.
type Device struct {
	Name     string `yaml:"name,omitempty"`
	Host     string `yaml:"host"`
	DeviceID string `yaml:"device_id"`
}

// Title returns the display name, "dLight <id>" when no name is set.
func (d Device) Title() string {
	if d.Name != "" {
		return d.Name
	}
	return "dLight " + d.DeviceID
}

// Default returns an empty configuration with defaults applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Example returns the annotated example file.
func Example() []byte {
	return append([]byte(nil), example...)
}

// DefaultPath returns the per-user configuration path.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "dlight.yaml"
	}
	return filepath.Join(dir, "dlight", "config.yaml")
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates YAML data.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.IDPrefix == "" {
		c.IDPrefix = wire.DefaultIDPrefix
	}
	if c.Port == 0 {
		c.Port = transport.DefaultPort
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = transport.DefaultConnectTimeout
	}
	if c.IOTimeout == 0 {
		c.IOTimeout = transport.DefaultIOTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = 30 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !prefixPattern.MatchString(c.IDPrefix) {
		return fmt.Errorf("%w: %q", ErrInvalidPrefix, c.IDPrefix)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.ConnectTimeout < 0 || c.IOTimeout < 0 || c.PollInterval < 0 {
		return errors.New("durations must not be negative")
	}

	seen := make(map[string]bool, len(c.Devices))
	for i, d := range c.Devices {
		if d.Host == "" {
			return fmt.Errorf("device %d: %w", i, ErrNoHost)
		}
		if d.DeviceID == "" {
			return fmt.Errorf("device %d: %w", i, ErrNoDeviceID)
		}
		if seen[d.DeviceID] {
			return fmt.Errorf("%w: %s", ErrDuplicateDevice, d.DeviceID)
		}
		seen[d.DeviceID] = true
	}
	return nil
}

// Lookup finds a device by name or device id.
func (c *Config) Lookup(ref string) (Device, error) {
	for _, d := range c.Devices {
		if d.Name == ref || d.DeviceID == ref {
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("%w: %s", ErrUnknownDevice, ref)
}

// Add appends d, replacing an entry with the same device id.
func (c *Config) Add(d Device) error {
	if d.Host == "" {
		return ErrNoHost
	}
	if d.DeviceID == "" {
		return ErrNoDeviceID
	}
	for i := range c.Devices {
		if c.Devices[i].DeviceID == d.DeviceID {
			c.Devices[i] = d
			return nil
		}
	}
	c.Devices = append(c.Devices, d)
	return nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ClientOptions returns the client options the file describes.
func (c *Config) ClientOptions() []dlight.Option {
	return []dlight.Option{
		dlight.WithIDPrefix(c.IDPrefix),
		dlight.WithPort(c.Port),
		dlight.WithConnectTimeout(c.ConnectTimeout),
		dlight.WithIOTimeout(c.IOTimeout),
	}
}
