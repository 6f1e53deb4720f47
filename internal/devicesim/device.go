// Package devicesim simulates a dLight device on the device side of the
// wire protocol. Tests and the dlight-sim command use it.
package devicesim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dlight-protocol/dlight-go/pkg/log"
	"github.com/dlight-protocol/dlight-go/pkg/transport"
	"github.com/dlight-protocol/dlight-go/pkg/wire"
)

// Mode selects how the simulator answers.
type Mode uint8

const (
	// ModeNormal answers every command correctly.
	ModeNormal Mode = iota

	// ModeSilent closes the connection without answering.
	ModeSilent

	// ModeBadLength sends the configured raw length prefix with a valid body.
	ModeBadLength

	// ModeGarbage sends a correctly framed body that is not JSON.
	ModeGarbage

	// ModeShortBody announces more bytes than it sends, then closes.
	ModeShortBody

	// ModeStall reads the command and never answers.
	ModeStall

	// ModeFailure answers state queries with a non-SUCCESS status.
	ModeFailure
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeSilent:
		return "silent"
	case ModeBadLength:
		return "bad-length"
	case ModeGarbage:
		return "garbage"
	case ModeShortBody:
		return "short-body"
	case ModeStall:
		return "stall"
	case ModeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	for m := ModeNormal; m <= ModeFailure; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// State is the simulated light state on device scales.
type State struct {
	On          bool
	Brightness  int
	Temperature int
}

// Config configures a simulated device.
type Config struct {
	// Address to listen on (default ":3333").
	Address string

	// DeviceID the device answers to. Commands for another id are dropped.
	DeviceID string

	// Info is returned for QUERY_DEVICE_INFO.
	Info wire.DeviceInfo

	// Initial is the starting light state.
	Initial State

	// ProtocolLogger receives device-side protocol events.
	ProtocolLogger log.Logger

	// Logger is the operational logger (default slog.Default()).
	Logger *slog.Logger
}

// DefaultInfo is the identity reported when Config.Info is empty.
var DefaultInfo = wire.DeviceInfo{
	SWVersion:   "1.0.0-sim",
	HWVersion:   "sim",
	DeviceModel: "dLight",
}

// Device is a running simulator.
type Device struct {
	config Config
	server *transport.Server
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	mode      Mode
	rawLength uint32
	commands  []wire.Command
	stall     chan struct{}
}

// New creates a simulator.
func New(config Config) (*Device, error) {
	if config.DeviceID == "" {
		return nil, errors.New("device id is required")
	}
	if config.Info == (wire.DeviceInfo{}) {
		config.Info = DefaultInfo
	}
	if config.Initial.Temperature == 0 {
		config.Initial.Temperature = wire.MaxTemperature
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	d := &Device{
		config: config,
		logger: config.Logger,
		state:  config.Initial,
		stall:  make(chan struct{}),
	}

	srv, err := transport.NewServer(transport.ServerConfig{
		Address: config.Address,
		Handler: d.handle,
		Logger:  config.ProtocolLogger,
		OnError: func(err error) { d.logger.Warn("accept failed", slog.Any("error", err)) },
	})
	if err != nil {
		return nil, err
	}
	d.server = srv
	return d, nil
}

// Start begins listening.
func (d *Device) Start(ctx context.Context) error {
	return d.server.Start(ctx)
}

// Stop stops listening and releases stalled handlers.
func (d *Device) Stop() error {
	d.mu.Lock()
	select {
	case <-d.stall:
	default:
		close(d.stall)
	}
	d.mu.Unlock()
	return d.server.Stop()
}

// Addr returns the listen address as host:port.
func (d *Device) Addr() string {
	if a := d.server.Addr(); a != nil {
		return a.String()
	}
	return ""
}

// DeviceID returns the id the simulator answers to.
func (d *Device) DeviceID() string {
	return d.config.DeviceID
}

// State returns the current light state.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// SetState replaces the light state.
func (d *Device) SetState(s State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = s
}

// SetMode changes how subsequent commands are answered.
func (d *Device) SetMode(m Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mode = m
}

// SetRawLength sets the prefix sent in ModeBadLength.
func (d *Device) SetRawLength(length uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rawLength = length
}

// Commands returns the commands received so far, in arrival order.
func (d *Device) Commands() []wire.Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]wire.Command, len(d.commands))
	copy(out, d.commands)
	return out
}

// Served returns how many connections have been handled.
func (d *Device) Served() uint64 {
	return d.server.Served()
}

// Info builds a device identity, falling back to DefaultInfo per field.
func Info(swVersion, hwVersion, model string) wire.DeviceInfo {
	info := DefaultInfo
	if swVersion != "" {
		info.SWVersion = swVersion
	}
	if hwVersion != "" {
		info.HWVersion = hwVersion
	}
	if model != "" {
		info.DeviceModel = model
	}
	return info
}
